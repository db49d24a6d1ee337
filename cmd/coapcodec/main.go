// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Command coapcodec converts CoAP messages between their wire form (as hex)
// and YAML message documents.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go.e43.eu/coap"
	"go.e43.eu/coap/internal/logging"
)

var logger = logging.New("coapcodec")

var (
	codec        coap.Coder
	registry     *prometheus.Registry
	maxFrameSize uint64
	printStats   bool
)

var app = &cli.App{
	Usage: "CoAP message codec.",
	Flags: []cli.Flag{
		&cli.Uint64Flag{
			Name:        "max-frame-size",
			Usage:       "Largest TCP frame content `length` accepted when decoding (0 for no limit).",
			EnvVars:     []string{"COAPCODEC_MAX_FRAME_SIZE"},
			Destination: &maxFrameSize,
		},
		&cli.BoolFlag{
			Name:        "stats",
			Usage:       "Print message counters to stderr on exit.",
			EnvVars:     []string{"COAPCODEC_STATS"},
			Destination: &printStats,
		},
	},
	Before: func(c *cli.Context) error {
		registry = prometheus.NewRegistry()
		codec = coap.NewCoder(
			coap.WithLogger(logger),
			coap.WithMetrics(registry),
			coap.WithMaxFrameSize(maxFrameSize),
		)
		return nil
	},
	// Run returns every error; main reports it
	ExitErrHandler: func(c *cli.Context, err error) {},
	After: func(c *cli.Context) error {
		if !printStats || registry == nil {
			return nil
		}
		return writeStats(c)
	},
}

func defineCommand(command *cli.Command) {
	app.Commands = append(app.Commands, command)
}

// writeStats prints every non-zero counter of the registry
func writeStats(c *cli.Context) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			counter := m.GetCounter()
			if counter == nil || counter.GetValue() == 0 {
				continue
			}

			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			fmt.Fprintf(c.App.ErrWriter, "%s%s %g\n", mf.GetName(), labels, counter.GetValue())
		}
	}
	return nil
}

func main() {
	defer logger.Sync()

	sort.Sort(cli.CommandsByName(app.Commands))
	if err := app.Run(os.Args); err != nil {
		logger.Fatal("coapcodec failed", zap.Error(err))
	}
}
