// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"unicode"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"go.e43.eu/coap/message"
)

const transportAuto = "auto"

// readHex returns the bytes of arg, or of the command's stdin if arg is "-".
// Whitespace is ignored
func readHex(c *cli.Context, arg string) ([]byte, error) {
	if arg == "-" {
		in, err := ioutil.ReadAll(c.App.Reader)
		if err != nil {
			return nil, err
		}
		arg = string(in)
	}

	arg = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, arg)
	return hex.DecodeString(arg)
}

func writeDocument(w io.Writer, first bool, m message.Message) error {
	out, err := yaml.Marshal(newDocument(m))
	if err != nil {
		return err
	}
	if !first {
		fmt.Fprintln(w, "---")
	}
	_, err = w.Write(out)
	return err
}

// decodeStream decodes consecutive TCP messages until the input is exhausted
func decodeStream(w io.Writer, buf []byte) error {
	r := bytes.NewReader(buf)
	for i := 0; ; i++ {
		m, err := codec.ReadTCP(r)
		if err == io.EOF && i > 0 {
			return nil
		}
		if err != nil {
			return fmt.Errorf("message #%d: %w", i, err)
		}
		if err := writeDocument(w, i == 0, m); err != nil {
			return err
		}
	}
}

// decodeAuto tries both transports. Each failure is written as a comment;
// only when both fail is an error returned
func decodeAuto(w io.Writer, buf []byte) error {
	udp, udpErr := codec.DecodeUDP(buf)
	tcp, tcpErr := codec.DecodeTCP(buf)
	if udpErr != nil && tcpErr != nil {
		return multierr.Combine(
			fmt.Errorf("udp: %w", udpErr),
			fmt.Errorf("tcp: %w", tcpErr),
		)
	}

	first := true
	for _, res := range []struct {
		transport string
		m         message.Message
		err       error
	}{
		{transportUDP, udp, udpErr},
		{transportTCP, tcp, tcpErr},
	} {
		if res.err != nil {
			logger.Debug("not decodable", zap.String("transport", res.transport), zap.Error(res.err))
			fmt.Fprintf(w, "# %s: %s\n", res.transport, res.err)
			continue
		}
		if err := writeDocument(w, first, res.m); err != nil {
			return err
		}
		first = false
	}
	return nil
}

func init() {
	var transport string
	defineCommand(&cli.Command{
		Name:      "decode",
		Usage:     "Decode a hex encoded message to a YAML document.",
		ArgsUsage: "HEX|-",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "transport",
				Usage:       "Message `framing`: udp, tcp (a stream of messages) or auto.",
				Value:       transportAuto,
				EnvVars:     []string{"COAPCODEC_TRANSPORT"},
				Destination: &transport,
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one argument")
			}

			buf, err := readHex(c, c.Args().First())
			if err != nil {
				return err
			}

			w := c.App.Writer
			switch strings.ToLower(transport) {
			case transportUDP:
				m, err := codec.DecodeUDP(buf)
				if err != nil {
					return err
				}
				return writeDocument(w, true, m)
			case transportTCP:
				return decodeStream(w, buf)
			case transportAuto:
				return decodeAuto(w, buf)
			default:
				return fmt.Errorf("unknown transport %q", transport)
			}
		},
	})
}
