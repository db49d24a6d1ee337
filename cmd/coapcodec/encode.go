// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"
)

// encodeDocuments encodes every document of the YAML stream r, one hex line
// per message
func encodeDocuments(w io.Writer, r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)

	for i := 0; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if err == io.EOF && i > 0 {
			return nil
		}
		if err != nil {
			return fmt.Errorf("document #%d: %w", i, err)
		}

		m, err := doc.Message()
		if err != nil {
			return fmt.Errorf("document #%d: %w", i, err)
		}

		out, err := codec.Encode(m)
		if err != nil {
			return fmt.Errorf("document #%d: %w", i, err)
		}
		fmt.Fprintln(w, hex.EncodeToString(out))
	}
}

func init() {
	var file, doc string
	defineCommand(&cli.Command{
		Name:  "encode",
		Usage: "Encode YAML message documents to hex.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Usage:       "Read documents from `FILE` (- for stdin).",
				TakesFile:   true,
				Destination: &file,
			},
			&cli.StringFlag{
				Name:        "doc",
				Usage:       "Inline YAML `document`.",
				Destination: &doc,
			},
		},
		Action: func(c *cli.Context) error {
			var r io.Reader
			switch {
			case file != "" && doc != "":
				return fmt.Errorf("--file and --doc are mutually exclusive")
			case doc != "":
				r = strings.NewReader(doc)
			case file == "" || file == "-":
				r = c.App.Reader
			default:
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return encodeDocuments(c.App.Writer, r)
		},
	})
}
