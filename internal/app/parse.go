// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"context"
	"fmt"
	"os"

	"github.com/cristalhq/acmd"

	"codeberg.org/websem/mf2/internal/config"
	"codeberg.org/websem/mf2/pkg/mf2"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "parse",
		Description: "Parse an HTML file and print its microformats2 data",
		ExecFunc:    runParse,
	})
}

func runParse(_ context.Context, args []string) error {
	var flags appFlags
	var out outputFlags

	fs := flags.Flags()
	out.addFlags(fs)
	base := fs.String("base", "", "base URL for relative URL resolution")
	// nolint: errcheck
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: parse [arguments...] [FILE]")
		fmt.Fprintln(fs.Output(), "  FILE")
		fmt.Fprintln(fs.Output(), "    \tinput file (stdin when absent or \"-\")")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return errIsHelp(err)
	}
	if err := appPreRun(&flags); err != nil {
		return err
	}

	fd, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	defer fd.Close() //nolint:errcheck

	baseURL := *base
	if baseURL == "" {
		baseURL = config.Config.Extractor.BaseURL
	}

	doc, err := mf2.Parse(fd, baseURL)
	if err != nil {
		return err
	}

	return out.output(os.Stdout, doc)
}
