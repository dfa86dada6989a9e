// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package app provides the command line commands.
package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cristalhq/acmd"

	"codeberg.org/websem/mf2/internal/config"
	"codeberg.org/websem/mf2/pkg/mf2"
)

// version is overridden at build time.
var version = "dev"

var commands = []acmd.Command{}

// Run executes the command line and returns the process exit code.
func Run() int {
	r := acmd.RunnerOf(commands, acmd.Config{
		AppName:        "mf2",
		AppDescription: "Extract microformats2 data from HTML documents",
		Version:        version,
	})

	if err := r.Run(); err != nil {
		slog.Error("command failed", slog.Any("err", err))
		return 1
	}
	return 0
}

// appFlags holds the flags shared by every command.
type appFlags struct {
	configPath string
	logLevel   string
}

// Flags returns a new flag set carrying the shared flags.
func (f *appFlags) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "configuration file")
	fs.StringVar(&f.logLevel, "level", "", "log level (debug, info, warn, error)")
	return fs
}

// appPreRun loads the configuration and sets the log handler up. Every
// command calls it once its flags are parsed.
func appPreRun(f *appFlags) error {
	if err := config.Load(f.configPath); err != nil {
		return err
	}

	if f.logLevel != "" {
		if err := config.Config.Main.LogLevel.UnmarshalText([]byte(f.logLevel)); err != nil {
			return fmt.Errorf("invalid log level %s: %w", f.logLevel, err)
		}
	}

	setupLogger()
	return nil
}

// outputFlags holds the output options shared by the parse and fetch
// commands.
type outputFlags struct {
	compact  bool
	itemType string
}

func (f *outputFlags) addFlags(fs *flag.FlagSet) {
	fs.BoolVar(&f.compact, "compact", false, "compact JSON output")
	fs.StringVar(&f.itemType, "type", "", "only output the first item of the given type")
}

// output writes the document, or the first item of the requested type,
// to the given writer.
func (f *outputFlags) output(w io.Writer, doc *mf2.Document) error {
	var res string
	var err error

	if f.itemType != "" {
		item := doc.GetFirst(f.itemType)
		if item == nil {
			return fmt.Errorf("no item of type %s", f.itemType)
		}
		res, err = item.AsJSON()
	} else {
		res, err = doc.AsJSON()
	}
	if err != nil {
		return err
	}

	if !f.compact {
		_, err = io.WriteString(w, res)
		return err
	}

	var v any
	if err := json.Unmarshal([]byte(res), &v); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// errIsHelp returns a nil error when the flag set stopped on -h.
func errIsHelp(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// openInput returns the input reader for a file argument. An empty name
// or "-" selects the standard input.
func openInput(name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}
