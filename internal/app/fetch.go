// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/cristalhq/acmd"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/idna"

	"codeberg.org/websem/mf2/internal/httpclient"
	"codeberg.org/websem/mf2/pkg/mf2"
)

// ErrNotHTML is returned when a fetched resource is not an HTML document.
var ErrNotHTML = errors.New("resource is not an HTML document")

// maxPageSize is the biggest payload the fetch command accepts.
const maxPageSize = 8 << 20

func init() {
	commands = append(commands, acmd.Command{
		Name:        "fetch",
		Description: "Fetch a URL and print its microformats2 data",
		ExecFunc:    runFetch,
	})
}

func runFetch(ctx context.Context, args []string) error {
	var flags appFlags
	var out outputFlags

	fs := flags.Flags()
	out.addFlags(fs)
	// nolint: errcheck
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: fetch [arguments...] URL")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return errIsHelp(err)
	}
	if err := appPreRun(&flags); err != nil {
		return err
	}

	target, err := cleanupURL(fs.Arg(0))
	if err != nil {
		return err
	}

	doc, err := fetchDocument(ctx, httpclient.New(), target)
	if err != nil {
		return err
	}

	return out.output(os.Stdout, doc)
}

// cleanupURL validates the command's URL argument and normalizes its
// hostname to its punycode form.
func cleanupURL(src string) (*url.URL, error) {
	if src == "" {
		return nil, errors.New("URL is required")
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("%s is not an absolute URL", src)
	}

	host, err := idna.Lookup.ToASCII(u.Hostname())
	if err != nil {
		return nil, fmt.Errorf("invalid hostname %s: %w", u.Hostname(), err)
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host

	return u, nil
}

// fetchDocument retrieves a page and parses its microformats2 content,
// with the response URL as base so redirects are honored.
func fetchDocument(ctx context.Context, client *http.Client, target *url.URL) (*mf2.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}

	rsp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close() //nolint:errcheck

	if rsp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("invalid response status (%d)", rsp.StatusCode)
	}

	buf, err := io.ReadAll(io.LimitReader(rsp.Body, maxPageSize))
	if err != nil {
		return nil, err
	}

	mtype := mimetype.Detect(buf)
	if !mtype.Is("text/html") && !mtype.Is("application/xhtml+xml") {
		return nil, fmt.Errorf("%w (%s)", ErrNotHTML, mtype.String())
	}

	base := target.String()
	if rsp.Request != nil && rsp.Request.URL != nil {
		base = rsp.Request.URL.String()
	}
	slog.Debug("page retrieved",
		slog.String("url", base),
		slog.Int("size", len(buf)),
		slog.String("type", mtype.String()),
	)

	return mf2.Parse(bytes.NewReader(buf), base)
}
