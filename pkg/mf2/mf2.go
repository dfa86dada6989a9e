// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package mf2 provides a microformats2 parser and data model.
// It walks an HTML node tree, recognizes the h-*, p-*, u-*, e-* and dt-*
// class tokens and builds a hierarchical item structure that serializes
// to the canonical microformats2 JSON form.
//
// Its purpose is to provide:
// - an HTML to microformats2 item tree transform
// - a property and type lookup in the parsed data
// - a lossless JSON round-trip of the item tree
package mf2

import (
	"io"

	"golang.org/x/net/html"
)

// DefaultBaseURL is the base used for URL resolution when the caller
// provides no URL context.
const DefaultBaseURL = "http://example.com/"

// Parse reads an HTML document and returns a [Document] instance.
// Relative URLs are resolved against baseURL, or against
// [DefaultBaseURL] when baseURL is empty.
func Parse(r io.Reader, baseURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	return ParseNode(root, baseURL)
}

// ParseNode parses an [html.Node] and returns a [Document] instance.
func ParseNode(root *html.Node, baseURL string) (*Document, error) {
	return newParser(root, baseURL).parse()
}
