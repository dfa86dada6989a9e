// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2

import (
	"regexp"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// rxClassToken matches one microformats2 class token. A token starts at a
// word boundary and is bounded on its right by whitespace or the end of
// the attribute.
var rxClassToken = regexp.MustCompile(`\b(h|e|u|dt|p)-([a-z]+(?:-[a-z]+)*)(?:\s|$)`)

// classTokens holds the microformats2 tokens of one element, bucketed by
// prefix. Suffixes keep their attribute order and duplicates.
type classTokens struct {
	h  []string
	e  []string
	u  []string
	dt []string
	p  []string
}

// tokenizeClass extracts the microformats2 tokens from an element's class
// attribute. A missing attribute yields all empty buckets.
func tokenizeClass(n *html.Node) classTokens {
	res := classTokens{}

	class := dom.GetAttribute(n, "class")
	if class == "" {
		return res
	}

	for _, m := range rxClassToken.FindAllStringSubmatch(class, -1) {
		switch m[1] {
		case "h":
			res.h = append(res.h, m[2])
		case "e":
			res.e = append(res.e, m[2])
		case "u":
			res.u = append(res.u, m[2])
		case "dt":
			res.dt = append(res.dt, m[2])
		case "p":
			res.p = append(res.p, m[2])
		}
	}

	return res
}

// hasClassToken returns true when the element's class attribute contains
// the exact token. Unlike [tokenizeClass], this is a plain class lookup,
// used by the value-class pattern.
func hasClassToken(n *html.Node, token string) bool {
	for _, c := range strings.Fields(dom.GetAttribute(n, "class")) {
		if c == token {
			return true
		}
	}
	return false
}

// isHItem returns true when the element carries at least one h-* token.
func isHItem(n *html.Node) bool {
	return len(tokenizeClass(n).h) > 0
}
