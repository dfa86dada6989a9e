// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2

import (
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// valueClassFragments collects the value-class pattern fragments from an
// element's descendants, depth first. A descendant marked "value-title"
// contributes its title attribute, one marked "value" its inner markup;
// neither is walked into. An empty result means no value-class pattern is
// present and callers fall back to their default extraction.
func valueClassFragments(n *html.Node) []string {
	fragments := []string{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for _, c := range dom.Children(n) {
			switch {
			case hasClassToken(c, "value-title"):
				fragments = append(fragments, dom.GetAttribute(c, "title"))
			case hasClassToken(c, "value"):
				fragments = append(fragments, dom.InnerHTML(c))
			default:
				walk(c)
			}
		}
	}
	walk(n)

	return fragments
}
