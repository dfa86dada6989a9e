// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// uniqueChild returns the element's only element child when there's
// exactly one and it doesn't start an item of its own.
func uniqueChild(n *html.Node) *html.Node {
	children := dom.Children(n)
	if len(children) != 1 || isHItem(children[0]) {
		return nil
	}
	return children[0]
}

// uniqueChildOf returns the element's unique child when its tag is one of
// the given tags.
func uniqueChildOf(n *html.Node, tags ...atom.Atom) *html.Node {
	c := uniqueChild(n)
	if c == nil {
		return nil
	}
	for _, t := range tags {
		if c.DataAtom == t {
			return c
		}
	}
	return nil
}

// uniqueGrandchildOf applies [uniqueChildOf] one level down, through the
// element's unique child.
func uniqueGrandchildOf(n *html.Node, tags ...atom.Atom) *html.Node {
	c := uniqueChild(n)
	if c == nil {
		return nil
	}
	return uniqueChildOf(c, tags...)
}

// implyName adds a p-name derived from the element's shape. An item that
// already carries any p-* or e-* property keeps its explicit data and
// receives no implied name.
func (p *parser) implyName(item *Item, n *html.Node) {
	if item.hasProperty("name") {
		return
	}
	if item.hasPrefixedProperty("p") || item.hasPrefixedProperty("e") {
		return
	}

	var name string
	found := false
	switch n.DataAtom {
	case atom.Img, atom.Area:
		name, found = dom.GetAttribute(n, "alt"), true
	case atom.Abbr:
		name, found = dom.GetAttribute(n, "title"), true
	}

	if !found {
		probes := []func() string{
			func() string {
				if c := uniqueChildOf(n, atom.Img, atom.Area); c != nil {
					return dom.GetAttribute(c, "alt")
				}
				return ""
			},
			func() string {
				if c := uniqueChildOf(n, atom.Abbr); c != nil {
					return dom.GetAttribute(c, "title")
				}
				return ""
			},
			func() string {
				if c := uniqueGrandchildOf(n, atom.Img, atom.Area); c != nil {
					return dom.GetAttribute(c, "alt")
				}
				return ""
			},
			func() string {
				if c := uniqueGrandchildOf(n, atom.Abbr); c != nil {
					return dom.GetAttribute(c, "title")
				}
				return ""
			},
		}
		for _, probe := range probes {
			if name = probe(); name != "" {
				break
			}
		}
		if name == "" {
			name = strings.TrimSpace(dom.TextContent(n))
		}
	}

	if name != "" {
		item.AddProperty("p-name", NewTextValue(name))
	}
}

// implyPhoto adds a u-photo derived from the element's shape.
func (p *parser) implyPhoto(item *Item, n *html.Node) {
	if item.hasProperty("photo") {
		return
	}

	var src string
	switch n.DataAtom {
	case atom.Img:
		src = dom.GetAttribute(n, "src")
	case atom.Object:
		src = dom.GetAttribute(n, "data")
	}
	if src == "" {
		if c := uniqueChildOf(n, atom.Img); c != nil {
			src = dom.GetAttribute(c, "src")
		}
	}
	if src == "" {
		if c := uniqueChildOf(n, atom.Object); c != nil {
			src = dom.GetAttribute(c, "data")
		}
	}
	if src == "" {
		if c := uniqueGrandchildOf(n, atom.Img); c != nil {
			src = dom.GetAttribute(c, "src")
		}
	}
	if src == "" {
		if c := uniqueGrandchildOf(n, atom.Object); c != nil {
			src = dom.GetAttribute(c, "data")
		}
	}

	if u := p.resolveURL(src); u != "" {
		item.AddProperty("u-photo", NewTextValue(u))
	}
}

// implyURL adds a u-url derived from the element's shape.
func (p *parser) implyURL(item *Item, n *html.Node) {
	if item.hasProperty("url") {
		return
	}

	var href string
	switch n.DataAtom {
	case atom.A, atom.Area:
		href = dom.GetAttribute(n, "href")
	}
	if href == "" {
		if c := uniqueChildOf(n, atom.A, atom.Area); c != nil {
			href = dom.GetAttribute(c, "href")
		}
	}
	if href == "" {
		if c := uniqueGrandchildOf(n, atom.A, atom.Area); c != nil {
			href = dom.GetAttribute(c, "href")
		}
	}

	if u := p.resolveURL(href); u != "" {
		item.AddProperty("u-url", NewTextValue(u))
	}
}
