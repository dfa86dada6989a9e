// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2

import (
	"log/slog"
	"net/url"

	"github.com/antchfx/htmlquery"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

type parser struct {
	root    *html.Node
	doc     *Document
	baseURL *url.URL
}

func newParser(root *html.Node, baseURL string) *parser {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		// The base URL is a resolution aid, not an input contract.
		u, _ = url.Parse(DefaultBaseURL)
	}

	return &parser{
		root:    root,
		doc:     newDocument(),
		baseURL: u,
	}
}

func (p *parser) parse() (*Document, error) {
	// A <base href> element overrides the caller's URL context, once,
	// before the tree walk starts.
	if n := htmlquery.FindOne(p.root, "//base[@href]"); n != nil {
		if u, err := url.Parse(dom.GetAttribute(n, "href")); err == nil {
			p.baseURL = u
			slog.Debug("base URL override", slog.String("base", u.String()))
		}
	}

	p.analyze(p.root, nil)

	slog.Debug("mf2 parsed",
		slog.Int("items", len(p.doc.Items)),
		slog.Int("top_level", len(p.doc.TopLevel)),
	)
	return p.doc, nil
}

// resolveURL joins a possibly relative URL with the parser's base URL. It
// returns an empty string on an empty or unparseable input.
func (p *parser) resolveURL(src string) string {
	if src == "" {
		return ""
	}
	u, err := p.baseURL.Parse(src)
	if err != nil {
		return ""
	}
	return u.String()
}

// analyze recursively walks the node tree and fills the document. current
// is the innermost enclosing item, nil at the top level.
func (p *parser) analyze(n *html.Node, current *Item) {
	if n.Type != html.ElementNode {
		// Text nodes and comments end the walk on their branch. The
		// document node only forwards to its children.
		if n.Type == html.DocumentNode {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.analyze(c, current)
			}
		}
		return
	}

	attrs := tokenizeClass(n)

	// An element with at least one h-* token starts a new item.
	var item *Item
	if len(attrs.h) > 0 {
		item = newItem(attrs.h, current)
		p.doc.Items = append(p.doc.Items, item)
		if current == nil {
			p.doc.TopLevel = append(p.doc.TopLevel, item)
		}
	}

	if current != nil {
		// When the element starts a new item, the item itself becomes
		// the p-* or u-* property value, so both extractors are
		// suppressed here. The e-* and dt-* extractors still run and
		// feed the enclosing item.
		if item == nil {
			if len(attrs.p) > 0 {
				v := p.extractP(n)
				for _, s := range attrs.p {
					current.AddProperty("p-"+s, NewTextValue(v))
				}
			}
			if len(attrs.u) > 0 {
				v := p.extractU(n)
				for _, s := range attrs.u {
					current.AddProperty("u-"+s, NewTextValue(v))
				}
			}
		}
		if len(attrs.e) > 0 {
			markup, text := p.extractE(n)
			for _, s := range attrs.e {
				current.AddProperty("e-"+s, NewEmbeddedValue(markup, text))
			}
		}
		if len(attrs.dt) > 0 {
			if v, ok := p.extractDT(n); ok {
				for _, s := range attrs.dt {
					current.AddProperty("dt-"+s, NewTextValue(v))
				}
			}
		}
	}

	next := current
	if item != nil {
		next = item
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.analyze(c, next)
	}

	if item == nil {
		return
	}

	// The subtree is done; derive the implied properties and the item's
	// value, then attach the item to its context.
	p.implyName(item, n)
	p.implyPhoto(item, n)
	p.implyURL(item, n)

	switch {
	case len(attrs.p) > 0:
		if s, ok := item.firstString("name"); ok {
			item.Value = s
		}
	case len(attrs.u) > 0:
		if s, ok := item.firstString("url"); ok {
			item.Value = s
		}
	}

	if current == nil {
		return
	}
	switch {
	case len(attrs.p) > 0:
		current.AddProperty("p-"+attrs.p[0], NewItemValue(item))
	case len(attrs.u) > 0:
		current.AddProperty("u-"+attrs.u[0], NewItemValue(item))
	default:
		current.Children = append(current.Children, item)
	}
}
