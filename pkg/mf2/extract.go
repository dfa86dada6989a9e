// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2

import (
	"strings"
	"time"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// dtLayouts is the ISO-8601 layout family accepted by the dt-* extractor.
// A candidate that matches none of them is dropped.
var dtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// dtFormat is the canonical storage format of a dt-* property.
const dtFormat = "2006-01-02 15:04:05"

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range dtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// extractP returns the value of a p-* property. In order: the value-class
// fragments, the title, value or alt attribute, the element's text.
func (p *parser) extractP(n *html.Node) string {
	if fragments := valueClassFragments(n); len(fragments) > 0 {
		return strings.Join(fragments, "")
	}

	for _, name := range []string{"title", "value", "alt"} {
		if dom.HasAttribute(n, name) {
			if v := dom.GetAttribute(n, name); v != "" {
				return v
			}
			break
		}
	}

	return strings.TrimSpace(dom.TextContent(n))
}

// extractU returns the value of a u-* property. The tag determines the
// source attribute; the value-class fragments, some unlikely attribute
// sources and the element's text come after. Attribute sources resolve
// against the base URL, fragments and text don't.
func (p *parser) extractU(n *html.Node) string {
	var src string
	switch n.DataAtom {
	case atom.A, atom.Area, atom.Link:
		src = dom.GetAttribute(n, "href")
	case atom.Img, atom.Audio:
		src = dom.GetAttribute(n, "src")
	case atom.Video:
		src = dom.GetAttribute(n, "src")
		if src == "" {
			src = dom.GetAttribute(n, "poster")
		}
	case atom.Object:
		src = dom.GetAttribute(n, "data")
	}
	if src != "" {
		return p.resolveURL(src)
	}

	if fragments := valueClassFragments(n); len(fragments) > 0 {
		return strings.Join(fragments, "")
	}

	switch n.DataAtom {
	case atom.Abbr:
		src = dom.GetAttribute(n, "title")
	case atom.Data, atom.Input:
		src = dom.GetAttribute(n, "value")
	}
	if src != "" {
		return p.resolveURL(src)
	}

	return strings.TrimSpace(dom.TextContent(n))
}

// extractE returns the markup and text of an e-* property. The markup is
// the serialization of each child node, with every href and src attribute
// in it rewritten to its absolute form.
func (p *parser) extractE(n *html.Node) (markup, text string) {
	buf := new(strings.Builder)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			clone := dom.Clone(c, true)
			p.absolutizeURLs(clone)
			buf.WriteString(dom.OuterHTML(clone))
		case html.TextNode:
			buf.WriteString(c.Data)
		}
	}

	markup = strings.TrimRight(buf.String(), " ")
	text = strings.TrimSpace(dom.TextContent(n))
	return
}

// absolutizeURLs rewrites the href and src attributes of an element and
// all its descendants against the base URL.
func (p *parser) absolutizeURLs(n *html.Node) {
	if n.Type == html.ElementNode {
		for _, name := range []string{"href", "src"} {
			if v := dom.GetAttribute(n, name); v != "" {
				if u := p.resolveURL(v); u != "" {
					dom.SetAttribute(n, name, u)
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.absolutizeURLs(c)
	}
}

// extractDT returns the value of a dt-* property: the first defined of
// the value-class fragments, the datetime, title or value attribute, the
// element's text. The candidate must then parse as an ISO-8601 date or
// the property is dropped.
func (p *parser) extractDT(n *html.Node) (string, bool) {
	var candidate string
	switch fragments := valueClassFragments(n); {
	case len(fragments) > 0:
		candidate = strings.Join(fragments, "")
	default:
		found := false
		for _, name := range []string{"datetime", "title", "value"} {
			if dom.HasAttribute(n, name) {
				candidate = dom.GetAttribute(n, name)
				found = true
				break
			}
		}
		if !found {
			candidate = strings.TrimSpace(dom.TextContent(n))
		}
	}

	t, ok := parseISODate(candidate)
	if !ok {
		return "", false
	}
	return t.Format(dtFormat), true
}
