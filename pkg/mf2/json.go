// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// documentJSON is the canonical microformats2 JSON shape. Only the top
// level items are listed; nested items appear as property values or under
// their parent's children key.
type documentJSON struct {
	Items   []*itemJSON               `json:"items"`
	Rels    map[string][]string       `json:"rels"`
	RelURLs map[string]map[string]any `json:"rel-urls"`
}

type itemJSON struct {
	Type       []string         `json:"type"`
	Properties map[string][]any `json:"properties"`
	Children   []*itemJSON      `json:"children,omitempty"`
	Value      string           `json:"value,omitempty"`
}

func (i *Item) asJSON() *itemJSON {
	res := &itemJSON{
		Type:       make([]string, len(i.Types)),
		Properties: map[string][]any{},
		Value:      i.Value,
	}
	for idx, t := range i.Types {
		res.Type[idx] = "h-" + t
	}

	// Property keys lose their prefix in the JSON form. When two
	// prefixes share a suffix, their values merge in prefix lookup
	// order.
	for _, prefix := range propertyPrefixes {
		for key, values := range i.Properties {
			suffix, ok := strings.CutPrefix(key, prefix+"-")
			if !ok {
				continue
			}
			for _, v := range values {
				switch v.Kind {
				case EmbeddedValue:
					res.Properties[suffix] = append(res.Properties[suffix], v.Embed)
				case ItemValue:
					res.Properties[suffix] = append(res.Properties[suffix], v.Item.asJSON())
				default:
					res.Properties[suffix] = append(res.Properties[suffix], v.Str)
				}
			}
		}
	}

	for _, c := range i.Children {
		res.Children = append(res.Children, c.asJSON())
	}

	return res
}

// AsJSON returns the document in its canonical microformats2 JSON form,
// indented, with HTML escaping disabled.
func (d *Document) AsJSON() (string, error) {
	res := &documentJSON{
		Items:   []*itemJSON{},
		Rels:    d.Rels,
		RelURLs: d.RelURLs,
	}
	for _, i := range d.TopLevel {
		res.Items = append(res.Items, i.asJSON())
	}

	buf := new(strings.Builder)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AsJSON returns one item in its canonical JSON form, indented, with
// HTML escaping disabled.
func (i *Item) AsJSON() (string, error) {
	buf := new(strings.Builder)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(i.asJSON()); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// AsRawData returns the document's JSON form decoded into generic values.
func (d *Document) AsRawData() (any, error) {
	s, err := d.AsJSON()
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

type rawItem struct {
	Type       []string                     `json:"type"`
	Properties map[string][]json.RawMessage `json:"properties"`
	Children   []*rawItem                   `json:"children"`
	Value      string                       `json:"value"`
}

func (r *rawItem) toItem() (*Item, error) {
	types := make([]string, len(r.Type))
	for i, t := range r.Type {
		types[i] = stripTypePrefix(t)
	}

	item := newItem(types, nil)
	item.Value = r.Value

	for key, raws := range r.Properties {
		for _, raw := range raws {
			v, prefix, err := decodePropertyValue(raw)
			if err != nil {
				return nil, fmt.Errorf("property %s: %w", key, err)
			}
			item.AddProperty(prefix+"-"+key, v)
		}
	}

	for _, c := range r.Children {
		child, err := c.toItem()
		if err != nil {
			return nil, err
		}
		item.Children = append(item.Children, child)
	}

	return item, nil
}

// decodePropertyValue rebuilds a property value from its JSON form. The
// prefix information is gone from the JSON key, so values come back under
// the prefix their shape implies: embedded structs under e-, everything
// else under p-. Queries are prefix agnostic and the next serialization
// strips the prefix again, so the round trip stays stable.
func decodePropertyValue(raw json.RawMessage) (PropertyValue, string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return NewTextValue(s), "p", nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return PropertyValue{}, "", err
	}

	if _, ok := probe["type"]; ok {
		var r rawItem
		if err := json.Unmarshal(raw, &r); err != nil {
			return PropertyValue{}, "", err
		}
		item, err := r.toItem()
		if err != nil {
			return PropertyValue{}, "", err
		}
		return NewItemValue(item), "p", nil
	}

	var e Embedded
	if err := json.Unmarshal(raw, &e); err != nil {
		return PropertyValue{}, "", err
	}
	return NewEmbeddedValue(e.HTML, e.Value), "e", nil
}

// NewFromJSON rebuilds a [Document] from its canonical JSON form. Parent
// references are not restored and the flat item list is rebuilt with a
// pre-order traversal over each top level item, its property items and
// its children.
func NewFromJSON(data []byte) (*Document, error) {
	var raw struct {
		Items   []*rawItem                `json:"items"`
		Rels    map[string][]string       `json:"rels"`
		RelURLs map[string]map[string]any `json:"rel-urls"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid mf2 JSON: %w", err)
	}

	doc := newDocument()
	if raw.Rels != nil {
		doc.Rels = raw.Rels
	}
	if raw.RelURLs != nil {
		doc.RelURLs = raw.RelURLs
	}

	for _, r := range raw.Items {
		item, err := r.toItem()
		if err != nil {
			return nil, fmt.Errorf("invalid mf2 JSON: %w", err)
		}
		doc.TopLevel = append(doc.TopLevel, item)
		doc.registerItems(item)
	}

	return doc, nil
}

func (d *Document) registerItems(i *Item) {
	d.Items = append(d.Items, i)
	for _, key := range slices.Sorted(maps.Keys(i.Properties)) {
		for _, v := range i.Properties[key] {
			if v.Kind == ItemValue {
				d.registerItems(v.Item)
			}
		}
	}
	for _, c := range i.Children {
		d.registerItems(c)
	}
}
