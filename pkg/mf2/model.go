// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2

import (
	"iter"
	"log/slog"
	"strings"
)

// propertyPrefixes is the prefix lookup order used by the
// unprefixed query methods.
var propertyPrefixes = []string{"p", "u", "e", "dt"}

// Document contains the items found in a page and provides query methods.
type Document struct {
	// Items holds every item at any depth, in discovery order.
	Items []*Item
	// TopLevel holds the top level items, in document order.
	TopLevel []*Item
	// Rels maps a relation name to its URLs. It is not populated by the
	// parser and exists as an extension point.
	Rels map[string][]string
	// RelURLs maps a URL to its relation metadata. Same as Rels, it's an
	// extension point only.
	RelURLs map[string]map[string]any
}

func newDocument() *Document {
	return &Document{
		Items:    []*Item{},
		TopLevel: []*Item{},
		Rels:     map[string][]string{},
		RelURLs:  map[string]map[string]any{},
	}
}

// ValueKind is a property value type.
type ValueKind uint8

const (
	// TextValue is a plain text or resolved URL value.
	TextValue ValueKind = iota
	// EmbeddedValue is an embedded markup value (e-* properties).
	EmbeddedValue
	// ItemValue is a nested item consumed as a property value.
	ItemValue
)

// Embedded is the value of an e-* property; markup and its text content.
type Embedded struct {
	HTML  string `json:"html"`
	Value string `json:"value"`
}

// PropertyValue is one value of an item property. It's a tagged variant
// of a string, an [Embedded] struct or a nested [Item].
type PropertyValue struct {
	Kind  ValueKind
	Str   string
	Embed *Embedded
	Item  *Item
}

// NewTextValue returns a [TextValue] property value.
func NewTextValue(s string) PropertyValue {
	return PropertyValue{Kind: TextValue, Str: s}
}

// NewEmbeddedValue returns an [EmbeddedValue] property value.
func NewEmbeddedValue(markup, text string) PropertyValue {
	return PropertyValue{Kind: EmbeddedValue, Embed: &Embedded{HTML: markup, Value: text}}
}

// NewItemValue returns an [ItemValue] property value.
func NewItemValue(i *Item) PropertyValue {
	return PropertyValue{Kind: ItemValue, Item: i}
}

// String returns the value's string form. For an [EmbeddedValue] it's the
// text content, for an [ItemValue] the nested item's value.
func (v PropertyValue) String() string {
	switch v.Kind {
	case EmbeddedValue:
		return v.Embed.Value
	case ItemValue:
		return v.Item.Value
	}
	return v.Str
}

// Item is one microformat instance (an element carrying at least
// one h-* class).
type Item struct {
	// Types holds the item types, stripped of their h- prefix.
	Types []string
	// Properties maps a prefixed property key (p-name, u-url...) to its
	// ordered values.
	Properties map[string][]PropertyValue
	// Children holds the nested items that were not consumed as a
	// property value.
	Children []*Item
	// Parent is the enclosing item, nil for a top level item. It's a non
	// owning reference, only there for traversal.
	Parent *Item `json:"-"`
	// Value is the item's value when it was consumed as a p-* or u-*
	// property.
	Value string
}

func newItem(types []string, parent *Item) *Item {
	return &Item{
		Types:      types,
		Properties: map[string][]PropertyValue{},
		Children:   []*Item{},
		Parent:     parent,
	}
}

// stripTypePrefix removes an optional h- prefix from a type query.
func stripTypePrefix(name string) string {
	return strings.TrimPrefix(name, "h-")
}

// HasType returns true when the item carries the given type. The query
// accepts both the prefixed (h-entry) and unprefixed (entry) forms.
func (i *Item) HasType(name string) bool {
	name = stripTypePrefix(name)
	for _, t := range i.Types {
		if t == name {
			return true
		}
	}
	return false
}

// AddProperty appends a value under a prefixed property key.
func (i *Item) AddProperty(key string, v PropertyValue) {
	i.Properties[key] = append(i.Properties[key], v)
}

// GetProperties returns the values stored under the prefixed key matching
// an unprefixed query. Prefixes are searched in p, u, e, dt order and the
// first hit wins. It returns an empty sequence when nothing matches.
func (i *Item) GetProperties(key string) []PropertyValue {
	if v, ok := i.Properties[key]; ok {
		return v
	}
	for _, prefix := range propertyPrefixes {
		if v, ok := i.Properties[prefix+"-"+key]; ok {
			return v
		}
	}
	return []PropertyValue{}
}

// GetProperty returns the first value of [Item.GetProperties]. When the
// property holds more than one value, it emits a warning.
func (i *Item) GetProperty(key string) (PropertyValue, bool) {
	values := i.GetProperties(key)
	if len(values) == 0 {
		return PropertyValue{}, false
	}
	if len(values) > 1 {
		slog.Warn("property has multiple values",
			slog.String("property", key),
			slog.Int("count", len(values)),
		)
	}
	return values[0], true
}

// hasProperty returns true when the item stores the unprefixed key under
// any prefix.
func (i *Item) hasProperty(key string) bool {
	for _, prefix := range propertyPrefixes {
		if _, ok := i.Properties[prefix+"-"+key]; ok {
			return true
		}
	}
	return false
}

// firstString returns the string form of the first value under an
// unprefixed key. Unlike [Item.GetProperty] it stays silent on
// multi-valued properties.
func (i *Item) firstString(key string) (string, bool) {
	values := i.GetProperties(key)
	if len(values) == 0 {
		return "", false
	}
	return values[0].String(), true
}

// hasPrefixedProperty returns true when the item has any property stored
// under the given prefix.
func (i *Item) hasPrefixedProperty(prefix string) bool {
	for k := range i.Properties {
		if strings.HasPrefix(k, prefix+"-") {
			return true
		}
	}
	return false
}

func (i *Item) every(f func(*Item) bool, filter func(*Item) bool) bool {
	if filter == nil || filter(i) {
		if !f(i) {
			return false
		}
	}
	for _, c := range i.Children {
		if !c.every(f, filter) {
			return false
		}
	}
	return true
}

// GetFirst returns the first item, in discovery order, carrying the given
// type. The query accepts both the prefixed and unprefixed forms.
func (d *Document) GetFirst(name string) *Item {
	for _, i := range d.Items {
		if i.HasType(name) {
			return i
		}
	}
	return nil
}

// All returns a recursive iterator over the top level items and their
// children, with a filter function (can be nil).
func (d *Document) All(filter func(*Item) bool) iter.Seq[*Item] {
	return func(yield func(*Item) bool) {
		for _, i := range d.TopLevel {
			if !i.every(yield, filter) {
				break
			}
		}
	}
}
