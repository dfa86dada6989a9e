// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/websem/mf2/pkg/mf2"
)

func runParse(src, base string, f func(t *testing.T, doc *mf2.Document)) func(t *testing.T) {
	return func(t *testing.T) {
		doc, err := mf2.Parse(strings.NewReader(src), base)
		require.NoError(t, err)

		f(t, doc)
	}
}

func runParseAndEncode(src, base, expected string) func(t *testing.T) {
	return runParse(src, base, func(t *testing.T, doc *mf2.Document) {
		res, err := doc.AsJSON()
		require.NoError(t, err)

		require.JSONEq(t, expected, res)
	})
}

func TestParser(t *testing.T) {
	tests := []struct {
		html     string
		expected string
	}{
		{
			`<span class="h-card">Alice</span>`,
			`{"items": [
				{"type": ["h-card"], "properties": {"name": ["Alice"]}}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			`<div class="h-card"><a href="/me">Me</a></div>`,
			`{"items": [
				{"type": ["h-card"], "properties": {
					"name": ["Me"],
					"url": ["http://ex.com/me"]
				}}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			`<div class="h-entry"><h1 class="p-name">T</h1><span class="p-author h-card">Bob</span></div>`,
			`{"items": [
				{"type": ["h-entry"], "properties": {
					"name": ["T"],
					"author": [
						{"type": ["h-card"], "properties": {"name": ["Bob"]}, "value": "Bob"}
					]
				}}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			`<div class="h-entry"><div class="e-content">Hi <a href="/x">x</a></div></div>`,
			`{"items": [
				{"type": ["h-entry"], "properties": {
					"content": [
						{"html": "Hi <a href=\"http://ex.com/x\">x</a>", "value": "Hi x"}
					],
					"url": ["http://ex.com/x"]
				}}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			`<span class="h-card"><span class="p-name"><span class="value">Alice</span> (aka <span class="value">Ally</span>)</span></span>`,
			`{"items": [
				{"type": ["h-card"], "properties": {"name": ["AliceAlly"]}}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			`<div class="h-entry"><time class="dt-published" datetime="2020-01-02T03:04:05">Jan 2</time></div>`,
			`{"items": [
				{"type": ["h-entry"], "properties": {
					"published": ["2020-01-02 03:04:05"],
					"name": ["Jan 2"]
				}}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			// A nested item without a p-* or u-* class becomes a child.
			`<div class="h-feed"><div class="h-entry"><span class="p-name">post</span></div></div>`,
			`{"items": [
				{"type": ["h-feed"],
				 "properties": {"name": ["post"]},
				 "children": [
					{"type": ["h-entry"], "properties": {"name": ["post"]}}
				 ]}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			// An element with both u-* and h-* classes becomes the
			// property value, with the resolved URL as its value.
			`<div class="h-entry"><a class="u-in-reply-to h-cite" href="/other">A post</a></div>`,
			`{"items": [
				{"type": ["h-entry"],
				 "properties": {
					"in-reply-to": [
						{"type": ["h-cite"],
						 "properties": {"name": ["A post"], "url": ["http://ex.com/other"]},
						 "value": "http://ex.com/other"}
					],
					"name": ["A post"]
				 }}
			], "rels": {}, "rel-urls": {}}`,
		},
		{
			// Multiple types and multiple property tokens on one element
			// are preserved.
			`<span class="h-card h-adr"><span class="p-name p-label">X</span></span>`,
			`{"items": [
				{"type": ["h-card", "h-adr"], "properties": {"name": ["X"], "label": ["X"]}}
			], "rels": {}, "rel-urls": {}}`,
		},
	}

	for i, test := range tests {
		t.Run(strconv.Itoa(i+1), runParseAndEncode(test.html, "http://ex.com/", test.expected))
	}
}

func TestDiscoveryOrder(t *testing.T) {
	src := `
	<div class="h-feed">
		<div class="h-entry"><span class="p-author h-card">a1</span></div>
		<div class="h-entry">e2</div>
	</div>
	<span class="h-card">solo</span>
	`

	t.Run("items", runParse(src, "", func(t *testing.T, doc *mf2.Document) {
		require.Len(t, doc.TopLevel, 2)
		require.Len(t, doc.Items, 5)

		types := make([]string, len(doc.Items))
		for i, item := range doc.Items {
			types[i] = item.Types[0]
		}
		require.Equal(t, []string{"feed", "entry", "card", "entry", "card"}, types)

		// every top level item is in the flat list
		for _, item := range doc.TopLevel {
			require.Contains(t, doc.Items, item)
			require.Nil(t, item.Parent)
		}

		// every item carries at least one type
		for _, item := range doc.Items {
			require.NotEmpty(t, item.Types)
		}
	}))

	t.Run("parent references", runParse(src, "", func(t *testing.T, doc *mf2.Document) {
		feed := doc.GetFirst("feed")
		for _, c := range feed.Children {
			require.Same(t, feed, c.Parent)
		}

		author, ok := doc.Items[1].GetProperty("author")
		require.True(t, ok)
		require.Same(t, doc.Items[1], author.Item.Parent)
	}))
}

func TestEmbeddedAndDatetimeOnItemElement(t *testing.T) {
	// e-* and dt-* extraction still runs on an element that starts a new
	// item, feeding the enclosing item. p-* and u-* are suppressed there.
	src := `<div class="h-entry">
		<div class="e-summary dt-published h-cite" datetime="2021-05-06T07:08:09">quoted <b>text</b></div>
	</div>`

	t.Run("quirk", runParse(src, "http://ex.com/", func(t *testing.T, doc *mf2.Document) {
		entry := doc.GetFirst("entry")
		require.NotNil(t, entry)

		summary, ok := entry.GetProperty("summary")
		require.True(t, ok)
		require.Equal(t, mf2.EmbeddedValue, summary.Kind)
		require.Equal(t, "quoted <b>text</b>", summary.Embed.HTML)
		require.Equal(t, "quoted text", summary.Embed.Value)

		published, ok := entry.GetProperty("published")
		require.True(t, ok)
		require.Equal(t, "2021-05-06 07:08:09", published.String())

		// the cite item is still created and, with no p-* or u-* class
		// on its element, lands in children
		require.Len(t, entry.Children, 1)
		require.True(t, entry.Children[0].HasType("cite"))
	}))
}

func TestBaseURL(t *testing.T) {
	t.Run("default", runParse(
		`<div class="h-card"><a class="u-url" href="/p">p</a></div>`, "",
		func(t *testing.T, doc *mf2.Document) {
			v, ok := doc.GetFirst("card").GetProperty("url")
			require.True(t, ok)
			require.Equal(t, "http://example.com/p", v.String())
		},
	))

	t.Run("base element", runParse(
		`<html><head><base href="https://other.org/sub/"></head><body>
		<div class="h-card"><a class="u-url" href="p">p</a></div>
		</body></html>`, "http://ex.com/",
		func(t *testing.T, doc *mf2.Document) {
			v, ok := doc.GetFirst("card").GetProperty("url")
			require.True(t, ok)
			require.Equal(t, "https://other.org/sub/p", v.String())
		},
	))

	t.Run("absolute URLs are left alone", runParse(
		`<div class="h-card"><a class="u-url" href="https://a.example/x">p</a></div>`, "http://ex.com/",
		func(t *testing.T, doc *mf2.Document) {
			v, ok := doc.GetFirst("card").GetProperty("url")
			require.True(t, ok)
			require.Equal(t, "https://a.example/x", v.String())
		},
	))

	t.Run("invalid context falls back to default", runParse(
		`<div class="h-card"><a class="u-url" href="/p">p</a></div>`, "ht tp://bad",
		func(t *testing.T, doc *mf2.Document) {
			v, ok := doc.GetFirst("card").GetProperty("url")
			require.True(t, ok)
			require.Equal(t, "http://example.com/p", v.String())
		},
	))
}
