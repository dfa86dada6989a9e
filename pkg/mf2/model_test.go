// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

package mf2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"codeberg.org/websem/mf2/pkg/mf2"
)

const modelSrc = `
<div class="h-entry">
	<h1 class="p-name">Title</h1>
	<a class="u-url" href="/p/1">permalink</a>
	<a class="u-url" href="/p/1-alt">alternate</a>
	<time class="dt-published" datetime="2021-02-03T04:05:06">x</time>
	<div class="e-content">body</div>
	<span class="p-category">a</span>
	<span class="p-category">b</span>
</div>
`

func TestGetFirst(t *testing.T) {
	t.Run("prefixed and unprefixed", runParse(modelSrc, "https://example.org/", func(t *testing.T, doc *mf2.Document) {
		require.NotNil(t, doc.GetFirst("entry"))
		require.Same(t, doc.GetFirst("entry"), doc.GetFirst("h-entry"))
		require.Nil(t, doc.GetFirst("card"))
	}))
}

func TestHasType(t *testing.T) {
	t.Run("membership", runParse(modelSrc, "https://example.org/", func(t *testing.T, doc *mf2.Document) {
		entry := doc.GetFirst("entry")
		require.True(t, entry.HasType("entry"))
		require.True(t, entry.HasType("h-entry"))
		require.False(t, entry.HasType("card"))
	}))
}

func TestGetProperties(t *testing.T) {
	t.Run("lookup", runParse(modelSrc, "https://example.org/", func(t *testing.T, doc *mf2.Document) {
		entry := doc.GetFirst("entry")

		require.Len(t, entry.GetProperties("url"), 2)
		require.Len(t, entry.GetProperties("category"), 2)
		require.Empty(t, entry.GetProperties("nope"))

		name, ok := entry.GetProperty("name")
		require.True(t, ok)
		require.Equal(t, "Title", name.String())

		// multi-valued lookup returns the first value
		u, ok := entry.GetProperty("url")
		require.True(t, ok)
		require.Equal(t, "https://example.org/p/1", u.String())

		_, ok = entry.GetProperty("nope")
		require.False(t, ok)

		content, ok := entry.GetProperty("content")
		require.True(t, ok)
		require.Equal(t, "body", content.String())

		published, ok := entry.GetProperty("published")
		require.True(t, ok)
		require.Equal(t, "2021-02-03 04:05:06", published.String())
	}))
}

func TestAll(t *testing.T) {
	src := `
	<div class="h-feed">
		<div class="h-entry">one</div>
		<div class="h-entry">two</div>
		<div class="h-card">who</div>
	</div>
	`

	t.Run("no filter", runParse(src, "", func(t *testing.T, doc *mf2.Document) {
		count := 0
		for range doc.All(nil) {
			count++
		}
		require.Equal(t, 4, count)
	}))

	t.Run("filtered", runParse(src, "", func(t *testing.T, doc *mf2.Document) {
		names := []string{}
		for item := range doc.All(func(i *mf2.Item) bool { return i.HasType("entry") }) {
			v, _ := item.GetProperty("name")
			names = append(names, v.String())
		}
		require.Equal(t, []string{"one", "two"}, names)
	}))
}
