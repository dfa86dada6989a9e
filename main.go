// SPDX-FileCopyrightText: © 2025 Olivier Meunier <olivier@neokraft.net>
//
// SPDX-License-Identifier: AGPL-3.0-only

// mf2 extracts microformats2 data from HTML documents.
package main

import (
	"os"

	"codeberg.org/websem/mf2/internal/app"
)

func main() {
	os.Exit(app.Run())
}
