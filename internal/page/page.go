// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package page holds the Page value type and the streaming extractor that
// turns a MediaWiki-style XML dump into a sequence of Pages.
package page

// Page is an immutable title/text pair extracted from a wiki dump.
type Page struct {
	title string
	text  string
}

// New builds a Page from its title and text.
func New(title, text string) Page {
	return Page{title: title, text: text}
}

// Title returns the page's title.
func (p Page) Title() string {
	return p.title
}

// Text returns the page's body text.
func (p Page) Text() string {
	return p.text
}
