// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package termtext normalizes the raw words a page's text splits into
// before they reach a dictionary, so that "Shōgun", "shogun" and "SHOGUN"
// collapse to the same term.
package termtext

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cache memoizes a string->string transform. Unlike the teacher's
// stringutils.Normalizer, it never expires entries: term normalization
// runs against a bounded, already-deduplicated vocabulary per pipeline
// run, so a TTL only adds complexity without a matching benefit here.
type cache struct {
	fn func(string) string
	m  sync.Map
}

func newCache(fn func(string) string) *cache {
	return &cache{fn: fn}
}

func (c *cache) apply(s string) string {
	if v, ok := c.m.Load(s); ok {
		return v.(string)
	}
	result := c.fn(s)
	c.m.Store(s, result)
	return result
}

var (
	diacriticsCache = newCache(stripDiacriticsInner)
	termCache       = newCache(normalizeTermInner)
)

// stripDiacriticsInner decomposes ligatures and removes combining marks
// via NFKD, after expanding the handful of Nordic/Germanic letters NFKD
// does not reduce to an ASCII equivalent on its own.
func stripDiacriticsInner(s string) string {
	s = strings.ReplaceAll(s, "æ", "ae")
	s = strings.ReplaceAll(s, "Æ", "AE")
	s = strings.ReplaceAll(s, "œ", "oe")
	s = strings.ReplaceAll(s, "Œ", "OE")
	s = strings.ReplaceAll(s, "ø", "o")
	s = strings.ReplaceAll(s, "Ø", "O")
	s = strings.ReplaceAll(s, "ß", "ss")
	s = strings.ReplaceAll(s, "ð", "d")
	s = strings.ReplaceAll(s, "Ð", "D")
	s = strings.ReplaceAll(s, "þ", "th")
	s = strings.ReplaceAll(s, "Þ", "TH")

	// transform.Chain is not safe for concurrent reuse, so build one per
	// call; the cache above absorbs the cost for repeated inputs.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

func normalizeTermInner(s string) string {
	s = diacriticsCache.apply(s)
	s = strings.ToLower(strings.TrimSpace(s))

	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, "‘", "")
	s = strings.ReplaceAll(s, "`", "")

	s = strings.ReplaceAll(s, ":", "")
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")

	return strings.Join(strings.Fields(s), " ")
}

// StripDiacritics removes diacritics and decomposes ligatures, e.g.
// "Shōgun" -> "Shogun", "Amélie" -> "Amelie", "Björk" -> "Bjork".
func StripDiacritics(s string) string {
	return diacriticsCache.apply(s)
}

// NormalizeTerm applies the full normalization a default word extractor
// uses before handing a candidate term to a dictionary: diacritic
// stripping, lowercasing, apostrophe/colon removal, ampersand and hyphen
// expansion, and whitespace collapsing.
func NormalizeTerm(s string) string {
	return termCache.apply(s)
}
