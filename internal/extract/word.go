// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package extract supplies ready-made TermExtractor implementations: a
// default whitespace/punctuation word splitter, and an expr-lang/expr
// powered extractor for callers who want to describe extraction rules as
// data instead of Go code.
package extract

import (
	"strings"
	"unicode"

	"github.com/giancosta86/wikiprism/internal/page"
	"github.com/giancosta86/wikiprism/internal/pipeline"
	"github.com/giancosta86/wikiprism/pkg/termtext"
)

// WordTerm is the term type produced by NewWordExtractor: a single
// normalized word, together with the title of the page it came from.
type WordTerm struct {
	Word        string
	SourceTitle string
}

// NewWordExtractor builds a TermExtractor that splits a page's text on
// whitespace and punctuation, normalizes each resulting word via
// pkg/termtext, and drops anything shorter than minLength or present in
// stopWords.
func NewWordExtractor(minLength int, stopWords map[string]bool) pipeline.TermExtractor[WordTerm] {
	if stopWords == nil {
		stopWords = map[string]bool{}
	}
	return func(p page.Page) ([]WordTerm, error) {
		fields := strings.FieldsFunc(p.Text(), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})

		seen := make(map[string]bool, len(fields))
		terms := make([]WordTerm, 0, len(fields))
		for _, raw := range fields {
			word := termtext.NormalizeTerm(raw)
			if len(word) < minLength || stopWords[word] || seen[word] {
				continue
			}
			seen[word] = true
			terms = append(terms, WordTerm{Word: word, SourceTitle: p.Title()})
		}
		return terms, nil
	}
}
