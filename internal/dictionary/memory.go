// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dictionary

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// InMemory is a Dictionary backed by a plain Go set. It never fails:
// CreateSchema and Close are both no-ops, and AddTerm always succeeds.
type InMemory[T comparable] struct {
	terms map[T]struct{}
}

// NewInMemory builds an empty in-memory dictionary.
func NewInMemory[T comparable]() *InMemory[T] {
	return &InMemory[T]{terms: make(map[T]struct{})}
}

func (d *InMemory[T]) CreateSchema() error {
	return nil
}

func (d *InMemory[T]) AddTerm(term T) error {
	d.terms[term] = struct{}{}
	return nil
}

func (d *InMemory[T]) Close() error {
	return nil
}

// Len reports how many distinct terms have been collected.
func (d *InMemory[T]) Len() int {
	return len(d.terms)
}

// Contains reports whether term was ever added.
func (d *InMemory[T]) Contains(term T) bool {
	_, ok := d.terms[term]
	return ok
}

// Terms returns a snapshot of every collected term. The order is
// unspecified.
func (d *InMemory[T]) Terms() []T {
	out := make([]T, 0, len(d.terms))
	for t := range d.terms {
		out = append(out, t)
	}
	return out
}

// FuzzyMatch ranks the collected terms against query using Bitap fuzzy
// matching, extracting each term's comparison key via keyOf. It returns
// terms in descending order of match quality.
func (d *InMemory[T]) FuzzyMatch(query string, keyOf func(T) string) []T {
	keyed := make(map[string]T, len(d.terms))
	candidates := make([]string, 0, len(d.terms))
	for t := range d.terms {
		k := keyOf(t)
		keyed[k] = t
		candidates = append(candidates, k)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, candidates)
	sort.Sort(ranks)

	out := make([]T, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, keyed[r.Target])
	}
	return out
}
