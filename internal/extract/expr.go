// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package extract

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/giancosta86/wikiprism/internal/page"
	"github.com/giancosta86/wikiprism/internal/pipeline"
)

// ExprEnv is the environment a compiled extraction program runs against:
// the page's title and text, plus any helper functions expr.Function
// options were compiled in with.
type ExprEnv struct {
	Title string
	Text  string
}

// NewExprExtractor compiles program once and returns a TermExtractor that
// runs it against every page, decoding the program's result into T via
// decode. This lets an operator describe extraction as a configuration
// value (e.g. "filter(split(Text, \" \"), # matches \"^[A-Z]\")") instead
// of a Go function, at the cost of evaluating an AST per page rather than
// calling compiled Go code.
func NewExprExtractor[T any](program string, decode func(any) (T, error), options ...expr.Option) (pipeline.TermExtractor[T], error) {
	compileOptions := append([]expr.Option{expr.Env(ExprEnv{})}, options...)
	compiled, err := expr.Compile(program, compileOptions...)
	if err != nil {
		return nil, fmt.Errorf("extract: compiling expression: %w", err)
	}

	return buildExtractor(compiled, decode), nil
}

func buildExtractor[T any](compiled *vm.Program, decode func(any) (T, error)) pipeline.TermExtractor[T] {
	return func(p page.Page) ([]T, error) {
		output, err := expr.Run(compiled, ExprEnv{Title: p.Title(), Text: p.Text()})
		if err != nil {
			return nil, fmt.Errorf("extract: running expression: %w", err)
		}

		values, ok := output.([]any)
		if !ok {
			single, decodeErr := decode(output)
			if decodeErr != nil {
				return nil, fmt.Errorf("extract: decoding result: %w", decodeErr)
			}
			return []T{single}, nil
		}

		terms := make([]T, 0, len(values))
		for _, v := range values {
			term, decodeErr := decode(v)
			if decodeErr != nil {
				return nil, fmt.Errorf("extract: decoding result: %w", decodeErr)
			}
			terms = append(terms, term)
		}
		return terms, nil
	}
}
