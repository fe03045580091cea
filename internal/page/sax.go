// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package page

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrCancelled is returned by Extract when the supplied continuation
// callback declines to continue after a page has been emitted.
var ErrCancelled = errors.New("page: extraction cancelled")

// MalformedXMLError wraps the underlying decoder error produced when the
// wiki stream cannot be parsed any further. Extract treats this as a
// truncation: whatever pages were collected up to that point have already
// been delivered to the callback.
type MalformedXMLError struct {
	Err error
}

func (e *MalformedXMLError) Error() string {
	return fmt.Sprintf("page: malformed wiki xml: %v", e.Err)
}

func (e *MalformedXMLError) Unwrap() error {
	return e.Err
}

// OnPage is invoked once for every well-formed page encountered by Extract.
type OnPage func(Page)

// ContinuationProvider is consulted at the end of every <page> element,
// whether or not that page was delivered. Returning false tells Extract to
// stop reading the stream immediately.
type ContinuationProvider func() bool

// Extract reads a MediaWiki-style XML dump from r, one token at a time, and
// invokes onPage for every <page> element that carries both a non-empty
// <title> and a non-empty <text> direct child. Character data belonging to
// other elements, or nested deeper than a direct child of <page>, is
// ignored.
//
// Extract returns nil once the stream is exhausted. If shouldContinue
// returns false at the end of a <page> element, Extract stops and returns
// ErrCancelled. If the decoder cannot make further progress because the
// stream is not well-formed XML, Extract returns a *MalformedXMLError; the
// pages collected so far have already reached onPage.
func Extract(r io.Reader, onPage OnPage, shouldContinue ContinuationProvider) error {
	dec := xml.NewDecoder(r)

	var stack []string
	var titleBuf, textBuf strings.Builder
	var inPage, capturingTitle, capturingText bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &MalformedXMLError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, name)

			switch {
			case name == "page":
				inPage = true
				titleBuf.Reset()
				textBuf.Reset()
				capturingTitle = false
				capturingText = false
			case inPage && parent == "page" && name == "title":
				capturingTitle = true
			case inPage && parent == "page" && name == "text":
				capturingText = true
			}

		case xml.CharData:
			switch {
			case len(stack) == 0 && strings.TrimSpace(string(t)) != "":
				// encoding/xml does not reject text outside the root
				// element, but such a stream is not well-formed XML.
				return &MalformedXMLError{Err: errors.New("character data outside the root element")}
			case capturingTitle:
				titleBuf.Write(t)
			case capturingText:
				textBuf.Write(t)
			}

		case xml.EndElement:
			name := t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

			switch name {
			case "title":
				capturingTitle = false
			case "text":
				capturingText = false
			case "page":
				if !inPage {
					continue
				}
				inPage = false
				if titleBuf.Len() > 0 && textBuf.Len() > 0 {
					onPage(New(titleBuf.String(), textBuf.String()))
				}
				if !shouldContinue() {
					return ErrCancelled
				}
			}
		}
	}
}
