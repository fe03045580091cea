// Copyright (c) 2025-2026, the WikiPrism contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package page_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giancosta86/wikiprism/internal/page"
)

func alwaysContinue() bool { return true }

func TestExtractNonWikiXMLYieldsNoPages(t *testing.T) {
	var got []page.Page
	err := page.Extract(strings.NewReader(`<root><child/></root>`), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExtractSinglePage(t *testing.T) {
	xml := `<mediawiki><page><title>Alpha</title><text>A1</text></page></mediawiki>`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Title())
	assert.Equal(t, "A1", got[0].Text())
}

func TestExtractIgnoresExtraneousSiblingTags(t *testing.T) {
	xml := `<mediawiki>
		<siteinfo><sitename>Test</sitename></siteinfo>
		<page><title>Alpha</title><text>A1</text></page>
		<page><title>Beta</title><text>B2</text></page>
	</mediawiki>`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Title())
	assert.Equal(t, "Beta", got[1].Title())
}

func TestExtractDropsPageMissingTitle(t *testing.T) {
	xml := `<mediawiki>
		<page><text>Untitled page</text></page>
		<page><title>Alpha</title><text>A1</text></page>
	</mediawiki>`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Title())
}

func TestExtractDropsPageMissingText(t *testing.T) {
	xml := `<mediawiki>
		<page><title>Page without text</title></page>
		<page><title>Alpha</title><text>A1</text></page>
	</mediawiki>`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Title())
}

func TestExtractIgnoresCharDataOutsideTitleAndText(t *testing.T) {
	xml := `<mediawiki><page><title>Alpha</title><revision><text>nested, not a direct child</text></revision><text>A1</text></page></mediawiki>`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A1", got[0].Text())
}

func TestExtractStopsOnCancellation(t *testing.T) {
	xml := `<mediawiki>
		<page><title>Alpha</title><text>A1</text></page>
		<page><title>Beta</title><text>B2</text></page>
		<page><title>Gamma</title><text>C3</text></page>
	</mediawiki>`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, func() bool {
		return len(got) == 0
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, page.ErrCancelled)
	assert.Len(t, got, 1)
}

func TestExtractReturnsMalformedXMLErrorWithoutPanicking(t *testing.T) {
	var got []page.Page
	err := page.Extract(strings.NewReader("INVALID_XML"), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.Error(t, err)
	var malformed *page.MalformedXMLError
	require.True(t, errors.As(err, &malformed))
	assert.Empty(t, got)
}

func TestExtractTruncatesOnMidStreamMalformedXML(t *testing.T) {
	xml := `<mediawiki><page><title>Alpha</title><text>A1</text></page><page><title>Beta`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.Error(t, err)
	var malformed *page.MalformedXMLError
	require.True(t, errors.As(err, &malformed))
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Title())
}

func TestExtractToleratesBareTextBetweenSiblingPages(t *testing.T) {
	xml := `<mediawiki>
		<page><title>Alpha</title><text>A1</text></page>
		__ERROR__
		<page><title>Beta</title><text>B2</text></page>
	</mediawiki>`

	var got []page.Page
	err := page.Extract(strings.NewReader(xml), func(p page.Page) {
		got = append(got, p)
	}, alwaysContinue)

	require.NoError(t, err)
	require.Len(t, got, 2)
}
