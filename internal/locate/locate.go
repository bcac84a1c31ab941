// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate finds the page of the prospectus that holds a program's
// study plan. The prospectus is the text extracted from the source PDF, with
// pages separated by form feeds (the layout pdftotext produces).
package locate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// pageBreak separates pages in extracted text.
const pageBreak = '\f'

var (
	// ErrSourceNotFound is returned when the document cannot be opened or read.
	ErrSourceNotFound = errors.New("source document not found")

	// ErrMarkerNotFound is returned when no page carries the program's marker.
	ErrMarkerNotFound = errors.New("program marker not found")
)

// PageText is the full text of the page that matched a program's marker.
type PageText struct {
	// Page is the 1-based page number within the document.
	Page int

	// Marker is the heading that matched.
	Marker string

	// Text is the page content, without the trailing form feed.
	Text string
}

// Marker builds the study-plan heading for program from template.
func Marker(template, program string) string {
	return fmt.Sprintf(template, program)
}

// Locate opens the document at path and returns the first page containing
// the marker built from template and program. The file is closed before
// Locate returns. Cancelling ctx stops the scan between pages.
func Locate(ctx context.Context, path, template, program string) (PageText, error) {
	f, err := os.Open(path)
	if err != nil {
		return PageText{}, fmt.Errorf("%w: opening %s: %v", ErrSourceNotFound, path, err)
	}
	defer f.Close()

	page, err := Scan(ctx, f, Marker(template, program))
	if err != nil && !errors.Is(err, ErrMarkerNotFound) && ctx.Err() == nil {
		return PageText{}, fmt.Errorf("%w: reading %s: %v", ErrSourceNotFound, path, err)
	}
	return page, err
}

// Scan reads pages from r in order and returns the first whose text contains
// marker verbatim.
func Scan(ctx context.Context, r io.Reader, marker string) (PageText, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(splitPages)

	page := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return PageText{}, fmt.Errorf("scanning for %q: %w", marker, err)
		}
		page++
		text := sc.Text()
		if strings.Contains(text, marker) {
			return PageText{Page: page, Marker: marker, Text: text}, nil
		}
	}
	if err := sc.Err(); err != nil {
		return PageText{}, err
	}
	return PageText{}, fmt.Errorf("%w: %q in %d page(s)", ErrMarkerNotFound, marker, page)
}

// splitPages is a bufio.SplitFunc yielding form-feed separated pages.
func splitPages(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == pageBreak {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
