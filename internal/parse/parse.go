// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse walks the lines of a study-plan page and emits one raw
// course record per curriculum entry.
//
// The page is a flattened table. Each entry spans at least five lines (code,
// title, class hours, lab hours, prerequisite) but codes and titles wrap onto
// extra lines, so the parser is a state machine over the line sequence rather
// than a row splitter:
//
//	SeekingStart -> SeekingFirstSemester -> InSemester -> Done
package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/prospectus/internal/tokenize"
	"github.com/pdiddy/prospectus/pkg/types"
)

// codeContinuation at the end of a code line means the code wraps.
const codeContinuation = "/"

// State is a parser state.
type State int

const (
	SeekingStart State = iota
	SeekingFirstSemester
	InSemester
	Done
)

func (s State) String() string {
	switch s {
	case SeekingStart:
		return "seeking-start"
	case SeekingFirstSemester:
		return "seeking-first-semester"
	case InSemester:
		return "in-semester"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminator records why parsing stopped.
type Terminator string

const (
	TerminatedByTotals    Terminator = "total-limit"
	TerminatedByEndPhrase Terminator = "end-phrase"
	TerminatedByEndOfPage Terminator = "end-of-page"
)

// ErrParse matches every *ParseError with errors.Is.
var ErrParse = errors.New("parse error")

// ParseError is a grammar violation at a line of the page.
type ParseError struct {
	Program string
	// Line is the 1-based line number where the failing record or
	// section starts.
	Line   int
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parsing %s at line %d: %s", e.Program, e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Result is the output of a successful parse.
type Result struct {
	Courses []types.RawCourse

	// MarkerFound is false when the page did not repeat the marker on a line
	// of its own and parsing started at the first semester heading.
	MarkerFound bool

	// Semesters is the number of semester headings seen.
	Semesters int

	// TotalBlocks is the number of summary rows skipped.
	TotalBlocks int

	Terminator Terminator
}

// Parse runs the state machine over lines for program. marker is the line
// that opens the program's study plan. On error no courses are returned.
func Parse(lines tokenize.Lines, program, marker string, cfg types.ParserConfig) (Result, error) {
	p := &parser{
		lines:   lines,
		program: program,
		marker:  marker,
		cfg:     cfg.WithDefaults(),
	}
	if err := p.run(); err != nil {
		return Result{}, err
	}
	return p.res, nil
}

type parser struct {
	lines   tokenize.Lines
	program string
	marker  string
	cfg     types.ParserConfig

	state    State
	idx      int
	semester int
	res      Result
}

func (p *parser) run() error {
	for p.state != Done {
		var err error
		switch p.state {
		case SeekingStart:
			p.seekStart()
		case SeekingFirstSemester:
			err = p.seekFirstSemester()
		case InSemester:
			err = p.step()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// seekStart positions the parser after the marker line. When the page has
// no such line the locator has already consumed it and the scan restarts at
// the top of the page.
func (p *parser) seekStart() {
	p.state = SeekingFirstSemester
	if p.marker != "" {
		for i, l := range p.lines {
			if l == p.marker {
				p.idx = i + 1
				p.res.MarkerFound = true
				return
			}
		}
	}
	p.idx = 0
}

func (p *parser) seekFirstSemester() error {
	for i := p.idx; i < p.lines.Len(); i++ {
		if strings.Contains(p.lines[i], p.cfg.SemesterToken) {
			p.idx = i
			p.state = InSemester
			return nil
		}
	}
	return p.errorf(p.idx, nil, "no %q heading after the study plan marker", p.cfg.SemesterToken)
}

// step classifies the current line and consumes it.
func (p *parser) step() error {
	line, ok := p.lines.At(p.idx)
	if !ok || p.lines.BlankFrom(p.idx) {
		p.finish(TerminatedByEndOfPage)
		return nil
	}

	switch {
	case strings.Contains(line, p.cfg.TotalToken):
		p.idx += p.cfg.SkipAfterTotal
		p.res.TotalBlocks++
		if p.cfg.TotalBlockLimit > 0 && p.res.TotalBlocks >= p.cfg.TotalBlockLimit {
			p.finish(TerminatedByTotals)
		}
	case p.isEndPhrase(line):
		p.finish(TerminatedByEndPhrase)
	case strings.Contains(line, p.cfg.SemesterToken):
		p.semester++
		p.res.Semesters++
		p.idx++
	default:
		c, err := p.course()
		if err != nil {
			return err
		}
		p.res.Courses = append(p.res.Courses, c)
	}
	return nil
}

func (p *parser) finish(t Terminator) {
	p.state = Done
	p.res.Terminator = t
}

func (p *parser) isEndPhrase(line string) bool {
	for _, phrase := range p.cfg.EndPhrases {
		if phrase != "" && strings.Contains(line, phrase) {
			return true
		}
	}
	return false
}

// course consumes one entry starting at the current line.
func (p *parser) course() (types.RawCourse, error) {
	start := p.idx

	code := p.lines[p.idx]
	p.idx++
	for strings.HasSuffix(code, codeContinuation) {
		next, ok := p.lines.At(p.idx)
		if !ok {
			return types.RawCourse{}, p.errorf(start, nil, "course code %q continues past the end of the page", code)
		}
		code += next
		p.idx++
	}

	title, ok := p.lines.At(p.idx)
	if !ok {
		return types.RawCourse{}, p.errorf(start, nil, "course %s has no title", code)
	}
	p.idx++
	for {
		next, ok := p.lines.At(p.idx)
		if !ok {
			return types.RawCourse{}, p.errorf(start, nil, "title of %s runs past the end of the page", code)
		}
		if isInteger(next) {
			break
		}
		title += " " + next
		p.idx++
	}

	class, err := p.integer(start, code, "class credit hours")
	if err != nil {
		return types.RawCourse{}, err
	}
	lab, err := p.integer(start, code, "lab credit hours")
	if err != nil {
		return types.RawCourse{}, err
	}

	prereq, ok := p.lines.At(p.idx)
	if !ok {
		return types.RawCourse{}, p.errorf(start, nil, "course %s has no prerequisite column", code)
	}
	p.idx++

	c := types.RawCourse{
		Program:      p.program,
		Semester:     p.semester,
		Code:         code,
		Title:        title,
		ClassHours:   class,
		LabHours:     lab,
		Prerequisite: p.prerequisite(prereq),
	}
	if err := c.Validate(); err != nil {
		return types.RawCourse{}, p.errorf(start, err, "invalid course record")
	}
	return c, nil
}

func (p *parser) integer(start int, code, field string) (int, error) {
	line, ok := p.lines.At(p.idx)
	if !ok {
		return 0, p.errorf(start, nil, "course %s is missing %s", code, field)
	}
	if !isInteger(line) {
		return 0, p.errorf(p.idx, nil, "course %s has non-numeric %s %q", code, field, line)
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, p.errorf(p.idx, err, "course %s has %s out of range", code, field)
	}
	p.idx++
	return n, nil
}

func (p *parser) prerequisite(raw string) *string {
	for _, s := range p.cfg.NoneSentinels {
		if raw == s {
			return nil
		}
	}
	return &raw
}

func (p *parser) errorf(idx int, err error, format string, args ...any) *ParseError {
	return &ParseError{
		Program: p.program,
		Line:    idx + 1,
		Reason:  fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// isInteger reports whether s is a non-empty run of ASCII digits.
func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
