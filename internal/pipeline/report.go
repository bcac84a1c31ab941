// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"time"

	"github.com/pdiddy/prospectus/internal/locate"
	"github.com/pdiddy/prospectus/internal/parse"
	"github.com/pdiddy/prospectus/internal/store"
	"github.com/pdiddy/prospectus/pkg/types"
)

// Stage names a step of the per-program pipeline.
type Stage string

const (
	StageLocate  Stage = "locate"
	StageParse   Stage = "parse"
	StageExpand  Stage = "expand"
	StagePersist Stage = "persist"
	StageUnknown Stage = "unknown"
)

// classify maps an error to the stage that produced it.
func classify(err error) Stage {
	switch {
	case errors.Is(err, locate.ErrSourceNotFound), errors.Is(err, locate.ErrMarkerNotFound):
		return StageLocate
	case errors.Is(err, parse.ErrParse):
		return StageParse
	case errors.Is(err, store.ErrPersistence):
		return StagePersist
	}
	return StageUnknown
}

// ProgramResult is the outcome of one program.
type ProgramResult struct {
	Program string

	// Stage is the furthest stage reached, or the stage that failed.
	Stage Stage

	// Page is the 1-based document page holding the study plan, 0 if the
	// program was not located.
	Page int

	// MarkerFound reports whether the marker was also a line of its own on
	// the page, as opposed to the parser restarting at the top.
	MarkerFound bool

	Semesters int

	// Parsed is the number of entries read from the page; Records holds
	// them after lab expansion.
	Parsed  int
	Records []types.CourseRecord

	// LabCollisions lists courses whose single-credit lab was folded into
	// the course because the lab code would repeat the course code.
	LabCollisions []string

	// Ack is the store's summary of the program's batch. It is zero for dry
	// runs and failed programs.
	Ack store.Ack

	Err     error
	Elapsed time.Duration
}

// Failed reports whether the program was abandoned.
func (r ProgramResult) Failed() bool {
	return r.Err != nil
}

// Diagnostic is a note about one program collected during a run.
type Diagnostic struct {
	Program string `json:"program" yaml:"program"`
	Stage   Stage  `json:"stage" yaml:"stage"`
	Page    int    `json:"page,omitempty" yaml:"page,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Report is the outcome of a run. It replaces shared loggers and counters:
// everything a caller needs about the run is returned here.
type Report struct {
	RunID       string
	Started     time.Time
	Finished    time.Time
	Results     []ProgramResult
	Diagnostics []Diagnostic
}

// Loaded returns the number of programs that completed.
func (r Report) Loaded() int {
	n := 0
	for _, res := range r.Results {
		if !res.Failed() {
			n++
		}
	}
	return n
}

// Failed returns the number of abandoned programs.
func (r Report) Failed() int {
	return len(r.Results) - r.Loaded()
}

// Total returns the number of programs processed.
func (r Report) Total() int {
	return len(r.Results)
}

// HasFailures reports whether any program failed.
func (r Report) HasFailures() bool {
	return r.Failed() > 0
}

// Result returns the result for program.
func (r Report) Result(program string) (ProgramResult, bool) {
	for _, res := range r.Results {
		if res.Program == program {
			return res, true
		}
	}
	return ProgramResult{}, false
}

// Records returns the expanded records of every successful program in run
// order.
func (r Report) Records() []types.CourseRecord {
	var out []types.CourseRecord
	for _, res := range r.Results {
		if !res.Failed() {
			out = append(out, res.Records...)
		}
	}
	return out
}

func (r *Report) add(res ProgramResult) {
	r.Results = append(r.Results, res)
	r.Diagnostics = append(r.Diagnostics, diagnose(res)...)
}

func diagnose(res ProgramResult) []Diagnostic {
	var out []Diagnostic
	if res.Err != nil {
		d := Diagnostic{Program: res.Program, Stage: res.Stage, Page: res.Page, Message: res.Err.Error()}
		var pe *parse.ParseError
		if errors.As(res.Err, &pe) {
			d.Line = pe.Line
		}
		return append(out, d)
	}
	if res.Page > 0 && !res.MarkerFound {
		out = append(out, Diagnostic{
			Program: res.Program, Stage: StageParse, Page: res.Page,
			Message: "marker not on a line of its own; parsed from the top of the page",
		})
	}
	for _, code := range res.LabCollisions {
		out = append(out, Diagnostic{
			Program: res.Program, Stage: StageExpand, Page: res.Page,
			Message: "lab of " + code + " would reuse the course code; lab credit folded into the course",
		})
	}
	for _, p := range res.Ack.Pending {
		out = append(out, Diagnostic{
			Program: res.Program, Stage: StagePersist, Page: res.Page,
			Message: "prerequisite " + p.Prerequisite + " of " + p.Code + " is not stored yet",
		})
	}
	return out
}
