// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// RawCourse is one curriculum entry exactly as the parser read it, before
// the lab-splitting policy is applied.
type RawCourse struct {
	// Program is the degree track the entry belongs to (e.g. "Data Science").
	Program string `json:"program" yaml:"program"`

	// Semester is the 1-based ordinal of the semester block holding the entry.
	Semester int `json:"semester" yaml:"semester"`

	// Code is the course code, with wrapped continuation lines joined verbatim.
	Code string `json:"code" yaml:"code"`

	// Title is the course title, with wrapped lines joined by single spaces.
	Title string `json:"title" yaml:"title"`

	// ClassHours is the lecture credit-hour count.
	ClassHours int `json:"class_hours" yaml:"class_hours"`

	// LabHours is the laboratory credit-hour count.
	LabHours int `json:"lab_hours" yaml:"lab_hours"`

	// Prerequisite is the raw prerequisite text, or nil when the document
	// shows the "none" sentinel. It may hold a single code or a
	// delimiter-separated list.
	Prerequisite *string `json:"prerequisite,omitempty" yaml:"prerequisite,omitempty"`
}

// Validate rejects records that cannot be expanded or stored.
func (r RawCourse) Validate() error {
	switch {
	case strings.TrimSpace(r.Code) == "":
		return fmt.Errorf("empty course code")
	case utf8.RuneCountInString(r.Code) < 2:
		return fmt.Errorf("course code %q is shorter than two characters", r.Code)
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("course %s has an empty title", r.Code)
	case r.ClassHours < 0 || r.LabHours < 0:
		return fmt.Errorf("course %s has negative credit hours (%d+%d)", r.Code, r.ClassHours, r.LabHours)
	case r.Semester < 1:
		return fmt.Errorf("course %s appears before the first semester heading", r.Code)
	}
	return nil
}

// CourseRecord is a storable course unit produced by the assembler. A raw
// entry with a single lab credit becomes two records: the base course and a
// synthetic lab course.
type CourseRecord struct {
	Program  string `json:"program" yaml:"program"`
	Semester int    `json:"semester" yaml:"semester"`
	Code     string `json:"code" yaml:"code"`
	Title    string `json:"title" yaml:"title"`

	// CreditHours is the registerable credit total of this unit.
	CreditHours int `json:"credit_hours" yaml:"credit_hours"`

	// ClassHours and LabHours break CreditHours down when both are known.
	ClassHours int `json:"class_hours" yaml:"class_hours"`
	LabHours   int `json:"lab_hours" yaml:"lab_hours"`

	Prerequisite *string `json:"prerequisite,omitempty" yaml:"prerequisite,omitempty"`

	// Synthetic marks lab units generated from a parent course.
	Synthetic bool `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// PrerequisiteText returns the raw prerequisite or "" when absent.
func (c CourseRecord) PrerequisiteText() string {
	if c.Prerequisite == nil {
		return ""
	}
	return *c.Prerequisite
}

// Program is a named degree track.
type Program struct {
	Name string `json:"name" yaml:"name"`
}

// ProgramCourse places a course in one semester of a program.
type ProgramCourse struct {
	Program  string `json:"program" yaml:"program"`
	Code     string `json:"code" yaml:"code"`
	Semester int    `json:"semester" yaml:"semester"`
}

// PrerequisiteEdge is a directed dependency: Code requires Prerequisite.
type PrerequisiteEdge struct {
	Code         string `json:"code" yaml:"code"`
	Prerequisite string `json:"prerequisite" yaml:"prerequisite"`
}

// StringPtr returns a pointer to s. It keeps literals in tests and fixtures short.
func StringPtr(s string) *string {
	return &s
}
