// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assemble applies the credit-splitting policy to parsed courses.
//
// A single-credit lab is a separately registerable unit, so a course with
// exactly one lab credit becomes two records: the lecture course and a
// synthetic lab course. Labs worth more than one credit stay bundled with
// their parent course.
package assemble

import "github.com/pdiddy/prospectus/pkg/types"

const (
	labLetter      = 'L'
	labTitleSuffix = " - Lab"
)

// Expand converts one raw course into one or two storable records. When the
// lab code would equal the course code (see LabCollides) the single lab
// credit is folded into the base record instead.
func Expand(raw types.RawCourse) []types.CourseRecord {
	base := types.CourseRecord{
		Program:      raw.Program,
		Semester:     raw.Semester,
		Code:         raw.Code,
		Title:        raw.Title,
		CreditHours:  raw.ClassHours,
		ClassHours:   raw.ClassHours,
		Prerequisite: raw.Prerequisite,
	}

	switch {
	case raw.LabHours == 1 && !LabCollides(raw.Code):
		lab := types.CourseRecord{
			Program:      raw.Program,
			Semester:     raw.Semester,
			Code:         LabCode(raw.Code),
			Title:        raw.Title + labTitleSuffix,
			CreditHours:  1,
			LabHours:     1,
			Prerequisite: raw.Prerequisite,
			Synthetic:    true,
		}
		return []types.CourseRecord{base, lab}
	case raw.LabHours >= 1:
		base.CreditHours = raw.ClassHours + raw.LabHours
		base.LabHours = raw.LabHours
	}
	return []types.CourseRecord{base}
}

// ExpandAll expands every raw course, keeping input order with each lab
// record directly after its base course.
func ExpandAll(raws []types.RawCourse) []types.CourseRecord {
	out := make([]types.CourseRecord, 0, len(raws))
	for _, r := range raws {
		out = append(out, Expand(r)...)
	}
	return out
}

// LabCollisions returns the codes of single-credit-lab courses whose lab
// code would be the course's own code, in input order.
func LabCollisions(raws []types.RawCourse) []string {
	var out []string
	for _, r := range raws {
		if r.LabHours == 1 && LabCollides(r.Code) {
			out = append(out, r.Code)
		}
	}
	return out
}

// LabCollides reports whether code already carries the lab letter in second
// position, so LabCode(code) == code.
func LabCollides(code string) bool {
	return LabCode(code) == code
}

// LabCode derives the lab unit's code by replacing the second character of
// code with 'L' (CS1002 -> CL1002). Codes shorter than two characters are
// rejected by the parser and returned unchanged here.
func LabCode(code string) string {
	runes := []rune(code)
	if len(runes) < 2 {
		return code
	}
	runes[1] = labLetter
	return string(runes)
}
