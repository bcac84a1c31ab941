// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Curriculum is the exported view of the store: programs, their semesters,
// and the courses of each semester.
type Curriculum struct {
	Programs []CurriculumProgram `json:"programs" yaml:"programs"`
}

// CurriculumProgram is one program of an export.
type CurriculumProgram struct {
	Name        string               `json:"name" yaml:"name"`
	CreditHours int                  `json:"credit_hours" yaml:"credit_hours"`
	Semesters   []CurriculumSemester `json:"semesters" yaml:"semesters"`
}

// CurriculumSemester is one semester of an exported program.
type CurriculumSemester struct {
	Semester    int                `json:"semester" yaml:"semester"`
	CreditHours int                `json:"credit_hours" yaml:"credit_hours"`
	Courses     []CurriculumCourse `json:"courses" yaml:"courses"`
}

// CurriculumCourse is a course row of an export. Requires holds the
// resolved prerequisite edges; Prerequisite keeps the raw text.
type CurriculumCourse struct {
	Code         string   `json:"code" yaml:"code"`
	Title        string   `json:"title" yaml:"title"`
	CreditHours  int      `json:"credit_hours" yaml:"credit_hours"`
	ClassHours   int      `json:"class_hours" yaml:"class_hours"`
	LabHours     int      `json:"lab_hours" yaml:"lab_hours"`
	Prerequisite string   `json:"prerequisite,omitempty" yaml:"prerequisite,omitempty"`
	Requires     []string `json:"requires,omitempty" yaml:"requires,omitempty"`
	Synthetic    bool     `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// ExportYAML writes the curriculum matching f to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, f CourseFilter) error {
	cur, err := s.Curriculum(ctx, f)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cur); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the curriculum matching f to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, f CourseFilter) error {
	cur, err := s.Curriculum(ctx, f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cur); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// Curriculum groups the courses matching f by program and semester.
func (s *Store) Curriculum(ctx context.Context, f CourseFilter) (Curriculum, error) {
	courses, err := s.Courses(ctx, f)
	if err != nil {
		return Curriculum{}, fmt.Errorf("querying for export: %w", err)
	}
	edges, err := s.Edges(ctx)
	if err != nil {
		return Curriculum{}, fmt.Errorf("querying for export: %w", err)
	}

	requires := make(map[string][]string)
	for _, e := range edges {
		requires[e.Code] = append(requires[e.Code], e.Prerequisite)
	}

	// Courses is ordered by program then semester, so groups are contiguous.
	var cur Curriculum
	for _, c := range courses {
		n := len(cur.Programs)
		if n == 0 || cur.Programs[n-1].Name != c.Program {
			cur.Programs = append(cur.Programs, CurriculumProgram{Name: c.Program})
			n++
		}
		prog := &cur.Programs[n-1]

		m := len(prog.Semesters)
		if m == 0 || prog.Semesters[m-1].Semester != c.Semester {
			prog.Semesters = append(prog.Semesters, CurriculumSemester{Semester: c.Semester})
			m++
		}
		sem := &prog.Semesters[m-1]

		sem.Courses = append(sem.Courses, CurriculumCourse{
			Code:         c.Code,
			Title:        c.Title,
			CreditHours:  c.CreditHours,
			ClassHours:   c.ClassHours,
			LabHours:     c.LabHours,
			Prerequisite: c.PrerequisiteText(),
			Requires:     requires[c.Code],
			Synthetic:    c.Synthetic,
		})
		sem.CreditHours += c.CreditHours
		prog.CreditHours += c.CreditHours
	}
	return cur, nil
}
