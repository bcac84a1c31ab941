// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/prospectus/pkg/types"
)

// ErrCourseNotFound is returned by Course for an unknown code.
var ErrCourseNotFound = errors.New("course not found")

// CourseFilter narrows Courses and the exports. Zero fields match everything.
type CourseFilter struct {
	Program  string
	Semester int
}

// Counts holds the row count of each table.
type Counts struct {
	Programs       int `json:"programs" yaml:"programs"`
	Courses        int `json:"courses" yaml:"courses"`
	ProgramCourses int `json:"program_courses" yaml:"program_courses"`
	Prerequisites  int `json:"prerequisites" yaml:"prerequisites"`
}

// Programs returns the stored program names in alphabetical order.
func (s *Store) Programs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT program_name FROM programs ORDER BY program_name`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Course returns the stored course with code. Program and Semester are left
// empty since a course may belong to several programs.
func (s *Store) Course(ctx context.Context, code string) (types.CourseRecord, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT course_code, course_title, credit_hours, credit_hours_class,
			credit_hours_lab, prerequisites, synthetic
		FROM courses WHERE course_code = ?`), code)

	var (
		c         types.CourseRecord
		prereq    sql.NullString
		synthetic int
	)
	err := row.Scan(&c.Code, &c.Title, &c.CreditHours, &c.ClassHours, &c.LabHours, &prereq, &synthetic)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CourseRecord{}, fmt.Errorf("%w: %s", ErrCourseNotFound, code)
	}
	if err != nil {
		return types.CourseRecord{}, fmt.Errorf("querying course %s: %w", code, err)
	}
	c.Prerequisite = nullString(prereq)
	c.Synthetic = synthetic != 0
	return c, nil
}

// Courses returns one record per program link matching f, ordered by
// program, semester and code.
func (s *Store) Courses(ctx context.Context, f CourseFilter) ([]types.CourseRecord, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT pc.program_name, pc.semester, c.course_code, c.course_title,
			c.credit_hours, c.credit_hours_class, c.credit_hours_lab,
			c.prerequisites, c.synthetic
		FROM program_courses pc
		JOIN courses c ON c.course_code = pc.course_code
		WHERE 1=1`)
	if f.Program != "" {
		qb.WriteString(` AND pc.program_name = ?`)
		args = append(args, f.Program)
	}
	if f.Semester > 0 {
		qb.WriteString(` AND pc.semester = ?`)
		args = append(args, f.Semester)
	}
	qb.WriteString(` ORDER BY pc.program_name, pc.semester, c.course_code`)

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(qb.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("querying courses: %w", err)
	}
	defer rows.Close()

	var out []types.CourseRecord
	for rows.Next() {
		var (
			c         types.CourseRecord
			prereq    sql.NullString
			synthetic int
		)
		if err := rows.Scan(&c.Program, &c.Semester, &c.Code, &c.Title,
			&c.CreditHours, &c.ClassHours, &c.LabHours, &prereq, &synthetic); err != nil {
			return nil, fmt.Errorf("scanning course: %w", err)
		}
		c.Prerequisite = nullString(prereq)
		c.Synthetic = synthetic != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// Prerequisites returns the resolved prerequisite codes of code.
func (s *Store) Prerequisites(ctx context.Context, code string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT prerequisite_code FROM course_prerequisites
		WHERE course_code = ? ORDER BY prerequisite_code`), code)
	if err != nil {
		return nil, fmt.Errorf("querying prerequisites of %s: %w", code, err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning prerequisite: %w", err)
		}
		codes = append(codes, p)
	}
	return codes, rows.Err()
}

// Edges returns every resolved prerequisite edge.
func (s *Store) Edges(ctx context.Context) ([]types.PrerequisiteEdge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT course_code, prerequisite_code FROM course_prerequisites
		ORDER BY course_code, prerequisite_code`)
	if err != nil {
		return nil, fmt.Errorf("querying prerequisite edges: %w", err)
	}
	defer rows.Close()

	var edges []types.PrerequisiteEdge
	for rows.Next() {
		var e types.PrerequisiteEdge
		if err := rows.Scan(&e.Code, &e.Prerequisite); err != nil {
			return nil, fmt.Errorf("scanning prerequisite edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"programs", &c.Programs},
		{"courses", &c.Courses},
		{"program_courses", &c.ProgramCourses},
		{"course_prerequisites", &c.Prerequisites},
	}
	for _, t := range targets {
		if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+t.table).Scan(t.dst); err != nil {
			return Counts{}, fmt.Errorf("counting %s: %w", t.table, err)
		}
	}
	return c, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
