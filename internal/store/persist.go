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

// ErrPersistence matches every *PersistenceError with errors.Is.
var ErrPersistence = errors.New("persistence error")

// PersistenceError reports a failed batch. The batch's transaction has been
// rolled back when it is returned.
type PersistenceError struct {
	Program string
	Op      string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Program == "" {
		return fmt.Sprintf("persisting batch: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persisting %s: %s: %v", e.Program, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// Ack summarizes a committed batch. Counts are rows newly written by the
// batch; rows that already existed are not counted. Edges and Pending only
// cover courses that appear in the batch.
type Ack struct {
	Programs int `json:"programs" yaml:"programs"`
	Courses  int `json:"courses" yaml:"courses"`
	Links    int `json:"links" yaml:"links"`
	Edges    int `json:"edges" yaml:"edges"`

	// Resolved counts edges written for courses of earlier batches whose
	// target this batch supplied.
	Resolved int `json:"resolved,omitempty" yaml:"resolved,omitempty"`

	// Pending lists prerequisite references of the batch's courses whose
	// target course is not stored yet. A later batch that writes the target
	// resolves them.
	Pending []types.PrerequisiteEdge `json:"pending,omitempty" yaml:"pending,omitempty"`
}

// Empty reports whether the batch changed nothing.
func (a Ack) Empty() bool {
	return a.Programs == 0 && a.Courses == 0 && a.Links == 0 && a.Edges == 0 && a.Resolved == 0
}

// Persist writes batch in one transaction. Programs, courses and program
// links are inserted first with course prerequisites left NULL. Then the raw
// prerequisite is set on the courses this batch created, and prerequisite
// edges are resolved across the whole store so that an edge is only written
// once both of its courses exist. Any failure rolls the batch back.
func (s *Store) Persist(ctx context.Context, batch []types.CourseRecord) (Ack, error) {
	if len(batch) == 0 {
		return Ack{}, nil
	}
	program := batch[0].Program

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Ack{}, &PersistenceError{Program: program, Op: "beginning transaction", Err: err}
	}
	defer tx.Rollback()

	w := &batchWriter{ctx: ctx, tx: tx, d: s.dialect}
	ack, err := w.write(batch, s.delimiters)
	if err != nil {
		return Ack{}, &PersistenceError{Program: program, Op: "writing batch", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return Ack{}, &PersistenceError{Program: program, Op: "committing", Err: err}
	}
	return ack, nil
}

// batchWriter runs the insert-if-absent operations of one batch inside its
// transaction.
type batchWriter struct {
	ctx context.Context
	tx  *sql.Tx
	d   dialect
}

func (w *batchWriter) write(batch []types.CourseRecord, delimiters string) (Ack, error) {
	var ack Ack

	seen := make(map[string]bool)
	for _, rec := range batch {
		if seen[rec.Program] {
			continue
		}
		seen[rec.Program] = true
		ok, err := w.upsertProgram(rec.Program)
		if err != nil {
			return Ack{}, err
		}
		if ok {
			ack.Programs++
		}
	}

	var created []types.CourseRecord
	inBatch := make(map[string]bool, len(batch))
	for _, rec := range batch {
		inBatch[rec.Code] = true
		ok, err := w.upsertCourse(rec)
		if err != nil {
			return Ack{}, err
		}
		if ok {
			ack.Courses++
			created = append(created, rec)
		}

		ok, err = w.linkProgramCourse(rec.Program, rec.Code, rec.Semester)
		if err != nil {
			return Ack{}, err
		}
		if ok {
			ack.Links++
		}
	}

	for _, rec := range created {
		if rec.Prerequisite == nil {
			continue
		}
		if err := w.setPrerequisite(rec.Code, *rec.Prerequisite); err != nil {
			return Ack{}, err
		}
	}

	if err := w.resolvePrerequisites(delimiters, inBatch, &ack); err != nil {
		return Ack{}, err
	}
	return ack, nil
}

// exec runs an insert-if-absent statement and reports whether a row was
// written.
func (w *batchWriter) exec(query string, args ...any) (bool, error) {
	res, err := w.tx.ExecContext(w.ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading rows affected: %w", err)
	}
	return n > 0, nil
}

func (w *batchWriter) upsertProgram(name string) (bool, error) {
	ok, err := w.exec(w.d.insertIgnore("programs", "program_name"), name)
	if err != nil {
		return false, fmt.Errorf("inserting program %s: %w", name, err)
	}
	return ok, nil
}

func (w *batchWriter) upsertCourse(rec types.CourseRecord) (bool, error) {
	synthetic := 0
	if rec.Synthetic {
		synthetic = 1
	}
	ok, err := w.exec(
		w.d.insertIgnore("courses",
			"course_code", "course_title", "credit_hours",
			"credit_hours_class", "credit_hours_lab", "synthetic"),
		rec.Code, rec.Title, rec.CreditHours, rec.ClassHours, rec.LabHours, synthetic,
	)
	if err != nil {
		return false, fmt.Errorf("inserting course %s: %w", rec.Code, err)
	}
	return ok, nil
}

func (w *batchWriter) linkProgramCourse(program, code string, semester int) (bool, error) {
	ok, err := w.exec(
		w.d.insertIgnore("program_courses", "program_name", "course_code", "semester"),
		program, code, semester,
	)
	if err != nil {
		return false, fmt.Errorf("linking %s to %s semester %d: %w", code, program, semester, err)
	}
	return ok, nil
}

func (w *batchWriter) setPrerequisite(code, raw string) error {
	_, err := w.tx.ExecContext(w.ctx,
		w.d.rebind(`UPDATE courses SET prerequisites = ? WHERE course_code = ? AND prerequisites IS NULL`),
		raw, code,
	)
	if err != nil {
		return fmt.Errorf("setting prerequisite of %s: %w", code, err)
	}
	return nil
}

func (w *batchWriter) upsertPrerequisiteEdge(code, prerequisite string) (bool, error) {
	ok, err := w.exec(
		w.d.insertIgnore("course_prerequisites", "course_code", "prerequisite_code"),
		code, prerequisite,
	)
	if err != nil {
		return false, fmt.Errorf("inserting prerequisite %s -> %s: %w", code, prerequisite, err)
	}
	return ok, nil
}

// resolvePrerequisites writes an edge for every stored raw prerequisite
// whose target course exists. Edges and unresolved references of courses in
// inBatch are recorded on ack as Edges and Pending; edges completed for
// other courses are counted as Resolved.
func (w *batchWriter) resolvePrerequisites(delimiters string, inBatch map[string]bool, ack *Ack) error {
	codes, err := w.courseCodes()
	if err != nil {
		return err
	}

	refs, err := w.prerequisiteRefs(delimiters)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		own := inBatch[ref.Code]
		if !codes[ref.Prerequisite] {
			if own {
				ack.Pending = append(ack.Pending, ref)
			}
			continue
		}
		ok, err := w.upsertPrerequisiteEdge(ref.Code, ref.Prerequisite)
		if err != nil {
			return err
		}
		switch {
		case !ok:
		case own:
			ack.Edges++
		default:
			ack.Resolved++
		}
	}
	return nil
}

// prerequisiteRefs splits every stored raw prerequisite into references,
// dropping self references.
func (w *batchWriter) prerequisiteRefs(delimiters string) ([]types.PrerequisiteEdge, error) {
	rows, err := w.tx.QueryContext(w.ctx,
		`SELECT course_code, prerequisites FROM courses WHERE prerequisites IS NOT NULL ORDER BY course_code`)
	if err != nil {
		return nil, fmt.Errorf("querying prerequisites: %w", err)
	}
	defer rows.Close()

	var refs []types.PrerequisiteEdge
	for rows.Next() {
		var code, raw string
		if err := rows.Scan(&code, &raw); err != nil {
			return nil, fmt.Errorf("scanning prerequisite: %w", err)
		}
		for _, p := range SplitPrerequisites(raw, delimiters) {
			if p != code {
				refs = append(refs, types.PrerequisiteEdge{Code: code, Prerequisite: p})
			}
		}
	}
	return refs, rows.Err()
}

func (w *batchWriter) courseCodes() (map[string]bool, error) {
	rows, err := w.tx.QueryContext(w.ctx, `SELECT course_code FROM courses`)
	if err != nil {
		return nil, fmt.Errorf("querying course codes: %w", err)
	}
	defer rows.Close()

	codes := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scanning course code: %w", err)
		}
		codes[code] = true
	}
	return codes, rows.Err()
}

// SplitPrerequisites splits a raw prerequisite into course codes. The value
// is split only when it contains one of delimiters; otherwise it is a single
// code. Parts are trimmed, empty parts are dropped and duplicates removed.
func SplitPrerequisites(raw, delimiters string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := []string{raw}
	if delimiters != "" && strings.ContainsAny(raw, delimiters) {
		parts = strings.FieldsFunc(raw, func(r rune) bool {
			return strings.ContainsRune(delimiters, r)
		})
	}

	var out []string
	seen := make(map[string]bool)
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
