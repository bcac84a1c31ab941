// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/prospectus/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := types.StoreConfig{
		Driver: types.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "db", "courses.db"),
	}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func course(program string, semester int, code, title string, credit, class, lab int, prereq *string) types.CourseRecord {
	return types.CourseRecord{
		Program:      program,
		Semester:     semester,
		Code:         code,
		Title:        title,
		CreditHours:  credit,
		ClassHours:   class,
		LabHours:     lab,
		Prerequisite: prereq,
	}
}

// dataScienceBatch is the expanded form of a two-semester study plan with
// three entries per semester, one of which has a single-credit lab.
func dataScienceBatch() []types.CourseRecord {
	lab := course("Data Science", 1, "CL1002", "Programming Fundamentals - Lab", 1, 0, 1, nil)
	lab.Synthetic = true
	return []types.CourseRecord{
		course("Data Science", 1, "CS1002", "Programming Fundamentals", 3, 3, 0, nil),
		lab,
		course("Data Science", 1, "MT1003", "Calculus and Analytical Geometry", 3, 3, 0, nil),
		course("Data Science", 1, "SS1012", "Functional English", 2, 2, 0, nil),
		course("Data Science", 2, "MT1004", "Linear Algebra", 3, 3, 0, nil),
		course("Data Science", 2, "DS1001", "Introduction to Data Science", 4, 2, 2, nil),
		course("Data Science", 2, "SS1007", "Islamic Studies", 2, 2, 0, nil),
	}
}

// --- Open ---

func TestOpenCreatesDirectoryAndSchema(t *testing.T) {
	s := testStore(t)

	counts, err := s.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
	assert.Equal(t, types.DriverSQLite, s.Driver())
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.db")
	cfg := types.StoreConfig{Driver: types.DriverSQLite, DSN: path}

	s1, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	_, err = s1.Persist(context.Background(), dataScienceBatch())
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s2.Close()

	counts, err := s2.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, counts.Courses)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(context.Background(), types.StoreConfig{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported store driver")

	_, err = Open(context.Background(), types.StoreConfig{Driver: types.DriverSQLite})
	assert.ErrorContains(t, err, "empty DSN")
}

// --- Persist ---

func TestPersistDataScienceScenario(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ack, err := s.Persist(ctx, dataScienceBatch())
	require.NoError(t, err)
	assert.Equal(t, Ack{Programs: 1, Courses: 7, Links: 7}, ack)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Programs: 1, Courses: 7, ProgramCourses: 7, Prerequisites: 0}, counts)

	semesters := make(map[int]bool)
	courses, err := s.Courses(ctx, CourseFilter{Program: "Data Science"})
	require.NoError(t, err)
	for _, c := range courses {
		semesters[c.Semester] = true
	}
	assert.Len(t, semesters, 2)
}

func TestPersistRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	batch := dataScienceBatch()
	batch[4].Prerequisite = types.StringPtr("MT1003")
	_, err := s.Persist(ctx, batch)
	require.NoError(t, err)

	got, err := s.Courses(ctx, CourseFilter{Program: "Data Science"})
	require.NoError(t, err)

	byCode := make(map[string]types.CourseRecord)
	for _, c := range got {
		byCode[c.Code] = c
	}
	require.Len(t, byCode, len(batch))
	for _, want := range batch {
		if diff := cmp.Diff(want, byCode[want.Code]); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", want.Code, diff)
		}
	}
}

func TestPersistIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	batch := dataScienceBatch()
	batch[4].Prerequisite = types.StringPtr("MT1003")

	_, err := s.Persist(ctx, batch)
	require.NoError(t, err)
	before, err := s.Counts(ctx)
	require.NoError(t, err)

	ack, err := s.Persist(ctx, batch)
	require.NoError(t, err)
	assert.True(t, ack.Empty(), "second persist wrote rows: %+v", ack)

	after, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, after.Prerequisites)
}

func TestPersistEmptyBatch(t *testing.T) {
	s := testStore(t)
	ack, err := s.Persist(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, ack.Empty())
}

func TestPersistSharedCourseAcrossPrograms(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.Persist(ctx, []types.CourseRecord{
		course("Computer Science", 1, "CS1002", "Programming Fundamentals", 3, 3, 0, nil),
	})
	require.NoError(t, err)

	ack, err := s.Persist(ctx, []types.CourseRecord{
		course("Software Engineering", 1, "CS1002", "Programming Fundamentals (renamed)", 4, 4, 0, types.StringPtr("MT1000")),
	})
	require.NoError(t, err)
	assert.Equal(t, Ack{Programs: 1, Links: 1}, ack)

	c, err := s.Course(ctx, "CS1002")
	require.NoError(t, err)
	assert.Equal(t, "Programming Fundamentals", c.Title, "existing course rows are never mutated")
	assert.Nil(t, c.Prerequisite)

	programs, err := s.Programs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Computer Science", "Software Engineering"}, programs)
}

func TestPersistForwardReferenceWithinBatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// CS2001 names CS3005, which appears later in the same batch.
	ack, err := s.Persist(ctx, []types.CourseRecord{
		course("Computer Science", 3, "CS2001", "Data Structures", 3, 3, 0, types.StringPtr("CS3005")),
		course("Computer Science", 5, "CS3005", "Theory of Automata", 3, 3, 0, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ack.Edges)
	assert.Empty(t, ack.Pending)

	prereqs, err := s.Prerequisites(ctx, "CS2001")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS3005"}, prereqs)
}

func TestPersistForwardReferenceAcrossBatches(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ack, err := s.Persist(ctx, []types.CourseRecord{
		course("Artificial Intelligence", 4, "AI2002", "Artificial Intelligence", 3, 3, 0, types.StringPtr("CS2001")),
	})
	require.NoError(t, err)
	assert.Zero(t, ack.Edges)
	assert.Equal(t, []types.PrerequisiteEdge{{Code: "AI2002", Prerequisite: "CS2001"}}, ack.Pending)

	ack, err = s.Persist(ctx, []types.CourseRecord{
		course("Computer Science", 3, "CS2001", "Data Structures", 3, 3, 0, nil),
	})
	require.NoError(t, err)
	assert.Zero(t, ack.Edges, "the edge belongs to AI2002 from the first batch")
	assert.Equal(t, 1, ack.Resolved)
	assert.Empty(t, ack.Pending)

	edges, err := s.Edges(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.PrerequisiteEdge{{Code: "AI2002", Prerequisite: "CS2001"}}, edges)
}

func TestPersistPendingStaysWithItsBatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ack, err := s.Persist(ctx, []types.CourseRecord{
		course("Cyber Security", 3, "CY2001", "Information Security", 3, 3, 0, types.StringPtr("XX999")),
	})
	require.NoError(t, err)
	assert.Equal(t, []types.PrerequisiteEdge{{Code: "CY2001", Prerequisite: "XX999"}}, ack.Pending)

	ack, err = s.Persist(ctx, []types.CourseRecord{
		course("Data Science", 1, "MT1003", "Calculus", 3, 3, 0, nil),
	})
	require.NoError(t, err)
	assert.Empty(t, ack.Pending, "CY2001 is not part of this batch")
	assert.Zero(t, ack.Edges)
	assert.Zero(t, ack.Resolved)

	// A later batch that shares CY2001 reports the reference again.
	ack, err = s.Persist(ctx, []types.CourseRecord{
		course("Computer Science", 5, "CY2001", "Information Security", 3, 3, 0, types.StringPtr("XX999")),
	})
	require.NoError(t, err)
	assert.Equal(t, []types.PrerequisiteEdge{{Code: "CY2001", Prerequisite: "XX999"}}, ack.Pending)
}

func TestPersistSplitsPrerequisiteLists(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ack, err := s.Persist(ctx, []types.CourseRecord{
		course("Data Science", 1, "CS1002", "Programming Fundamentals", 3, 3, 0, nil),
		course("Data Science", 1, "MT1003", "Calculus", 3, 3, 0, nil),
		course("Data Science", 3, "DS2001", "Probability for Data Science", 3, 3, 0, types.StringPtr("MT1003; CS1002, DS2001")),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ack.Edges, "self reference is dropped")

	prereqs, err := s.Prerequisites(ctx, "DS2001")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS1002", "MT1003"}, prereqs)

	c, err := s.Course(ctx, "DS2001")
	require.NoError(t, err)
	assert.Equal(t, "MT1003; CS1002, DS2001", c.PrerequisiteText(), "raw text is kept")
}

func TestPersistRollsBackOnFailure(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`CREATE TRIGGER reject_link BEFORE INSERT ON program_courses
		WHEN NEW.course_code = 'BAD1' BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	batch := dataScienceBatch()
	batch = append(batch, course("Data Science", 2, "BAD1", "Broken", 3, 3, 0, nil))

	ack, err := s.Persist(ctx, batch)
	require.ErrorIs(t, err, ErrPersistence)
	assert.True(t, ack.Empty())

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Data Science", pe.Program)
	assert.Contains(t, err.Error(), "BAD1")

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts, "no rows survive a failed batch")
}

func TestPersistCancelledContext(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Persist(ctx, dataScienceBatch())
	require.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, context.Canceled)
}

// --- read-back ---

func TestCourseNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Course(context.Background(), "XX0000")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCoursesFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Persist(ctx, dataScienceBatch())
	require.NoError(t, err)

	got, err := s.Courses(ctx, CourseFilter{Program: "Data Science", Semester: 2})
	require.NoError(t, err)

	var codes []string
	for _, c := range got {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"DS1001", "MT1004", "SS1007"}, codes)

	none, err := s.Courses(ctx, CourseFilter{Program: "Cyber Security"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

// --- export ---

func TestExportGroupsByProgramAndSemester(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	batch := dataScienceBatch()
	batch[4].Prerequisite = types.StringPtr("MT1003")
	_, err := s.Persist(ctx, batch)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, &buf, CourseFilter{}))

	var cur Curriculum
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &cur))
	require.Len(t, cur.Programs, 1)

	prog := cur.Programs[0]
	assert.Equal(t, "Data Science", prog.Name)
	assert.Equal(t, 18, prog.CreditHours)
	require.Len(t, prog.Semesters, 2)
	assert.Equal(t, 9, prog.Semesters[0].CreditHours)
	assert.Len(t, prog.Semesters[0].Courses, 4)

	var linear CurriculumCourse
	for _, c := range prog.Semesters[1].Courses {
		if c.Code == "MT1004" {
			linear = c
		}
	}
	assert.Equal(t, []string{"MT1003"}, linear.Requires)
	assert.Equal(t, "MT1003", linear.Prerequisite)
}

func TestExportJSONFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := s.Persist(ctx, dataScienceBatch())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportJSON(ctx, &buf, CourseFilter{Semester: 1}))

	var cur Curriculum
	require.NoError(t, json.Unmarshal(buf.Bytes(), &cur))
	require.Len(t, cur.Programs, 1)
	require.Len(t, cur.Programs[0].Semesters, 1)
	assert.Equal(t, 1, cur.Programs[0].Semesters[0].Semester)
	assert.True(t, cur.Programs[0].Semesters[0].Courses[0].Synthetic, "CL1002 sorts first and is the generated lab")
}

// --- helpers ---

func TestSplitPrerequisites(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single code", "CS1002", []string{"CS1002"}},
		{"semicolon list", "CS1002; MT1003", []string{"CS1002", "MT1003"}},
		{"comma list", "CS1002,MT1003", []string{"CS1002", "MT1003"}},
		{"mixed with empties", " CS1002 ;; ,MT1003, ", []string{"CS1002", "MT1003"}},
		{"duplicates", "CS1002;CS1002", []string{"CS1002"}},
		{"no delimiter keeps spaces", "CS1002 and MT1003", []string{"CS1002 and MT1003"}},
		{"blank", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPrerequisites(tt.raw, ";,"))
		})
	}
}

func TestDialect(t *testing.T) {
	lite, err := dialectFor(types.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT OR IGNORE INTO program_courses (program_name, course_code, semester) VALUES (?, ?, ?)",
		lite.insertIgnore("program_courses", "program_name", "course_code", "semester"))
	assert.Equal(t, "SELECT 1 WHERE a = ?", lite.rebind("SELECT 1 WHERE a = ?"))

	pg, err := dialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, types.DriverPostgres, pg.driver)
	assert.Equal(t,
		"INSERT INTO program_courses (program_name, course_code, semester) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		pg.insertIgnore("program_courses", "program_name", "course_code", "semester"))
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", pg.rebind("UPDATE t SET a = ? WHERE b = ?"))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "data/courses.db?_journal_mode=WAL&_foreign_keys=on", sqliteDSN("data/courses.db"))
	assert.Equal(t, "file:x.db?cache=shared&_journal_mode=WAL&_foreign_keys=on", sqliteDSN("file:x.db?cache=shared"))
	assert.Equal(t, "x.db", sqlitePath("file:x.db?cache=shared"))
}
