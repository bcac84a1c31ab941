// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/prospectus/pkg/types"
)

func TestSemesterLabel(t *testing.T) {
	assert.Equal(t, "1st", semesterLabel(1))
	assert.Equal(t, "2nd", semesterLabel(2))
	assert.Equal(t, "8th", semesterLabel(8))
	assert.Equal(t, "-", semesterLabel(0))
}

func TestWriteCourseTable(t *testing.T) {
	var buf bytes.Buffer
	records := []types.CourseRecord{
		{Program: "Data Science", Semester: 2, Code: "CS1004", Title: "Object Oriented Programming",
			CreditHours: 3, ClassHours: 3, Prerequisite: types.StringPtr("CS1002")},
		{Program: "Data Science", Semester: 2, Code: "CL1004", Title: "Object Oriented Programming - Lab",
			CreditHours: 1, LabHours: 1, Synthetic: true},
	}
	require.NoError(t, writeCourseTable(&buf, records))

	out := buf.String()
	assert.Contains(t, out, "2nd")
	assert.Contains(t, out, "3(3+0)")
	assert.Contains(t, out, "CS1002")
	assert.Contains(t, out, "2 courses")

	buf.Reset()
	require.NoError(t, writeCourseTable(&buf, nil))
	assert.Equal(t, "No courses found.\n", buf.String())
}

func TestWriteRecordsFormats(t *testing.T) {
	records := []types.CourseRecord{{Program: "Data Science", Semester: 1, Code: "MT1003", Title: "Calculus", CreditHours: 3, ClassHours: 3}}

	var js bytes.Buffer
	require.NoError(t, writeRecords(&js, records, "json"))
	assert.Contains(t, js.String(), `"code": "MT1003"`)

	var ym bytes.Buffer
	require.NoError(t, writeRecords(&ym, records, "yaml"))
	assert.Contains(t, ym.String(), "code: MT1003")
}

func TestProgramNames(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().String("programs-file", "", "")
		return cmd
	}

	got, err := programNames(newCmd(), []string{"Cyber Security"}, []string{"Data Science"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cyber Security"}, got)

	got, err = programNames(newCmd(), nil, []string{"Data Science"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Data Science"}, got)

	path := filepath.Join(t.TempDir(), "programs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("programs: [Software Engineering]\n"), 0o644))
	cmd := newCmd()
	require.NoError(t, cmd.Flags().Set("programs-file", path))
	got, err = programNames(cmd, nil, []string{"Data Science"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Software Engineering"}, got)

	_, err = programNames(newCmd(), nil, nil)
	assert.ErrorContains(t, err, "no programs")
}

func TestApplyWorkers(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().Int("workers", 1, "")
	cfg := types.DefaultPipelineConfig()
	cfg.Workers = 2

	applyWorkers(cmd, &cfg)
	assert.Equal(t, 2, cfg.Workers, "unchanged flag keeps the configured value")

	require.NoError(t, cmd.Flags().Set("workers", "4"))
	applyWorkers(cmd, &cfg)
	assert.Equal(t, 4, cfg.Workers)
}
