// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProgramsFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr string
	}{
		{
			name:    "mapping",
			content: "programs:\n  - Computer Science\n  - Data Science\n",
			want:    []string{"Computer Science", "Data Science"},
		},
		{
			name:    "bare list",
			content: "- Software Engineering\n- Cyber Security\n",
			want:    []string{"Software Engineering", "Cyber Security"},
		},
		{
			name:    "blanks and repeats dropped",
			content: "programs: [\"Data Science\", \"\", \" Data Science \", \"Artificial Intelligence\"]\n",
			want:    []string{"Data Science", "Artificial Intelligence"},
		},
		{
			name:    "empty",
			content: "programs: []\n",
			wantErr: "lists no programs",
		},
		{
			name:    "not yaml",
			content: "programs: [unterminated\n",
			wantErr: "parsing programs file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "programs.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := ReadProgramsFile(path)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgramsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "programs.yaml")
	names := []string{"Computer Science", "Cyber Security"}

	require.NoError(t, WriteProgramsFile(path, names))
	got, err := ReadProgramsFile(path)
	require.NoError(t, err)
	assert.Equal(t, names, got)
}

func TestReadProgramsFileMissing(t *testing.T) {
	_, err := ReadProgramsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
