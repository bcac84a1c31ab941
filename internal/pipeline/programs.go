// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ProgramsFile is the on-disk list of programs to load. The file may also be
// a bare YAML sequence of names.
type ProgramsFile struct {
	Programs []string `yaml:"programs"`
}

// ReadProgramsFile loads program names from path. Blank and repeated names
// are dropped; order is kept.
func ReadProgramsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading programs file: %w", err)
	}

	var pf ProgramsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		var list []string
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			return nil, fmt.Errorf("parsing programs file %s: %w", path, err)
		}
		pf.Programs = list
	}

	names := dedupe(pf.Programs)
	if len(names) == 0 {
		return nil, fmt.Errorf("programs file %s lists no programs", path)
	}
	return names, nil
}

// WriteProgramsFile saves names to path.
func WriteProgramsFile(path string, names []string) error {
	data, err := yaml.Marshal(&ProgramsFile{Programs: names})
	if err != nil {
		return fmt.Errorf("marshaling programs file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing programs file: %w", err)
	}
	return nil
}

func dedupe(names []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
