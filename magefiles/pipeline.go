//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// prospectus runs the built CLI with args.
func prospectus(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Load builds the CLI and loads every configured program into the store.
// Set PROGRAMS_FILE to load the programs listed in that file instead.
func Load() error {
	mg.SerialDeps(Init, Build)
	args := []string{"load"}
	if f := os.Getenv("PROGRAMS_FILE"); f != "" {
		args = append(args, "--programs-file", f)
	}
	return prospectus(args...)
}

// Parse builds the CLI and previews the configured programs without writing.
func Parse() error {
	mg.Deps(Build)
	return prospectus("parse")
}

// Export writes the stored curriculum to data/exports/curriculum.yaml and
// curriculum.json.
func Export() error {
	mg.SerialDeps(Init, Build)
	if err := prospectus("export", "--format", "yaml", "--output", filepath.Join("data", "exports", "curriculum.yaml")); err != nil {
		return err
	}
	return prospectus("export", "--format", "json", "--output", filepath.Join("data", "exports", "curriculum.json"))
}
