// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/prospectus/internal/pipeline"
	"github.com/pdiddy/prospectus/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [program...]",
	Short: "Preview the courses that load would write, without touching the store",
	Long: `Parse runs locate, parse, and lab expansion for each program and prints
the resulting course records. Nothing is written. Progress goes to stderr so
the records on stdout can be piped.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "yaml", "json":
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml, or json", format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyWorkers(cmd, &cfg)
	names, err := programNames(cmd, args, cfg.Programs)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	o := pipeline.New(cfg, nil, log, pipeline.WithDryRun(), pipeline.WithOutput(os.Stderr))
	rep := o.Run(cmd.Context(), names)

	if err := writeRecords(os.Stdout, rep.Records(), format); err != nil {
		return err
	}
	if rep.HasFailures() {
		return fmt.Errorf("%d of %d program(s) failed", rep.Failed(), rep.Total())
	}
	return nil
}

func writeRecords(w io.Writer, records []types.CourseRecord, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	}
	return writeCourseTable(w, records)
}

// writeCourseTable prints records as a fixed-width table.
func writeCourseTable(w io.Writer, records []types.CourseRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No courses found.")
		return err
	}

	fmt.Fprintf(w, "%-24s  %-4s  %-12s  %-44s  %-7s  %s\n",
		"Program", "Sem", "Code", "Title", "Cr(C+L)", "Prerequisite")
	fmt.Fprintln(w, strings.Repeat("-", 116))

	for _, r := range records {
		title := r.Title
		if len(title) > 44 {
			title = title[:41] + "..."
		}
		prereq := r.PrerequisiteText()
		if prereq == "" {
			prereq = "-"
		}
		fmt.Fprintf(w, "%-24s  %-4s  %-12s  %-44s  %-7s  %s\n",
			r.Program, semesterLabel(r.Semester), r.Code, title,
			fmt.Sprintf("%d(%d+%d)", r.CreditHours, r.ClassHours, r.LabHours), prereq)
	}

	_, err := fmt.Fprintf(w, "\n%d courses\n", len(records))
	return err
}

func init() {
	parseCmd.Flags().String("format", "table", "output format: table, yaml, or json")
	parseCmd.Flags().String("programs-file", "", "YAML file listing the programs to parse")
	parseCmd.Flags().Int("workers", 1, "programs parsed concurrently")

	rootCmd.AddCommand(parseCmd)
}
