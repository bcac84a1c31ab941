// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/prospectus/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored curriculum to YAML or JSON",
	Long: `Export writes every stored program (or a filtered subset) grouped by
semester, with credit totals and resolved prerequisites, to --output or to
stdout.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	program, _ := cmd.Flags().GetString("program")
	semester, _ := cmd.Flags().GetInt("semester")

	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = os.Stdout
	if output != "" && output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	filter := store.CourseFilter{Program: program, Semester: semester}
	if format == "json" {
		err = st.ExportJSON(ctx, w, filter)
	} else {
		err = st.ExportYAML(ctx, w, filter)
	}
	if err != nil {
		return err
	}

	if w != os.Stdout {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	exportCmd.Flags().String("output", "", "output file (default: stdout)")
	exportCmd.Flags().String("program", "", "export only this program")
	exportCmd.Flags().Int("semester", 0, "export only this semester")

	rootCmd.AddCommand(exportCmd)
}
