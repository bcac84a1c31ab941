// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/prospectus/internal/store"
	"github.com/pdiddy/prospectus/pkg/types"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the courses in the store",
	Long: `Courses lists stored courses with the program and semester that place
them, ordered by program, semester, and code. Filter with --program and
--semester, or pass a course code to show one course with its prerequisites.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCourses,
}

func runCourses(cmd *cobra.Command, args []string) error {
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

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if len(args) == 1 {
		return showCourse(cmd, st, args[0], jsonOutput)
	}

	program, _ := cmd.Flags().GetString("program")
	semester, _ := cmd.Flags().GetInt("semester")
	records, err := st.Courses(ctx, store.CourseFilter{Program: program, Semester: semester})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return writeCourseTable(os.Stdout, records)
}

func showCourse(cmd *cobra.Command, st *store.Store, code string, jsonOutput bool) error {
	ctx := cmd.Context()
	c, err := st.Course(ctx, code)
	if err != nil {
		return err
	}
	prereqs, err := st.Prerequisites(ctx, code)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Course   types.CourseRecord `json:"course"`
			Requires []string          `json:"requires"`
		}{c, prereqs})
	}

	fmt.Printf("%s  %s\n", c.Code, c.Title)
	fmt.Printf("  credit hours: %d (class %d, lab %d)\n", c.CreditHours, c.ClassHours, c.LabHours)
	if c.Synthetic {
		fmt.Println("  generated lab unit")
	}
	if c.Prerequisite != nil {
		fmt.Printf("  prerequisite: %s\n", *c.Prerequisite)
	}
	for _, p := range prereqs {
		fmt.Printf("  requires:     %s\n", p)
	}
	return nil
}

// semesterLabel renders a semester ordinal as "1st", "2nd", ...
func semesterLabel(n int) string {
	if n <= 0 {
		return "-"
	}
	return humanize.Ordinal(n)
}

func init() {
	coursesCmd.Flags().String("program", "", "only courses of this program")
	coursesCmd.Flags().Int("semester", 0, "only courses of this semester (1-based)")
	coursesCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(coursesCmd)
}
