// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/prospectus/internal/pipeline"
	"github.com/pdiddy/prospectus/pkg/types"
)

var loadCmd = &cobra.Command{
	Use:   "load [program...]",
	Short: "Extract programs from the prospectus and load them into the store",
	Long: `Load runs the full pipeline for each program: locate its study plan page,
parse the semesters and courses, split single-credit labs into their own
course, and write the program's courses in one transaction.

Programs come from the arguments, --programs-file, or the programs list in the
config file, in that order. A program that fails is reported and skipped; the
command exits non-zero if any program failed. Loading is idempotent.`,
	RunE: runLoad,
}

func runLoad(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	o := pipeline.New(cfg, st, log, pipeline.WithOutput(os.Stdout))
	rep := o.Run(ctx, names)

	for _, d := range rep.Diagnostics {
		switch d.Stage {
		case pipeline.StagePersist:
			fmt.Fprintf(os.Stdout, "pending  %s: %s\n", d.Program, d.Message)
		case pipeline.StageExpand:
			fmt.Fprintf(os.Stdout, "note     %s: %s\n", d.Program, d.Message)
		}
	}
	if rep.HasFailures() {
		return fmt.Errorf("%d of %d program(s) failed", rep.Failed(), rep.Total())
	}
	return nil
}

// programNames picks the programs to process: arguments first, then the
// programs file, then the configured list.
func programNames(cmd *cobra.Command, args, configured []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if path, _ := cmd.Flags().GetString("programs-file"); path != "" {
		return pipeline.ReadProgramsFile(path)
	}
	if len(configured) == 0 {
		return nil, fmt.Errorf("no programs: pass program names, --programs-file, or set programs in the config file")
	}
	return configured, nil
}

// applyWorkers lets --workers override the configured worker count.
func applyWorkers(cmd *cobra.Command, cfg *types.PipelineConfig) {
	if cmd.Flags().Changed("workers") {
		if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
			cfg.Workers = n
		}
	}
}

func init() {
	loadCmd.Flags().String("programs-file", "", "YAML file listing the programs to load")
	loadCmd.Flags().Int("workers", 1, "programs parsed concurrently (writes stay sequential)")

	rootCmd.AddCommand(loadCmd)
}
