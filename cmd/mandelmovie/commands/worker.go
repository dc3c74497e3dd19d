package commands

import (
	"fmt"

	"github.com/dyluth/mandelmovie/internal/animation"
	"github.com/dyluth/mandelmovie/internal/printer"
	"github.com/spf13/cobra"
)

// newWorkerCmd is the entry point of a process-isolated worker unit. The
// parent passes the job in MANDELMOVIE_JOB; only the exit status goes back.
func newWorkerCmd() *cobra.Command {
	var a animation.Assignment

	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Render one block of frames (started by mandelmovie itself)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := animation.LoadJob()
			if err != nil {
				return printer.Error("invalid worker job", err.Error(), nil)
			}

			if a.Frames.Start < 0 || a.Frames.End < a.Frames.Start || a.Frames.End > job.Frames {
				return printer.Error(
					"invalid frame range",
					fmt.Sprintf("Frames %s are outside [0,%d)", a.Frames, job.Frames),
					nil,
				)
			}

			if _, err := animation.RunUnit(cmd.Context(), job, a); err != nil {
				return printer.Error(fmt.Sprintf("worker unit %d failed", a.Unit), err.Error(), nil)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&a.Unit, "unit", 0, "Worker unit number")
	cmd.Flags().IntVar(&a.Frames.Start, "start", 0, "First frame (inclusive)")
	cmd.Flags().IntVar(&a.Frames.End, "end", 0, "Last frame (exclusive)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}
