package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dyluth/mandelmovie/internal/filter"
	"github.com/dyluth/mandelmovie/internal/ledger"
	"github.com/dyluth/mandelmovie/internal/printer"
	"github.com/dyluth/mandelmovie/internal/resolver"
	"github.com/spf13/cobra"
)

type statusOptions struct {
	runID     string
	ledgerURL string
	frames    int
	jsonl     bool
	follow    bool
	status    string
	unit      int
	since     string
	until     string
}

func newStatusCmd() *cobra.Command {
	opts := &statusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which frames of a run were rendered, failed or lost",
		Long: `Show the per-frame outcome of a run recorded with --ledger.

Frames with no record were lost: their worker unit terminated before
reporting them. --follow stops once every frame has a record or the render
command reports the run finished. The run ID may be shortened to any unique prefix of at
least 6 characters.

Filters narrow the rows shown; the summary line always covers the whole run.

Examples:
  # Table of every frame
  mandelmovie status --run 3f2a... --ledger redis://localhost:6379/0

  # JSONL for piping to jq
  mandelmovie status --run 3f2a... --ledger redis://localhost:6379/0 --json

  # Only the failures of unit 2 in the last 10 minutes
  mandelmovie status --run 3f2a9c --status failed --unit 2 --since 10m

  # Stream frames as units finish them
  mandelmovie status --run 3f2a... --ledger redis://localhost:6379/0 --follow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "Run ID printed by the render command")
	cmd.Flags().StringVar(&opts.ledgerURL, "ledger", "redis://localhost:6379/0", "Redis URL of the run ledger")
	cmd.Flags().IntVar(&opts.frames, "frames", -1, "Frame count of the run (read from the ledger if omitted)")
	cmd.Flags().BoolVar(&opts.jsonl, "json", false, "Print records as line-delimited JSON")
	cmd.Flags().BoolVar(&opts.follow, "follow", false, "Keep printing frames as they are recorded")
	cmd.Flags().StringVar(&opts.status, "status", "", "Only show frames with this status (rendered or failed)")
	cmd.Flags().IntVar(&opts.unit, "unit", -1, "Only show frames of this worker unit")
	cmd.Flags().StringVar(&opts.since, "since", "", "Only show frames recorded after this time (duration like 10m or RFC3339)")
	cmd.Flags().StringVar(&opts.until, "until", "", "Only show frames recorded before this time (duration like 10m or RFC3339)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runStatus(cmd *cobra.Command, opts *statusOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	criteria, err := buildCriteria(cmd, opts, time.Now())
	if err != nil {
		return printer.Error("invalid filter", err.Error(), []string{
			"Use --status rendered|failed and --unit <n>",
			"Use --since/--until with a duration like 10m or an RFC3339 timestamp",
		})
	}

	client, err := ledger.Dial(opts.ledgerURL, opts.runID)
	if err != nil {
		return printer.Error("invalid ledger URL", err.Error(), []string{"Use a URL like redis://localhost:6379/0"})
	}
	defer func() { client.Close() }()

	if err := client.Ping(ctx); err != nil {
		return printer.ErrorWithContext(
			"ledger connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", opts.ledgerURL),
			map[string]string{"Error": err.Error()},
			[]string{"Check that Redis is running and the URL is correct"},
		)
	}

	runID, err := resolver.ResolveRunID(ctx, client, opts.runID)
	if err != nil {
		if opts.frames < 0 || !resolver.IsNotFoundError(err) {
			return reportResolveError(opts.runID, err)
		}
		// With --frames the run metadata is optional; read the ID as given.
		runID = opts.runID
	}
	if runID != client.RunID() {
		resolved, err := ledger.Dial(opts.ledgerURL, runID)
		if err != nil {
			return fmt.Errorf("failed to open run %s: %w", runID, err)
		}
		client.Close()
		client = resolved
	}

	total := opts.frames
	if total < 0 {
		run, err := client.GetRun(ctx)
		if ledger.IsNotFound(err) {
			return runNotFound(runID)
		}
		if err != nil {
			return fmt.Errorf("failed to read run: %w", err)
		}
		total = run.Frames
	}

	// Subscribe before listing so no record written in between is missed.
	var sub *ledger.Subscription
	if opts.follow {
		sub, err = client.SubscribeFrameEvents(ctx)
		if err != nil {
			return fmt.Errorf("failed to follow run: %w", err)
		}
		defer sub.Close()
	}

	records, err := client.ListFrames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list frames: %w", err)
	}

	out := cmd.OutOrStdout()
	shown := criteria.Apply(records)
	if opts.jsonl {
		if err := ledger.FormatJSONL(out, shown); err != nil {
			return err
		}
	} else {
		ledger.FormatTable(out, shown, ledger.Summarize(records, total), client.RunID())
	}

	if sub == nil {
		return nil
	}
	return follow(ctx, out, client, sub, criteria, records, total, opts.jsonl)
}

// buildCriteria turns the filter flags into frame record criteria.
func buildCriteria(cmd *cobra.Command, opts *statusOptions, now time.Time) (*filter.Criteria, error) {
	c := &filter.Criteria{Status: ledger.FrameStatus(opts.status)}
	if cmd.Flags().Changed("unit") {
		unit := opts.unit
		c.Unit = &unit
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := c.ParseRange(opts.since, opts.until, now); err != nil {
		return nil, err
	}
	return c, nil
}

// reportResolveError prints why id names no single run.
func reportResolveError(id string, err error) error {
	var ambiguous *resolver.AmbiguousError
	switch {
	case resolver.IsNotFoundError(err):
		return runNotFound(id)
	case errors.As(err, &ambiguous):
		return printer.Error(
			fmt.Sprintf("ambiguous run ID '%s'", id),
			resolver.FormatAmbiguousError(ambiguous),
			nil,
		)
	default:
		return printer.Error("invalid run ID", err.Error(), []string{"Use the run ID printed by the render command"})
	}
}

func runNotFound(id string) error {
	return printer.Error(
		fmt.Sprintf("run '%s' not found", id),
		"The ledger holds no metadata for this run.",
		[]string{"Check the run ID printed by the render command", "Pass the frame count explicitly with --frames"},
	)
}

// followPollInterval is how often --follow checks whether the run finished.
var followPollInterval = time.Second

// follow prints new frame records until every frame has one, the render
// command marks the run complete, or ctx ends. Records not matching criteria
// count towards completion but are not printed.
func follow(ctx context.Context, out io.Writer, client *ledger.Client, sub *ledger.Subscription, criteria *filter.Criteria, seen []*ledger.FrameRecord, total int, jsonl bool) error {
	recorded := make(map[int]bool, len(seen))
	for _, r := range seen {
		recorded[r.Index] = true
	}

	// emit prints r unless it was printed already.
	emit := func(r *ledger.FrameRecord) error {
		if r.Index < 0 || r.Index >= total || recorded[r.Index] {
			return nil
		}
		recorded[r.Index] = true
		if !criteria.Matches(r) {
			return nil
		}

		if jsonl {
			return ledger.FormatJSONL(out, []*ledger.FrameRecord{r})
		}
		if r.Status == ledger.FrameStatusFailed {
			fmt.Fprintf(out, "frame %d failed on unit %d: %s\n", r.Index, r.Unit, r.Error)
		} else {
			fmt.Fprintf(out, "frame %d rendered by unit %d: %s\n", r.Index, r.Unit, r.Path)
		}
		return nil
	}

	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for len(recorded) < total {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			printer.Warning("%v\n", err)
		case r, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := emit(r); err != nil {
				return err
			}
		case <-ticker.C:
			run, err := client.GetRun(ctx)
			if err != nil || !run.Completed() {
				// No metadata (--frames on a bare run) means no completion mark.
				continue
			}

			// Events may still be in flight; the stored records are complete.
			records, err := client.ListFrames(ctx)
			if err != nil {
				return fmt.Errorf("failed to list frames: %w", err)
			}
			for _, r := range records {
				if err := emit(r); err != nil {
					return err
				}
			}

			if !jsonl {
				s := ledger.Summarize(records, total)
				fmt.Fprintf(out, "Run finished: %d of %d frames rendered, %d lost\n", len(s.Rendered), total, len(s.Missing))
			}
			return nil
		}
	}

	if !jsonl {
		fmt.Fprintf(out, "All %d frames recorded\n", total)
	}
	return nil
}
