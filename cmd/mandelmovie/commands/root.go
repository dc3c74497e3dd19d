package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dyluth/mandelmovie/internal/animation"
	"github.com/dyluth/mandelmovie/internal/config"
	"github.com/dyluth/mandelmovie/internal/ledger"
	"github.com/dyluth/mandelmovie/internal/printer"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// renderOptions holds the root command's flag values.
type renderOptions struct {
	configPath string
	processes  int
	threads    int
	frames     int
	scale      float64
	outDir     string
	isolation  string
	ledgerURL  string
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "mandelmovie",
		Short: "Render a Mandelbrot zoom as a sequence of JPEG frames",
		Long: `mandelmovie renders a zoom into the Mandelbrot set as numbered JPEG
frames (mandel0.jpg, mandel1.jpg, ...).

Frames are split into contiguous blocks, one per worker unit (-p). Each unit
renders its frames one after another, splitting the rows of every frame over
goroutines (-t) that fill a shared buffer.

Settings come from mandelmovie.yml when present (see 'mandelmovie init');
flags override the file.

Examples:
  # 50 frames with 4 worker processes and 4 threads each
  mandelmovie

  # 8 worker processes, 2 threads each, frames into ./out
  mandelmovie -p 8 -t 2 -o out

  # Record per-frame results in Redis, then inspect them
  mandelmovie --ledger redis://localhost:6379/0
  mandelmovie status --run <run-id> --ledger redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
		// Enable strict flag parsing - unknown flags will cause an error
		FParseErrWhitelist: cobra.FParseErrWhitelist{},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", config.DefaultPath, "Config file (optional unless given explicitly)")
	f.IntVarP(&opts.processes, "processes", "p", config.DefaultProcesses, "Number of worker units")
	f.IntVarP(&opts.threads, "threads", "t", config.DefaultThreads, "Goroutines per frame (1-20)")
	f.IntVarP(&opts.frames, "frames", "f", config.DefaultFrames, "Number of frames to render")
	f.Float64VarP(&opts.scale, "scale", "s", config.DefaultBaseScale, "Half-width of the first frame's view")
	f.StringVarP(&opts.outDir, "out-dir", "o", ".", "Directory for mandel<N>.jpg files")
	f.StringVar(&opts.isolation, "isolation", config.IsolationProcess, "Worker unit isolation: process or goroutine")
	f.StringVar(&opts.ledgerURL, "ledger", "", "Redis URL of the run ledger (disabled if empty)")

	// Flag parse errors never reach RunE; report them like any other
	// invalid argument. Subcommands inherit this.
	cmd.SetFlagErrorFunc(flagError)

	cmd.AddCommand(newWorkerCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newInitCmd())

	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// flagError prints a flag the command line parser rejected.
func flagError(c *cobra.Command, err error) error {
	usage := "Usage: mandelmovie -p <processes> -t <threads>"
	if c.HasParent() {
		usage = fmt.Sprintf("Run '%s --help' for usage", c.CommandPath())
	}
	return printer.Error("invalid arguments", err.Error(), []string{usage})
}

// loadConfig reads the config file and applies every flag the user set.
func loadConfig(cmd *cobra.Command, opts *renderOptions) (*config.MovieConfig, error) {
	var cfg *config.MovieConfig
	var err error
	// Flags override the file, so range checks wait until both are merged.
	if cmd.Flags().Changed("config") {
		cfg, err = config.Read(opts.configPath)
	} else {
		cfg, err = config.ReadOrDefault(opts.configPath)
	}
	if err != nil {
		return nil, printer.ErrorWithContext(
			"invalid configuration",
			err.Error(),
			map[string]string{"Config": opts.configPath},
			[]string{"Create a fresh config file:\n  mandelmovie init --force"},
		)
	}

	flags := cmd.Flags()
	if flags.Changed("processes") {
		*cfg.Processes = opts.processes
	}
	if flags.Changed("threads") {
		*cfg.Threads = opts.threads
	}
	if flags.Changed("frames") {
		*cfg.Frames = opts.frames
	}
	if flags.Changed("scale") {
		*cfg.BaseScale = opts.scale
	}
	if flags.Changed("out-dir") {
		cfg.OutputDir = opts.outDir
	}
	if flags.Changed("isolation") {
		cfg.Isolation = opts.isolation
	}
	if flags.Changed("ledger") {
		cfg.Ledger.RedisURL = opts.ledgerURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, printer.ErrorWithContext(
			"invalid arguments",
			err.Error(),
			map[string]string{
				"Config":    opts.configPath,
				"Processes": strconv.Itoa(*cfg.Processes),
				"Threads":   strconv.Itoa(*cfg.Threads),
			},
			[]string{"Usage: mandelmovie -p <processes> -t <threads>\n  processes must be greater than zero, threads between 1 and 20"},
		)
	}
	return cfg, nil
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return printer.Error(
			"cannot create output directory",
			err.Error(),
			[]string{"Choose a writable directory with --out-dir"},
		)
	}

	job := animation.Job{
		RunID:     uuid.New().String(),
		Frames:    *cfg.Frames,
		BaseScale: *cfg.BaseScale,
		Decay:     *cfg.Decay,
		Settings:  cfg.FrameSettings(),
		LedgerURL: cfg.Ledger.RedisURL,
	}
	processes := *cfg.Processes

	if job.LedgerURL != "" {
		if err := recordRun(ctx, job, processes, cfg.Isolation); err != nil {
			printer.Warning("Run ledger disabled: %v\n", err)
			job.LedgerURL = ""
		}
	}

	var launcher animation.Launcher = &animation.ProcessLauncher{}
	if cfg.Isolation == config.IsolationGoroutine {
		launcher = animation.NewGoroutineLauncher()
	}

	started := time.Now()
	report, err := animation.NewScheduler(launcher).Run(ctx, job, processes)
	elapsed := time.Since(started)

	// Every unit has been reaped (or killed after a launch failure), so no
	// further frame can be recorded.
	if job.LedgerURL != "" {
		if err := completeRun(ctx, job); err != nil {
			printer.Warning("Could not mark run %s complete in the ledger: %v\n", job.RunID, err)
		}
	}

	if err != nil {
		var launchErr *animation.LaunchError
		if errors.As(err, &launchErr) {
			return printer.ErrorWithContext(
				"failed to launch worker units",
				launchErr.Err.Error(),
				map[string]string{
					"Unit":   strconv.Itoa(launchErr.Unit),
					"Frames": launchErr.Frames.String(),
				},
				[]string{
					"Reduce the number of worker units with -p",
					"Run units in-process with --isolation goroutine",
				},
			)
		}
		return printer.Error("render failed", err.Error(), nil)
	}

	if failed := report.Failed(); len(failed) > 0 {
		for _, u := range failed {
			printer.Warning("Worker unit %d terminated abnormally: %v\n", u.Unit, u.Err)
		}
		printer.Warning("Lost frames: %s\n", printer.Frames(report.LostFrames()))
	} else {
		printer.Success("All frames generated successfully.\n")
	}
	printer.Runtime(processes, job.Settings.Threads, elapsed)

	if job.LedgerURL != "" {
		printer.Info("Run ID: %s\n", job.RunID)
		printer.Step("Inspect with: mandelmovie status --run %s --ledger %s\n", job.RunID, job.LedgerURL)
	}
	return nil
}

// recordRun writes the run metadata the status command reads back.
func recordRun(ctx context.Context, job animation.Job, units int, isolation string) error {
	client, err := ledger.Dial(job.LedgerURL, job.RunID)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("could not connect to %s: %w", job.LedgerURL, err)
	}
	return client.RecordRun(ctx, &ledger.RunInfo{
		Frames:      job.Frames,
		Units:       units,
		Threads:     job.Settings.Threads,
		BaseScale:   job.BaseScale,
		Isolation:   isolation,
		StartedAtMs: time.Now().UnixMilli(),
	})
}

// completeRun marks the run finished so `status --follow` can stop.
func completeRun(ctx context.Context, job animation.Job) error {
	client, err := ledger.Dial(job.LedgerURL, job.RunID)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.CompleteRun(ctx)
}
