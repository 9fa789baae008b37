package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fenilsonani/bytesweep/internal/cleaner"
	"github.com/fenilsonani/bytesweep/internal/config"
	"github.com/fenilsonani/bytesweep/internal/filelock"
	"github.com/fenilsonani/bytesweep/internal/logging"
	"github.com/fenilsonani/bytesweep/internal/progress"
	"github.com/fenilsonani/bytesweep/internal/reporter"
	"github.com/fenilsonani/bytesweep/internal/scanner"
	"github.com/fenilsonani/bytesweep/internal/security"
	"github.com/fenilsonani/bytesweep/internal/sweep"
	"github.com/fenilsonani/bytesweep/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// options holds the flag values of one invocation
type options struct {
	configPath   string
	envFile      string
	logFile      string
	verbose      bool
	dryRun       bool
	yes          bool
	interactive  bool
	outputFmt    string
	reportFile   string
	manifestPath string
	verify       bool
	workers      int
	lockDir      string
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "bytesweep [flags] <directory>",
		Short: "Remove damaged duplicates left behind by a faulty copy",
		Long: `bytesweep walks a directory tree left behind by an unreliable copy or
recovery tool. It validates every image, text, audio, video and signed binary
file, deletes the ones that are corrupt, and for duplicate variants such as
notes_1.txt and notes_2.txt keeps the cleanest copy under its original name.

Nothing is changed until the plan has been confirmed.

To sweep a directory literally named "config", pass it as a path so it is
not taken for the config subcommand:

  bytesweep ./config`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, opts, args[0], in, out, errOut)
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "file with BYTESWEEP_* overrides")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "verbose output")

	// Sweep flags
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be changed without changing anything")
	rootCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "confirm in a full-screen view")
	rootCmd.Flags().StringVar(&opts.outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	rootCmd.Flags().StringVar(&opts.reportFile, "report-file", "", "also save the plan report to a file")
	rootCmd.Flags().StringVar(&opts.manifestPath, "manifest", "", "write a manifest of applied changes to a file")
	rootCmd.Flags().BoolVar(&opts.verify, "verify", false, "re-scan after applying and report anything left to do")
	rootCmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel validators (0 = pick from CPU count)")
	rootCmd.Flags().StringVar(&opts.logFile, "log-file", "", "append log output to a file")
	rootCmd.Flags().StringVar(&opts.lockDir, "lock-dir", "", "directory for the sweep lock file")
	rootCmd.Flags().MarkHidden("lock-dir")

	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Display the configuration path",
		Long:  `Shows which configuration file is used and whether it exists.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configFile(opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", cfgPath)

			// Check if config exists
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "Config file does not exist. Using default configuration.")
				fmt.Fprintln(cmd.OutOrStdout(), "\nTo create a config file:")
				fmt.Fprintln(cmd.OutOrStdout(), "  bytesweep config init")
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := configFile(opts)
			if err != nil {
				return err
			}

			created, err := config.EnsureConfigExists(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", cfgPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file already exists: %s\n", cfgPath)
			}
			return nil
		},
	}

	configCmd.AddCommand(initCmd)
	return configCmd
}

func runSweep(cmd *cobra.Command, opts *options, dir string, in io.Reader, out, errOut io.Writer) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	format, err := reporter.ParseFormat(opts.outputFmt)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger(errOut, cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Close()
	if opts.verbose {
		log.SetLevel(logging.LevelDebug)
	}

	root, err := scanner.ResolveRoot(dir)
	if err != nil {
		return fmt.Errorf("unusable directory: %w", err)
	}

	lock, err := filelock.ForRoot(root, opts.lockDir)
	if err != nil {
		return err
	}
	if err := lock.TryLock(); err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return fmt.Errorf("another bytesweep run holds %s (lock %s)", root, lock.Path())
		}
		return fmt.Errorf("failed to lock %s: %w", root, err)
	}
	defer lock.Unlock()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pr := progress.NewProgressReporter()
	live := liveProgress(errOut, log)

	engine, err := sweep.New(cfg, sweep.Options{Logger: log, Progress: pr})
	if err != nil {
		return err
	}

	stop := live.watch(pr)
	p, err := engine.Plan(ctx, root)
	stop()
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	rptr := reporter.New(out, format)
	if err := rptr.Report(p); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	if opts.reportFile != "" {
		if err := reporter.SaveToFile(p, opts.reportFile, format); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		log.Info("report saved to %s", opts.reportFile)
	}

	if p.Empty() {
		return nil
	}

	// Confirm if not forced
	if !opts.yes && !cfg.DryRun {
		ok, err := confirm(opts, p.Len(), in, out, func() (bool, error) { return ui.RunConfirm(p, in, out) })
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Sweep cancelled")
			return nil
		}
	}

	validator, err := security.NewPathValidator(root)
	if err != nil {
		return err
	}
	clnr := cleaner.New(validator, cleaner.Options{DryRun: cfg.DryRun, Logger: log, Progress: pr})

	if cfg.DryRun {
		fmt.Fprintln(out, "\n[DRY RUN MODE] No files will be changed.")
	}

	stop = live.watch(pr)
	result, execErr := clnr.Execute(ctx, p)
	stop()
	if result == nil {
		return execErr
	}

	fmt.Fprintln(out)
	if err := rptr.ReportResult(result); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if opts.manifestPath != "" && !cfg.DryRun {
		if err := clnr.SaveManifest(opts.manifestPath); err != nil {
			return fmt.Errorf("failed to save manifest: %w", err)
		}
		log.Info("manifest saved to %s (%d entries)", opts.manifestPath, len(clnr.GetManifest().Entries))
	}

	if opts.verify && !cfg.DryRun && execErr == nil {
		if err := verify(ctx, engine, root, result, log); err != nil {
			return err
		}
	}

	return execErr
}

// verify plans the tree again after execution. Anything still planned was
// skipped or appeared meanwhile.
func verify(ctx context.Context, engine *sweep.Engine, root string, result *cleaner.Result, log *logging.Logger) error {
	for _, a := range result.Deleted {
		engine.Invalidate(a.File.Dir)
	}
	for _, a := range result.Renamed {
		engine.Invalidate(a.File.Dir)
	}

	p, err := engine.Plan(ctx, root)
	if err != nil {
		return fmt.Errorf("verification scan failed: %w", err)
	}
	if !p.Empty() {
		log.Warn("%d changes remain after the sweep; run again to review them", p.Len())
		return nil
	}
	log.Info("verified: nothing left to do")
	return nil
}

// confirm asks once. The full-screen view needs a terminal on both ends;
// otherwise the plain prompt is used.
func confirm(opts *options, n int, in io.Reader, out io.Writer, full func() (bool, error)) (bool, error) {
	if opts.interactive && isTerminal(in) && isTerminal(out) {
		return full()
	}
	return ui.Confirm(in, out, fmt.Sprintf("\nApply %d changes?", n)), nil
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfgPath, err := configFile(opts)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(opts.envFile); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	// Override config with flags
	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func configFile(opts *options) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	return config.GetConfigPath()
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// liveLine wraps the optional terminal status line
type liveLine struct {
	lp *ui.LiveProgress
}

// liveProgress draws the status line on a terminal. Debug output would
// interleave with it, so debug logging turns it off.
func liveProgress(w io.Writer, log *logging.Logger) liveLine {
	f, ok := w.(*os.File)
	if !ok {
		return liveLine{}
	}
	lp := ui.NewLiveProgress(f)
	if log.Level() <= logging.LevelDebug {
		lp.SetEnabled(false)
	}
	if !lp.Enabled() {
		return liveLine{}
	}
	return liveLine{lp: lp}
}

func (l liveLine) watch(pr *progress.ProgressReporter) func() {
	if l.lp == nil {
		return func() {}
	}
	return l.lp.Watch(pr)
}
