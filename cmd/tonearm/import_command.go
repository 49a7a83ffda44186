package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"tonearm/internal/catalog"
	"tonearm/internal/hooks"
	"tonearm/internal/importer"
	"tonearm/internal/logging"
	"tonearm/internal/musicdb"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		quiet      bool
		copyFiles  bool
		singletons bool
		noAutotag  bool
		threads    int
		dupAction  string
	)

	cmd := &cobra.Command{
		Use:   "import PATH...",
		Short: "Import audio files or directories into the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if quiet {
				cfg.Import.Quiet = true
			}
			if copyFiles {
				cfg.Import.Copy = true
			}
			if singletons {
				cfg.Import.Singletons = true
			}
			if noAutotag {
				cfg.Import.Autotag = false
			}
			if threads > 0 {
				cfg.Import.Threads = threads
			}
			if dupAction != "" {
				cfg.Import.DuplicateAction = dupAction
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, logFile, err := logging.NewFile(cfg.Paths.LogDir, "import.log", logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer logFile.Close()

			// One import mutates the library at a time.
			runLock := flock.New(filepath.Join(cfg.Paths.StateDir, "tonearm.lock"))
			locked, err := runLock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return errors.New("another tonearm import is already running")
			}
			defer func() { _ = runLock.Unlock() }()

			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			var source musicdb.Source = musicdb.NullSource{}
			source = musicdb.NewRetrySource(source, cfg.Import.LookupRetries, 500*time.Millisecond, logger)
			source = musicdb.NewThrottledSource(source, cfg.Import.LookupRateLimit)

			paths := make([]string, 0, len(args))
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve path %q: %w", arg, err)
				}
				paths = append(paths, abs)
			}

			session, err := importer.NewSession(importer.Options{
				Config:    cfg,
				Paths:     paths,
				Source:    source,
				Store:     store,
				Hooks:     hooks.NewRegistry(),
				Decisions: terminalDecisions(cmd, cfg),
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, runErr := session.Run(runCtx)
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			if runErr != nil {
				return runErr
			}
			if summary.Failed > 0 {
				return errTasksFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Never prompt; rely on thresholds and defaults")
	cmd.Flags().BoolVar(&copyFiles, "copy", false, "Copy files into the library instead of moving them")
	cmd.Flags().BoolVar(&singletons, "singletons", false, "Import every track as a standalone single")
	cmd.Flags().BoolVar(&noAutotag, "noautotag", false, "Skip metadata matching and keep observed tags")
	cmd.Flags().IntVar(&threads, "threads", 0, "Worker count for parallel stages (0 uses the configured value)")
	cmd.Flags().StringVar(&dupAction, "duplicate-action", "", "Duplicate resolution: ask, replace, skip, or keep")

	return cmd
}
