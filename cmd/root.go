package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/study-time-tracker/internal/apperrors"
	"github.com/Tiliavir/study-time-tracker/internal/auth"
	"github.com/Tiliavir/study-time-tracker/internal/config"
	"github.com/Tiliavir/study-time-tracker/internal/kv"
	"github.com/Tiliavir/study-time-tracker/internal/logging"
	"github.com/Tiliavir/study-time-tracker/internal/model"
	"github.com/Tiliavir/study-time-tracker/internal/storage"
	"github.com/Tiliavir/study-time-tracker/internal/timecalc"
)

var (
	verbose bool

	// stdin is swapped in tests.
	stdin io.Reader = os.Stdin

	app *appContext
)

// appContext holds what every command needs. It is built once per
// invocation in PersistentPreRunE.
type appContext struct {
	cfg      config.Config
	logger   *zap.Logger
	kv       kv.Store
	records  *storage.Store
	accounts *auth.Registry
	clock    timecalc.Clock
	in       *bufio.Reader
}

// session returns the logged-in user's session.
func (a *appContext) session(ctx context.Context) (model.Session, error) {
	sess, err := a.accounts.Current(ctx)
	if errors.Is(err, apperrors.ErrNoSession) {
		return model.Session{}, fmt.Errorf("%w (run 'stt login <username>')", err)
	}
	return sess, err
}

var rootCmd = &cobra.Command{
	Use:   "stt",
	Short: "Study Time Tracker – log study sessions and see where your hours go",
	Long: `stt is a single-binary study-time tracker.
Run a stopwatch or enter sessions by hand, then look at daily and
per-subject statistics. All data stays on this machine under ~/.stt/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, verbose)
	if err != nil {
		return err
	}

	dir, err := cfg.DataDir()
	if err != nil {
		return err
	}
	store, err := kv.Open(cfg.Storage.Backend, dir)
	if err != nil {
		return err
	}
	logger.Debug("Storage opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("dir", dir))

	clock := timecalc.SystemClock{}
	records := storage.New(store, clock, logger)
	app = &appContext{
		cfg:      cfg,
		logger:   logger,
		kv:       store,
		records:  records,
		accounts: auth.NewRegistry(store, records, clock, logger),
		clock:    clock,
		in:       bufio.NewReader(stdin),
	}
	return nil
}

func teardown() {
	if app == nil {
		return
	}
	if err := app.kv.Close(); err != nil {
		app.logger.Warn("Closing storage failed", zap.Error(err))
	}
	_ = app.logger.Sync()
	app = nil
}

// Execute is the entry point called from main.
func Execute() {
	err := rootCmd.Execute()
	// PersistentPostRun is skipped when RunE fails.
	teardown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps user mistakes to 1 and everything else to 2.
func exitCode(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrNoSession),
		errors.Is(err, apperrors.ErrNotFound):
		return 1
	default:
		return 2
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(exportCmd)
}
