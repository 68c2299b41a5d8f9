package main

import (
	"github.com/spf13/cobra"

	"gittrack/internal/daemon"
	"gittrack/internal/errors"
	"gittrack/internal/lock"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the auto-commit loop until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		if err := requireRepository(a); err != nil {
			return err
		}

		cfg, err := a.store.LoadOrInit()
		if err != nil {
			return err
		}
		if !cfg.DaemonEnabled {
			a.logger.WarningToUser("daemon mode is disabled, enable it with 'gittrack set --daemon=true'")
			return errors.New("daemon mode is disabled")
		}

		locker := lock.New(a.store.LockPath())
		if err := locker.Acquire(); err != nil {
			if errors.Is(err, errors.ErrAlreadyRunning) {
				a.logger.WarningToUser("another gittrack daemon is already running for this repository")
			}
			return err
		}
		defer func() { _ = locker.Release() }()

		a.logger.StatusMessage("gittrack daemon started for %s", a.repoPath)

		d := daemon.New(a.store, a.scanner, a.git, a.logger)
		err = d.Run(cmd.Context())
		if errors.Is(err, cmd.Context().Err()) {
			a.logger.InfoToUser("daemon stopped")
			return nil
		}
		return err
	},
}

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a single scan/commit/push cycle now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		if err := requireRepository(a); err != nil {
			return err
		}

		d := daemon.New(a.store, a.scanner, a.git, a.logger)
		if err := d.RunOnce(cmd.Context()); err != nil {
			if errors.Is(err, errors.ErrDivergence) {
				a.logger.WarningToUser("remote has diverged, run 'gittrack conflicts list' to resolve")
			}
			return err
		}
		a.logger.Success("tick complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(tickCmd)
}
