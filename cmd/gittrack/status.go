package main

import (
	"strings"

	"github.com/spf13/cobra"

	"gittrack/internal/errors"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show repository and tracking status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		if err := requireRepository(a); err != nil {
			return err
		}

		cfg, err := a.store.Load()
		if err != nil && !errors.Is(err, errors.ErrNotInitialized) {
			return err
		}

		cmd.Printf("%s %s\n", cyan("repository:"), a.repoPath)
		if branch, err := a.git.CurrentBranch(cmd.Context()); err == nil && branch != "" {
			cmd.Printf("%s %s\n", cyan("branch:"), branch)
		}

		if cfg == nil {
			cmd.Printf("%s not initialized\n", cyan("tracking:"))
			return nil
		}

		cmd.Printf("%s %s\n", cyan("tracking:"), summarizePatterns(cfg.TrackedPatterns))
		cmd.Printf("%s %v (every %s)\n", cyan("auto-commit:"), cfg.AutoCommitEnabled, cfg.Interval())
		cmd.Printf("%s %v\n", cyan("daemon mode:"), cfg.DaemonEnabled)
		if cfg.RemoteURL != "" {
			cmd.Printf("%s %s (branch %s)\n", cyan("remote:"), cfg.RemoteURL, cfg.RemoteBranch)
		} else {
			cmd.Printf("%s not configured\n", cyan("remote:"))
		}
		if !cfg.LastCommitTime.IsZero() {
			cmd.Printf("%s %s\n", cyan("last commit:"), cfg.LastCommitTime.Format("2006-01-02 15:04:05"))
		}

		dirty, err := a.git.HasChanges(cmd.Context())
		if err != nil {
			return err
		}
		if dirty {
			cmd.Printf("%s uncommitted changes present\n", cyan("working tree:"))
		} else {
			cmd.Printf("%s %s\n", cyan("working tree:"), green("clean"))
		}
		return nil
	},
}

func summarizePatterns(patterns []string) string {
	if len(patterns) == 0 {
		return "nothing"
	}
	return strings.Join(patterns, ", ")
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
