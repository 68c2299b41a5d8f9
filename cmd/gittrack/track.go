package main

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"gittrack/internal/config"
	"gittrack/internal/errors"
)

var trackCmd = &cobra.Command{
	Use:   "track <pattern>...",
	Short: "Add filenames or glob patterns to the tracked set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		cfg, err := a.store.LoadOrInit()
		if err != nil {
			return err
		}

		added, err := cfg.AddPatterns(args...)
		if err != nil {
			return err
		}
		if !added {
			a.logger.InfoToUser("nothing new to track")
			return nil
		}
		if err := a.store.Save(cfg); err != nil {
			return err
		}
		a.logger.Success("tracking %d pattern(s)", len(cfg.TrackedPatterns))
		return nil
	},
}

var untrackCmd = &cobra.Command{
	Use:   "untrack <pattern>",
	Short: "Remove a pattern from the tracked set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		cfg, err := a.store.Load()
		if err != nil {
			return err
		}

		if !cfg.RemovePattern(args[0]) {
			return errors.Errorf("%q is not tracked", args[0])
		}
		if err := a.store.Save(cfg); err != nil {
			return err
		}
		a.logger.Success("stopped tracking %s", args[0])

		if forget, _ := cmd.Flags().GetBool("forget"); forget {
			return forgetCommitted(cmd, a, args[0])
		}
		return nil
	},
}

// forgetCommitted unstages files matching the pattern from the git
// index, leaving the working copies in place. Only files no longer
// covered by a remaining pattern are touched.
func forgetCommitted(cmd *cobra.Command, a *app, pattern string) error {
	cfg, err := a.store.Load()
	if err != nil {
		return err
	}

	files, err := a.git.LsFiles(cmd.Context())
	if err != nil {
		return err
	}
	for _, f := range files {
		match, err := doublestar.Match(pattern, f)
		if err != nil {
			return err
		}
		if !match || coveredByRemaining(cfg.TrackedPatterns, f) {
			continue
		}
		if err := a.git.RemoveCached(cmd.Context(), f); err != nil {
			return err
		}
		a.logger.InfoToUser("no longer committing %s (working copy kept)", f)
	}
	return nil
}

func coveredByRemaining(patterns []string, path string) bool {
	for _, p := range patterns {
		if p == config.AllFilesPattern {
			return true
		}
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

var trackedCmd = &cobra.Command{
	Use:   "tracked",
	Short: "List the tracked patterns",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		cfg, err := a.store.Load()
		if err != nil {
			if errors.Is(err, errors.ErrNotInitialized) {
				a.logger.InfoToUser("nothing tracked yet")
				return nil
			}
			return err
		}

		if len(cfg.TrackedPatterns) == 0 {
			a.logger.InfoToUser("nothing tracked yet")
			return nil
		}
		for _, p := range cfg.TrackedPatterns {
			cmd.Println(p)
		}
		return nil
	},
}

func init() {
	untrackCmd.Flags().Bool("forget", false, "also stop committing already-tracked files (working copies kept)")
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(untrackCmd)
	rootCmd.AddCommand(trackedCmd)
}
