package main

import (
	"github.com/spf13/cobra"

	"gittrack/internal/conflict"
	"gittrack/internal/errors"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Inspect and resolve a diverged repository",
}

var conflictsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files currently in conflict",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		if err := requireRepository(a); err != nil {
			return err
		}

		resolver := conflict.NewResolver(a.git, a.logger)
		record, err := resolver.Detect(cmd.Context())
		if errors.Is(err, errors.ErrNoConflicts) {
			// The rejected push left no merge state yet; pulling the
			// diverged branch materializes the conflict markers.
			record, err = pullAndDetect(cmd, a, resolver)
			if errors.Is(err, errors.ErrNoConflicts) {
				a.logger.InfoToUser("no conflicts, repository is clean")
				return nil
			}
		}
		if err != nil {
			return err
		}

		for _, p := range record.Paths() {
			cmd.Printf("%s %s\n", red("conflict:"), p)
		}
		cmd.Println()
		cmd.Println("resolve each file with 'gittrack conflicts resolve <path> <local|remote|manual>'")
		return nil
	},
}

// pullAndDetect merges the remote branch and re-detects. A clean merge
// means the divergence resolved itself; a diverged pull leaves unmerged
// paths for Detect to pick up.
func pullAndDetect(cmd *cobra.Command, a *app, resolver *conflict.Resolver) (*conflict.Record, error) {
	cfg, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if cfg.RemoteURL == "" {
		return nil, errors.ErrNoConflicts
	}

	err = a.git.Pull(cmd.Context(), "origin", cfg.RemoteBranch)
	if err == nil {
		a.logger.InfoToUser("remote changes merged cleanly, nothing to resolve")
		return nil, errors.ErrNoConflicts
	}
	if !errors.Is(err, errors.ErrDivergence) {
		return nil, err
	}
	return resolver.Detect(cmd.Context())
}

var conflictsResolveCmd = &cobra.Command{
	Use:   "resolve <path> <local|remote|manual>",
	Short: "Apply a resolution choice to one conflicted file",
	Long: `Apply a resolution choice to one conflicted file.

local keeps your version, remote takes the incoming version, manual
leaves the file for you to edit. After editing, re-run with manual
--done to mark the file resolved.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		if err := requireRepository(a); err != nil {
			return err
		}

		path, choice := args[0], conflict.Choice(args[1])
		resolver := conflict.NewResolver(a.git, a.logger)
		record, err := resolver.Detect(cmd.Context())
		if errors.Is(err, errors.ErrNoConflicts) {
			return errors.Wrap(errors.ErrNoConflicts, "nothing left to resolve")
		}
		if err != nil {
			return err
		}

		if err := resolver.Resolve(cmd.Context(), record, path, choice); err != nil {
			return err
		}

		if choice == conflict.ChoiceManual {
			done, _ := cmd.Flags().GetBool("done")
			if !done {
				a.logger.InfoToUser("edit %s, then re-run with --done to mark it resolved", path)
				return nil
			}
			if err := resolver.ConfirmManual(cmd.Context(), record, path); err != nil {
				return err
			}
		}

		a.logger.Success("resolved %s", path)
		if remaining := record.Unresolved(); len(remaining) > 0 {
			a.logger.InfoToUser("%d file(s) still unresolved", len(remaining))
		} else {
			a.logger.InfoToUser("all conflicts resolved, run 'gittrack conflicts finalize'")
		}
		return nil
	},
}

var conflictsFinalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Commit the resolution and push",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		if err := requireRepository(a); err != nil {
			return err
		}

		cfg, err := a.store.Load()
		if err != nil {
			return err
		}

		// Resolutions from earlier invocations are already staged; any
		// path git still marks unmerged blocks the finalize.
		unmerged, err := a.git.ListConflictedPaths(cmd.Context())
		if err != nil {
			return err
		}
		if len(unmerged) > 0 {
			return errors.Wrapf(errors.ErrStillUnresolved,
				"%d file(s) still unresolved", len(unmerged))
		}

		resolver := conflict.NewResolver(a.git, a.logger)
		if err := resolver.Finalize(cmd.Context(), conflict.EmptyRecord(), "origin", cfg.RemoteBranch); err != nil {
			return err
		}
		a.logger.Success("conflicts resolved and pushed")
		return nil
	},
}

func init() {
	conflictsResolveCmd.Flags().Bool("done", false, "confirm a manual edit is finished")
	conflictsCmd.AddCommand(conflictsListCmd)
	conflictsCmd.AddCommand(conflictsResolveCmd)
	conflictsCmd.AddCommand(conflictsFinalizeCmd)
	rootCmd.AddCommand(conflictsCmd)
}
