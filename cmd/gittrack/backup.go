package main

import (
	"github.com/spf13/cobra"

	"gittrack/internal/backup"
	"gittrack/internal/errors"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot and restore the encrypted settings",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the current settings and key",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		m := backup.NewManager(a.store, a.logger)

		rec, err := m.Create()
		if errors.Is(err, errors.ErrNothingToBackup) {
			return errors.Wrap(err, "no settings saved yet")
		}
		if err != nil {
			return err
		}
		a.logger.Success("created backup %s", rec.ID)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		m := backup.NewManager(a.store, a.logger)

		records, err := m.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			a.logger.InfoToUser("no backups yet")
			return nil
		}
		for _, rec := range records {
			cmd.Printf("%s  created %s\n", green(rec.ID), rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Replace the active settings and key with a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		m := backup.NewManager(a.store, a.logger)

		if !confirm(cmd, "restoring discards the current settings and key, continue?") {
			a.logger.InfoToUser("restore cancelled")
			return nil
		}

		if err := m.Restore(args[0]); err != nil {
			return err
		}
		a.logger.Success("restored backup %s", args[0])
		return nil
	},
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		keep, _ := cmd.Flags().GetInt("keep")
		m := backup.NewManager(a.store, a.logger)

		removed, err := m.Prune(keep)
		if err != nil {
			return err
		}
		a.logger.Success("pruned %d backup(s), kept %d", removed, keep)
		return nil
	},
}

func init() {
	backupRestoreCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	backupPruneCmd.Flags().Int("keep", 5, "how many backups to keep")
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}
