package main

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard all settings and rotate the encryption key",
	Long: `Discard all settings and rotate the encryption key.

The old key is destroyed, so the previous settings become permanently
unreadable unless a backup holding the old key exists. Create one with
'gittrack backup create' first if in doubt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp

		if !confirm(cmd, "reset discards all settings and rotates the key, continue?") {
			a.logger.InfoToUser("reset cancelled")
			return nil
		}

		if _, err := a.store.Reset(); err != nil {
			return err
		}
		a.logger.Success("settings reset, new encryption key generated")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
