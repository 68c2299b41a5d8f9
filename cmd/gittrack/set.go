package main

import (
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings (validated before they are persisted)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		cfg, err := a.store.LoadOrInit()
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("interval") {
			cfg.CommitInterval, _ = flags.GetInt("interval")
		}
		if flags.Changed("auto-commit") {
			cfg.AutoCommitEnabled, _ = flags.GetBool("auto-commit")
		}
		if flags.Changed("daemon") {
			cfg.DaemonEnabled, _ = flags.GetBool("daemon")
		}
		if flags.Changed("remote") {
			cfg.RemoteURL, _ = flags.GetString("remote")
		}
		if flags.Changed("branch") {
			cfg.RemoteBranch, _ = flags.GetString("branch")
		}
		if flags.Changed("token") {
			cfg.HubToken, _ = flags.GetString("token")
		}

		warning, err := cfg.Validate()
		if err != nil {
			return err
		}
		if warning != "" {
			a.logger.WarningToUser("%s", warning)
		}

		if err := a.store.Save(cfg); err != nil {
			return err
		}

		// The daemon pushes to origin, so a new remote URL must reach
		// git itself, not just the settings file.
		if flags.Changed("remote") && cfg.RemoteURL != "" {
			isRepo, err := a.git.IsRepository(cmd.Context())
			if err != nil {
				return err
			}
			if isRepo {
				if err := a.git.SetRemote(cmd.Context(), cfg.RemoteURL); err != nil {
					return err
				}
				a.logger.Success("origin set to %s", cfg.RemoteURL)
			} else {
				a.logger.InfoToUser("remote saved; 'gittrack init' will configure origin")
			}
		}

		a.logger.Success("settings saved")
		return nil
	},
}

func init() {
	setCmd.Flags().Int("interval", 0, "seconds between auto-commit ticks")
	setCmd.Flags().Bool("auto-commit", false, "enable or disable auto-commit")
	setCmd.Flags().Bool("daemon", false, "enable or disable daemon mode")
	setCmd.Flags().String("remote", "", "remote URL to push to")
	setCmd.Flags().String("branch", "", "remote branch to push to")
	setCmd.Flags().String("token", "", "hosting API token (stored encrypted)")
	rootCmd.AddCommand(setCmd)
}
