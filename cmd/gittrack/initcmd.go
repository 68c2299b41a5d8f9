package main

import (
	"github.com/spf13/cobra"

	"gittrack/internal/git"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the repository and default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp

		isRepo, err := git.IsRepository(a.repoPath)
		if err != nil {
			return err
		}

		cfg, err := a.store.LoadOrInit()
		if err != nil {
			return err
		}

		if isRepo {
			a.logger.InfoToUser("already a git repository")
		} else {
			if err := a.git.Init(cmd.Context(), cfg.RemoteBranch); err != nil {
				return err
			}
			a.logger.Success("initialized git repository on branch %s", cfg.RemoteBranch)
		}

		if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
			if err := a.git.SetRemote(cmd.Context(), remote); err != nil {
				return err
			}
			cfg.RemoteURL = remote
			if err := a.store.Save(cfg); err != nil {
				return err
			}
			a.logger.Success("remote set to %s", remote)
		}

		a.logger.InfoToUser("track files with 'gittrack track <pattern>' and start the loop with 'gittrack daemon'")
		return nil
	},
}

func init() {
	initCmd.Flags().String("remote", "", "remote URL to configure as origin")
	rootCmd.AddCommand(initCmd)
}
