package main

import (
	"github.com/spf13/cobra"

	"gittrack/internal/errors"
	"gittrack/internal/git"
	"gittrack/internal/hub"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Operate on the remote hosting service",
}

var repoCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a remote repository and wire it up as origin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp

		cfg, err := a.store.LoadOrInit()
		if err != nil {
			return err
		}
		if cfg.HubToken == "" {
			return errors.New("no hosting token configured, set one with 'gittrack set --token <token>'")
		}

		private, _ := cmd.Flags().GetBool("private")
		description, _ := cmd.Flags().GetString("description")

		client := hub.NewClient(cfg.HubToken, a.logger)

		user, err := client.AuthenticatedUser(cmd.Context())
		if err != nil {
			return err
		}
		a.logger.Info("authenticated as %s", user)

		repo, err := client.CreateRepository(cmd.Context(), args[0], description, private)
		if err != nil {
			return err
		}
		a.logger.Success("created %s", repo.HTMLURL)

		if isRepo, err := git.IsRepository(a.repoPath); err == nil && isRepo {
			if err := a.git.SetRemote(cmd.Context(), repo.CloneURL); err != nil {
				return err
			}
			cfg.RemoteURL = repo.CloneURL
			if err := a.store.Save(cfg); err != nil {
				return err
			}
			a.logger.Success("origin set to %s", repo.CloneURL)
		} else {
			a.logger.InfoToUser("run 'gittrack init --remote %s' to wire it up", repo.CloneURL)
		}
		return nil
	},
}

func init() {
	repoCreateCmd.Flags().Bool("private", true, "create a private repository")
	repoCreateCmd.Flags().String("description", "", "repository description")
	repoCmd.AddCommand(repoCreateCmd)
	rootCmd.AddCommand(repoCmd)
}
