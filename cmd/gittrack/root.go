package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gittrack/internal/config"
	"gittrack/internal/git"
	"gittrack/internal/logger"
	"gittrack/internal/scan"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

// app holds the collaborators every subcommand shares, wired once in
// the root command's PersistentPreRunE.
type app struct {
	repoPath string
	store    *config.Store
	git      *git.Client
	scanner  *scan.Scanner
	logger   logger.Logger
}

var rootApp *app

var rootCmd = &cobra.Command{
	Use:           "gittrack",
	Short:         "Automatic git tracking with encrypted settings",
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootApp != nil {
			rootApp.logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("repo", "r", ".", "repository to operate on")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log more detail")
	rootCmd.PersistentFlags().Bool("no-log-file", false, "disable the log file")

	viper.SetEnvPrefix("GITTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("repo", rootCmd.PersistentFlags().Lookup("repo"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("no_log_file", rootCmd.PersistentFlags().Lookup("no-log-file"))
}

func initApp(cmd *cobra.Command) error {
	repoPath, err := resolveRepoPath(viper.GetString("repo"))
	if err != nil {
		return err
	}

	store := config.NewStore(repoPath)

	logFile := store.LogPath()
	logEnabled := !viper.GetBool("no_log_file")
	if logEnabled {
		if err := os.MkdirAll(store.Dir(), 0o700); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	log := logger.New(logEnabled, logFile, viper.GetBool("verbose"))

	rootApp = &app{
		repoPath: repoPath,
		store:    store,
		git:      git.NewClient(repoPath, log),
		scanner:  scan.NewScanner(repoPath, log),
		logger:   log,
	}
	return nil
}

func resolveRepoPath(path string) (string, error) {
	abs, err := os.Getwd()
	if path != "." {
		return path, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return abs, nil
}

// requireRepository guards subcommands that only make sense inside a
// git repository.
func requireRepository(a *app) error {
	ok, err := git.IsRepository(a.repoPath)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not a git repository (run 'gittrack init' first)", a.repoPath)
	}
	return nil
}

// confirm asks a yes/no question on the terminal. Destructive commands
// call it unless --yes was given.
func confirm(cmd *cobra.Command, prompt string) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// Execute runs the CLI to completion.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
	}
	return err
}
