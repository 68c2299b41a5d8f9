package main

import (
	"github.com/spf13/cobra"

	"gittrack/internal/logger"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent log lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := rootApp
		n, _ := cmd.Flags().GetInt("lines")

		lines, err := logger.Tail(a.store.LogPath(), n)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			a.logger.InfoToUser("no log entries yet")
			return nil
		}
		for _, line := range lines {
			cmd.Println(line)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntP("lines", "n", 50, "how many lines to show")
	rootCmd.AddCommand(logsCmd)
}
