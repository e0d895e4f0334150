package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "forex-signals",
	Short: "Telegram forex signal bot with subscription access and stake sizing",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
