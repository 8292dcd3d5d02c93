package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/motodiag/internal/cli/commands"
)

var rootCmd = &cobra.Command{
	Use:   "motodiag",
	Short: "МотоДиагностика CLI - motorcycle inspection record keeping",
	Long: `МотоДиагностика CLI is a command-line tool for the motorcycle inspection
business: saved diagnostic reports, scheduled follow-up inspections with
reminders, and aggregate statistics.`,
}

func init() {
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(commands.NewInspectionCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewSettingsCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
