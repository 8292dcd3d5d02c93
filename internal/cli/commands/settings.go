package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/motodiag/internal/api/client"
)

func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Operator preference commands",
	}

	cmd.AddCommand(newSettingsShowCommand())
	cmd.AddCommand(newSettingsReminderCommand())
	cmd.AddCommand(newSettingsThemeCommand())
	cmd.AddCommand(newSettingsExportCommand())
	cmd.AddCommand(newSettingsImportCommand())
	cmd.AddCommand(newSettingsClearCommand())

	return cmd
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			s, err := c.GetSettings()
			if err != nil {
				return fmt.Errorf("failed to get settings: %w", err)
			}

			fmt.Printf("Reminder lead time: %d h\n", s.ReminderHours)
			fmt.Printf("Theme: %s\n", s.Theme)
			return nil
		},
	}
}

func newSettingsReminderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reminder [hours]",
		Short: "Set the reminder lead time in hours",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hours, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid hours value: %q", args[0])
			}

			c, err := client.NewClient()
			if err != nil {
				return err
			}

			if err := c.SetReminderHours(hours); err != nil {
				return fmt.Errorf("failed to set reminder lead time: %w", err)
			}
			fmt.Printf("Reminder lead time set to %d h.\n", hours)
			return nil
		},
	}
}

func newSettingsThemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Set the theme preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			if err := c.SetTheme(args[0]); err != nil {
				return fmt.Errorf("failed to set theme: %w", err)
			}
			fmt.Printf("Theme set to %s.\n", args[0])
			return nil
		},
	}
}

func newSettingsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export preferences as a JSON bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			blob, err := c.ExportSettings()
			if err != nil {
				return fmt.Errorf("failed to export settings: %w", err)
			}

			if output == "" {
				output = fmt.Sprintf("motodiag_settings_%s.json", time.Now().Format("2006-01-02"))
			}
			if err := os.WriteFile(output, blob, 0644); err != nil {
				return err
			}
			fmt.Printf("Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

func newSettingsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Restore preferences from an exported bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			c, err := client.NewClient()
			if err != nil {
				return err
			}

			if err := c.ImportSettings(data); err != nil {
				return fmt.Errorf("failed to import settings: %w", err)
			}
			fmt.Println("Settings imported.")
			return nil
		},
	}
}

func newSettingsClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Delete every report, inspection and preference",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm("ВНИМАНИЕ! Это действие удалит все отчеты, проверки и настройки. Продолжить?") {
				fmt.Println("Aborted.")
				return nil
			}

			c, err := client.NewClient()
			if err != nil {
				return err
			}

			if err := c.ClearAllData(); err != nil {
				return fmt.Errorf("failed to clear data: %w", err)
			}
			fmt.Println("All application data cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
