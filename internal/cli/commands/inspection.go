package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/motodiag/internal/api/client"
	"github.com/motodiag/internal/models"
)

func NewInspectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inspection",
		Short:   "Scheduled inspection commands",
		Aliases: []string{"inspections", "i"},
	}

	cmd.AddCommand(newInspectionListCommand())
	cmd.AddCommand(newInspectionShowCommand())
	cmd.AddCommand(newInspectionCompleteCommand())
	cmd.AddCommand(newInspectionDeleteCommand())
	cmd.AddCommand(newInspectionExportCommand())
	cmd.AddCommand(newInspectionImportCommand())
	cmd.AddCommand(newInspectionRemindersCommand())

	return cmd
}

func newInspectionListCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List inspections, soonest scheduled first",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			inspections, err := c.ListInspections(query)
			if err != nil {
				return fmt.Errorf("failed to list inspections: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tBRAND\tMODEL\tSCHEDULED\tADDRESS\tSTATUS")
			for _, i := range inspections {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
					i.ID, i.Brand, i.Model,
					i.InspectionDate, i.InspectionTime,
					i.InspectionAddress, stateBadge(i.State))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by brand, model or address")
	return cmd
}

func stateBadge(state models.DisplayState) string {
	switch state {
	case models.DisplayCompleted:
		return "✅ Выполнено"
	case models.DisplayOverdue:
		return "⚠️ Просрочено"
	case models.DisplayUrgent:
		return "🔔 Срочно"
	default:
		return "📅 Запланировано"
	}
}

func newInspectionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [inspection_id]",
		Short: "Print the inspection details text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			details, err := c.GetInspectionDetails(args[0])
			if err != nil {
				return fmt.Errorf("failed to get inspection: %w", err)
			}

			fmt.Println(details)
			return nil
		},
	}
}

func newInspectionCompleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [inspection_id]",
		Short: "Mark an inspection as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			if err := c.CompleteInspection(args[0]); err != nil {
				return fmt.Errorf("failed to complete inspection: %w", err)
			}
			fmt.Println("Inspection completed.")
			return nil
		},
	}
}

func newInspectionDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete [inspection_id]",
		Short:   "Delete a scheduled inspection",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm("Вы уверены, что хотите удалить эту проверку?") {
				fmt.Println("Aborted.")
				return nil
			}

			c, err := client.NewClient()
			if err != nil {
				return err
			}

			if err := c.DeleteInspection(args[0]); err != nil {
				return fmt.Errorf("failed to delete inspection: %w", err)
			}
			fmt.Println("Inspection deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newInspectionExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all inspections as a JSON array",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			blob, err := c.ExportInspections()
			if err != nil {
				return fmt.Errorf("failed to export inspections: %w", err)
			}

			if output == "" {
				output = fmt.Sprintf("motodiag_inspections_%s.json", time.Now().Format("2006-01-02"))
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

func newInspectionImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Merge inspections from an exported JSON file",
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

			count, err := c.ImportInspections(data)
			if err != nil {
				return fmt.Errorf("failed to import inspections: %w", err)
			}
			fmt.Printf("Imported %d inspections.\n", count)
			return nil
		},
	}
}

func newInspectionRemindersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List pending reminder timers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			entries, err := c.ListReminders()
			if err != nil {
				return fmt.Errorf("failed to list reminders: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "INSPECTION\tFIRES AT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\n", e.InspectionID, e.FireAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}
