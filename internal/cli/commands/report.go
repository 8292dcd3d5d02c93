package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/motodiag/internal/api/client"
)

func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Saved report commands",
		Aliases: []string{"reports", "r"},
	}

	cmd.AddCommand(newReportListCommand())
	cmd.AddCommand(newReportShowCommand())
	cmd.AddCommand(newReportDeleteCommand())
	cmd.AddCommand(newReportExportCommand())
	cmd.AddCommand(newReportImportCommand())

	return cmd
}

func newReportListCommand() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List saved reports, most recent first",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			reports, err := c.ListReports(query)
			if err != nil {
				return fmt.Errorf("failed to list reports: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tBRAND\tMODEL\tYEAR\tDECISION\tSAVED")
			for _, r := range reports {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Brand, r.Model, r.Year, r.Decision,
					r.Timestamp.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by brand, model, year, VIN or plate")
	return cmd
}

func newReportShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [report_id]",
		Short: "Print the frozen report text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			r, err := c.GetReport(args[0])
			if err != nil {
				return fmt.Errorf("failed to get report: %w", err)
			}

			fmt.Println(r.GeneratedText)
			return nil
		},
	}
}

func newReportDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete [report_id]",
		Short:   "Delete a saved report",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm("Вы уверены, что хотите удалить этот отчет?") {
				fmt.Println("Aborted.")
				return nil
			}

			c, err := client.NewClient()
			if err != nil {
				return err
			}

			if err := c.DeleteReport(args[0]); err != nil {
				return fmt.Errorf("failed to delete report: %w", err)
			}
			fmt.Println("Report deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newReportExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all reports as a JSON array",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			blob, err := c.ExportReports()
			if err != nil {
				return fmt.Errorf("failed to export reports: %w", err)
			}

			if output == "" {
				output = fmt.Sprintf("motodiag_reports_%s.json", time.Now().Format("2006-01-02"))
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

func newReportImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Merge reports from an exported JSON file",
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

			count, err := c.ImportReports(data)
			if err != nil {
				return fmt.Errorf("failed to import reports: %w", err)
			}
			fmt.Printf("Imported %d reports.\n", count)
			return nil
		},
	}
}

// confirm asks a y/n question on stdin before a destructive action.
func confirm(message string) bool {
	fmt.Printf("%s [y/N]: ", message)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
