package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/motodiag/internal/api/client"
)

func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stats",
		Short:   "Statistics commands",
		Aliases: []string{"stat", "s"},
	}

	cmd.AddCommand(newStatsShowCommand())
	cmd.AddCommand(newStatsPostCommand())

	return cmd
}

func newStatsShowCommand() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show aggregate statistics for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			summary, err := c.GetStats(period)
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "Period\t%s\n", summary.Period)
			fmt.Fprintf(w, "Reports\t%d\n", summary.TotalReports)
			fmt.Fprintf(w, "Purchased\t%d\n", summary.Purchased)
			fmt.Fprintf(w, "Avg savings\t%s\n", summary.AvgSavingsFormatted)
			fmt.Fprintf(w, "Top brand\t%s\n", summary.TopBrand)
			fmt.Fprintf(w, "Planned inspections\t%d\n", summary.PlannedInspections)
			fmt.Fprintf(w, "Completed inspections\t%d\n", summary.CompletedInspections)
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "week", "Period: week, month, quarter or year")
	return cmd
}

func newStatsPostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Render the all-time statistics post",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient()
			if err != nil {
				return err
			}

			post, err := c.GetStatsPost()
			if err != nil {
				return fmt.Errorf("failed to get stats post: %w", err)
			}

			fmt.Println(post)
			return nil
		},
	}
}
