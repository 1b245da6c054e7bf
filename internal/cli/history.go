/*
PURPOSE:
  Defines the 'history' subcommand.
  Lists past runs from the local ledger, optionally exporting CSV.

REQUIREMENTS:
  User-specified:
  - Show mode, artifact paths, and metric of recent runs.
  - Optional CSV export for spreadsheet analysis.

ARCHITECTURE INTEGRATION:
  - Uses: internal/history, internal/output

ERROR HANDLING:
  - Returns error if the ledger cannot be opened or read.

USAGE:
  tsct-runner history --limit 10
  tsct-runner history --csv runs.csv

RELATED FILES:
  - internal/history/store.go
  - internal/output/csv.go

MAINTENANCE:
  - Update the table layout when RunRecord changes.
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/tsct-runner/internal/config"
	"github.com/daryltucker/tsct-runner/internal/history"
	"github.com/daryltucker/tsct-runner/internal/output"
)

var (
	historyLimit int
	historyCSV   string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs from the local ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		st, err := history.NewStore(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("open ledger %s: %w", cfg.HistoryDB, err)
		}
		defer st.Close()

		records, err := st.List(historyLimit)
		if err != nil {
			return err
		}

		if historyCSV != "" {
			w, err := output.NewCSVWriter(historyCSV)
			if err != nil {
				return fmt.Errorf("open CSV export %s: %w", historyCSV, err)
			}
			defer w.Close()
			for _, rec := range records {
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			fmt.Printf("Exported %d runs to %s\n", len(records), historyCSV)
			return nil
		}

		if len(records) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%s  %-11s  metric=%-10g  %s\n",
				rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
				rec.Mode, rec.Metric, rec.ParamsPath)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyCSV, "csv", "", "Export the listed runs to a CSV file")
}
