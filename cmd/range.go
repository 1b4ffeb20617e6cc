package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/discovery"
)

// rangeCmd represents the range command
var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Fetch and extract every report a company filed in a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		edinetCode, _ := cmd.Flags().GetString("company")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		from, err := parseDate(fromStr)
		if err != nil {
			return err
		}
		to, err := parseDate(toStr)
		if err != nil {
			return err
		}
		if to.Before(from) {
			return fmt.Errorf("--to is before --from")
		}

		client := newClient()
		p, cleanup, err := newProcessor(client)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := commandContext()
		defer stop()

		matches, stats, err := discovery.NewEngine(client).FindAllInRange(ctx, edinetCode, from, to)
		if err != nil {
			return err
		}
		utils.Log.Infof("%d matching filings over %d days (%d dates skipped)", stats.Matches, stats.Days, stats.Errors)
		if len(matches) == 0 {
			fmt.Printf("no securities reports for %s between %s and %s\n", edinetCode, fromStr, toStr)
			return nil
		}

		var processed, failed int
		for _, m := range matches {
			out, err := p.ProcessFiling(ctx, m.Filing)
			if err != nil {
				utils.Log.Errorf("%s: %v", m.Filing.DocID, err)
				failed++
				continue
			}
			if !out.Skipped {
				processed++
			}
		}
		fmt.Printf("processed %d of %d filings (%d failed)\n", processed, len(matches), failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.Flags().StringP("company", "c", "", "EDINET code of the company (e.g. E02144)")
	rangeCmd.Flags().String("from", "", "Start date, inclusive (YYYY-MM-DD)")
	rangeCmd.Flags().String("to", "", "End date, inclusive (YYYY-MM-DD)")
	rangeCmd.MarkFlagRequired("company")
	rangeCmd.MarkFlagRequired("from")
	rangeCmd.MarkFlagRequired("to")
}
