package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/discovery"
)

// bulkCmd represents the bulk command
var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Fetch and extract every securities report filed in a date range",
	Long: `Scans every disclosure date in the range with no company filter and
processes each securities report found. Filings already in the index are
skipped, so an interrupted run can be restarted over the same range.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		days := int(to.Sub(from).Hours()/24) + 1
		if days > 31 {
			utils.Log.Warnf("scanning %d days at the API rate limit; this will take a while", days)
		}

		client := newClient()
		p, cleanup, err := newProcessor(client)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := commandContext()
		defer stop()

		stats, err := p.RunBulk(ctx, discovery.NewEngine(client), from, to)
		if err != nil {
			return err
		}
		fmt.Printf("%d days scanned, %d filings matched, %d processed, %d skipped, %d errors\n",
			stats.Days, stats.Matches, stats.Processed, stats.Skipped, stats.Errors)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bulkCmd)
	bulkCmd.Flags().String("from", "", "Start date, inclusive (YYYY-MM-DD)")
	bulkCmd.Flags().String("to", "", "End date, inclusive (YYYY-MM-DD)")
	bulkCmd.MarkFlagRequired("from")
	bulkCmd.MarkFlagRequired("to")
}
