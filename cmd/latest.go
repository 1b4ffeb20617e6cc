package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/discovery"
)

// latestCmd represents the latest command
var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Fetch and extract a company's most recent securities report",
	Long: `Estimates the company's statutory filing window from its fiscal
year-end, scans it newest date first and processes the first securities
report found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		edinetCode, _ := cmd.Flags().GetString("company")

		client := newClient()
		p, cleanup, err := newProcessor(client)
		if err != nil {
			return err
		}
		defer cleanup()

		fiscalYearEnd := "3月31日"
		if c, ok := p.Companies.Company(edinetCode); ok {
			if c.FiscalYearEnd != "" {
				fiscalYearEnd = c.FiscalYearEnd
			}
			utils.Log.Infof("company: %s (%s, fiscal year-end %s)", c.Name, edinetCode, fiscalYearEnd)
		} else {
			utils.Log.Warnf("%s not in company directory, assuming fiscal year-end %s", edinetCode, fiscalYearEnd)
		}

		ctx, stop := commandContext()
		defer stop()

		match, err := discovery.NewEngine(client).FindLatest(ctx, edinetCode, fiscalYearEnd)
		if err != nil {
			return err
		}
		if match == nil {
			return fmt.Errorf("no securities report found for %s in its filing window", edinetCode)
		}

		out, err := p.ProcessFiling(ctx, match.Filing)
		if err != nil {
			return err
		}
		if out.Skipped {
			fmt.Printf("%s already processed\n", match.Filing.DocID)
			return nil
		}
		fmt.Printf("%s: %d/%d concepts (%.1f%%)\n",
			match.Filing.DocID, out.Summary.Found, out.Summary.Total, out.Summary.SuccessRate)
		printReport(out.Report)
		fmt.Printf("%s\n%s\n", out.Paths.JSON, out.Paths.CSV)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().StringP("company", "c", "", "EDINET code of the company (e.g. E02144)")
	latestCmd.MarkFlagRequired("company")
}
