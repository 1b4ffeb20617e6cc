package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edinex/edinex/pkg/archive"
	"github.com/edinex/edinex/pkg/edinet"
	"github.com/edinex/edinex/pkg/output"
	"github.com/edinex/edinex/pkg/pipeline"
	"github.com/edinex/edinex/pkg/refdata"
	"github.com/edinex/edinex/pkg/xbrl"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <bundle.zip | directory>",
	Short: "Extract concepts from a local XBRL bundle without touching the API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		edinetCode, _ := cmd.Flags().GetString("company")

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		dataDir := viper.GetString("data.dir")
		catalog, err := xbrl.LoadCatalog(dataDir)
		if err != nil {
			return err
		}
		companies, err := refdata.Load(dataDir)
		if err != nil {
			return err
		}

		// No client, no index: local extraction is a pure transformation.
		p := &pipeline.Processor{
			Catalog:   catalog,
			Companies: companies,
			Writer:    output.NewWriter(viper.GetString("output.dir")),
		}

		dir := path
		if !info.IsDir() {
			dir, err = archive.UnpackLocal(path, viper.GetString("work.dir"))
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)
		}

		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		filing := edinet.Filing{DocID: stem, EdinetCode: edinetCode}
		if c, ok := companies.Company(edinetCode); ok {
			filing.FilerName = c.Name
			filing.SecCode = c.SecCode
		}

		out, err := p.ProcessLocal(dir, filing)
		if err != nil {
			return err
		}
		fmt.Printf("%d/%d concepts (%.1f%%)\n",
			out.Summary.Found, out.Summary.Total, out.Summary.SuccessRate)
		printReport(out.Report)
		fmt.Printf("%s\n%s\n", out.Paths.JSON, out.Paths.CSV)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("company", "c", "", "EDINET code for directory enrichment (optional)")
}
