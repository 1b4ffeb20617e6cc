package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/edinet"
	"github.com/edinex/edinex/pkg/output"
	"github.com/edinex/edinex/pkg/pipeline"
	"github.com/edinex/edinex/pkg/refdata"
	"github.com/edinex/edinex/pkg/storage"
	"github.com/edinex/edinex/pkg/xbrl"
)

var cfgFile string

const (
	LOGO = `	          _ _
	  ___  __| (_)_ __   _____  __
	 / _ \/ _` + "`" + ` | | '_ \ / _ \ \/ /
	|  __/ (_| | | | | |  __/>  <
	 \___|\__,_|_|_| |_|\___/_/\_\

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "edinex",
	Short: "A financial disclosure collector for the EDINET API.",
	Long: LOGO + `edinex discovers securities reports on EDINET, downloads their XBRL
bundles and extracts financial concepts into JSON and CSV artifacts.

An EDINET API key is required (config key edinet.api_key, or the
EDINET_API_KEY environment variable).`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edinex.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Local .env files are honored so the API key never has to live in
	// the shell profile.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".edinex")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.edinex.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default values for all keys
	viper.SetDefault("edinet.api_key", "")
	viper.SetDefault("edinet.rate_limit", "1s")
	viper.SetDefault("data.dir", "data")
	viper.SetDefault("output.dir", "output")
	viper.SetDefault("work.dir", "work")
	viper.SetDefault("db.path", "edinex.sqlite")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

func newClient() *edinet.Client {
	apiKey := viper.GetString("edinet.api_key")
	if apiKey == "" {
		utils.Log.Fatal("No EDINET API key. Set edinet.api_key in the config file or the EDINET_API_KEY environment variable")
	}
	client := edinet.NewClient(apiKey)
	if d, err := time.ParseDuration(viper.GetString("edinet.rate_limit")); err == nil && d > 0 {
		client.RateLimit = d
	}
	return client
}

// newProcessor assembles the full pipeline from the configured data
// directory, output directory and filing index. The returned cleanup
// closes the index.
func newProcessor(client *edinet.Client) (*pipeline.Processor, func(), error) {
	dataDir := viper.GetString("data.dir")

	catalog, err := xbrl.LoadCatalog(dataDir)
	if err != nil {
		return nil, nil, err
	}
	companies, err := refdata.Load(dataDir)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(viper.GetString("db.path"))
	if err != nil {
		return nil, nil, err
	}

	p := &pipeline.Processor{
		Client:    client,
		Catalog:   catalog,
		Companies: companies,
		Index:     db,
		Writer:    output.NewWriter(viper.GetString("output.dir")),
		WorkDir:   viper.GetString("work.dir"),
	}
	return p, func() { db.Close() }, nil
}

// printReport writes the per-tier extraction breakdown after a run.
func printReport(rep xbrl.Report) {
	for _, tier := range []xbrl.Tier{xbrl.TierCritical, xbrl.TierImportant, xbrl.TierNormal} {
		r := rep.ByTier[tier]
		if r.Total == 0 {
			continue
		}
		fmt.Printf("  %s: %d/%d (%.1f%%)\n", tier, r.Found, r.Total, r.Rate())
	}
}

// commandContext returns a context cancelled on SIGINT/SIGTERM. Scan and
// processing loops check it at date and filing boundaries, so an
// interrupted run finishes the item in flight, cleans up its working
// directory and stops.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}
