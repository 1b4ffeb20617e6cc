package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/edinex/edinex/pkg/storage"
)

var dbPath string

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the edinex filing index",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the filing index",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := indexPath(cmd)

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// dbStatsCmd represents the stats command
var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints per-document-type statistics about processed filings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := indexPath(cmd)

		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return err
		}

		if len(stats) == 0 {
			fmt.Println("No processed filings in the index yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "DOC TYPE\tCOUNT\tAVG SUCCESS\t")

		var total int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%.1f%%\t\n", s.DocType, s.Count, s.AvgRate)
			total += s.Count
		}

		fmt.Fprintln(w, " \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t\t\n", total)

		w.Flush()

		return nil
	},
}

func indexPath(cmd *cobra.Command) string {
	path, _ := cmd.Parent().Flags().GetString("dbpath")
	if path == "" {
		path = viper.GetString("db.path")
	}
	return path
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "Path to the SQLite filing index (defaults to db.path)")
}
