package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	host    string
	dbPath  string
	batches string
	dryRun  bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Harvest ranked ladder players and matches from the Riot API",
	Long: `A command-line interface for running the harvest stages against the local store,
or for triggering them on a running harvester server.

Every frontier stage resumes where the previous run stopped, so a capped run can be
continued at any time with the same command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server (remote commands)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path of the SQLite store (overrides DB_NAME)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Plan the run without calling the API or writing to the store")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'\n", err)
		stop()
		os.Exit(1)
	}
}

func main() {
	Execute()
}
