package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"text/tabwriter"
	"time"

	"github.com/mauv0809/ladder-harvester/internal/app"
	"github.com/mauv0809/ladder-harvester/internal/config"
	"github.com/mauv0809/ladder-harvester/internal/database"
	"github.com/mauv0809/ladder-harvester/internal/harvest"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/spf13/cobra"
)

var withRoster bool

func init() {
	for _, cmd := range []*cobra.Command{identifiersCmd, matchesCmd, detailsCmd, allCmd, remoteRunCmd} {
		cmd.Flags().StringVar(&batches, "batches", "", `Number of batches to run, or "all"`)
	}
	allCmd.Flags().BoolVar(&withRoster, "roster", true, "Refresh the roster before the frontier stages")
	remoteRunCmd.Flags().BoolVar(&withRoster, "roster", true, "Refresh the roster before the frontier stages (all only)")

	rootCmd.AddCommand(rosterCmd, identifiersCmd, matchesCmd, detailsCmd, allCmd, summaryCmd, backupCmd, remoteCmd)
	remoteCmd.AddCommand(healthCmd, remoteSummaryCmd, remoteRunCmd, metricsCmd)
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Back up the store and reconcile the players table against the current ladder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocal(cmd, ladder.StageRoster, false)
	},
}

var identifiersCmd = &cobra.Command{
	Use:   "identifiers",
	Short: "Resolve the global id of players that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocal(cmd, ladder.StageIdentifiers, true)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Discover match ids played since each player's frontier cursor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocal(cmd, ladder.StageMatches, true)
	},
}

var detailsCmd = &cobra.Command{
	Use:   "details",
	Short: "Fetch the details of matches that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocal(cmd, ladder.StageDetails, true)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the roster and every frontier stage in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := harvest.ParseBatchLimit(batches)
		if err != nil {
			return err
		}
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		reports, runErr := a.Harvester.RunAll(cmd.Context(), limit, withRoster, dryRun)
		for _, r := range reports {
			printReport(cmd.OutOrStdout(), r)
		}
		if err := printSummary(cmd, a.Store); err != nil {
			return err
		}
		return runErr
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print per-stage progress of the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := storeConfig()
		if err != nil {
			return err
		}
		db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
		if err != nil {
			return err
		}
		defer teardown()
		return printSummary(cmd, ladder.New(db))
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy the store file into the backup directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := storeConfig()
		if err != nil {
			return err
		}
		backup := app.BackupFunc(cfg)
		if backup == nil {
			return fmt.Errorf("store %q has no file to back up", cfg.DBName)
		}
		path, err := backup(time.Now())
		if err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No store file exists yet")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
		return nil
	},
}

func runLocal(cmd *cobra.Command, stage ladder.Stage, needsLimit bool) error {
	limit := harvest.AllBatches()
	if needsLimit {
		var err error
		if limit, err = harvest.ParseBatchLimit(batches); err != nil {
			return err
		}
	}
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, runErr := a.Harvester.Run(cmd.Context(), stage, limit, dryRun)
	printReport(cmd.OutOrStdout(), report)
	if err := printSummary(cmd, a.Store); err != nil {
		return err
	}
	return runErr
}

func buildApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(&cfg)
	return app.Build(cmd.Context(), cfg)
}

func storeConfig() (config.Config, error) {
	cfg, err := config.LoadForStore()
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(&cfg)
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if dbPath != "" {
		cfg.DBName = dbPath
	}
	if !verbose {
		cfg.ApplyLogLevel()
	}
}

func printReport(w io.Writer, r ladder.StageReport) {
	if r.Stage == "" {
		return
	}
	fmt.Fprintf(w, "%s: fetched=%d failed=%d written=%d batches=%d/%d remaining=%d duration=%s\n",
		r.Stage, r.Fetched, r.Failed, r.Written, r.BatchesRun, r.BatchesPlanned, r.Remaining, r.Duration.Round(time.Millisecond))
	if r.Reconcile != nil {
		fmt.Fprintf(w, "  roster: before=%d after=%d inserted=%d updated=%d deleted=%d\n",
			r.Reconcile.Before, r.Reconcile.After, r.Reconcile.Inserted, r.Reconcile.Updated, r.Reconcile.Deleted)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", r.Error)
	}
}

func printSummary(cmd *cobra.Command, store ladder.Store) error {
	sum, err := store.Summary(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to summarise store: %w", err)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "players\t%d\n", sum.Players)
	fmt.Fprintf(tw, "  with global id\t%d\n", sum.PlayersWithIdentifier)
	fmt.Fprintf(tw, "  without global id\t%d\n", sum.PlayersWithoutIdentifier)
	fmt.Fprintf(tw, "match refs\t%d\n", sum.MatchRefs)
	fmt.Fprintf(tw, "match details\t%d\n", sum.MatchDetails)
	fmt.Fprintf(tw, "  matches without detail\t%d\n", sum.MatchesWithoutDetail)
	for _, c := range sum.ByRegionTier {
		fmt.Fprintf(tw, "%s %s\t%d\n", c.Region, c.Tier, c.Count)
	}
	return tw.Flush()
}

// Remote commands talk to a running harvester server.

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Trigger or inspect a running harvester server",
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health")
	},
}

var remoteSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Get the store summary and cumulative counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/summary")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics")
	},
}

var remoteRunCmd = &cobra.Command{
	Use:       "run <roster|identifiers|matches|details|all>",
	Short:     "Trigger a stage run on the server and wait for its reports",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"roster", "identifiers", "matches", "details", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		query.Set("wait", "true")
		if batches != "" {
			query.Set("batches", batches)
		}
		if dryRun {
			query.Set("dry_run", "true")
		}
		if verbose {
			query.Set("verbose", "true")
		}
		if !withRoster {
			query.Set("roster", "false")
		}
		return performRequest(http.MethodPost, "/run/"+url.PathEscape(args[0])+"?"+query.Encode())
	},
}

func performRequest(method, endpoint string) error {
	target := host + endpoint
	fmt.Printf("Making request to %s\n", target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
