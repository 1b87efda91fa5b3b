package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/ladder-harvester/internal/config"
	"github.com/mauv0809/ladder-harvester/internal/database"
	"github.com/mauv0809/ladder-harvester/internal/ladder"
	"github.com/mauv0809/ladder-harvester/internal/riot"
)

// The seeder fills a store with a synthetic ladder so the stages and the summary can be
// exercised without an API key. Each stage is left partly done.
func main() {
	numPlayers := flag.Int("players", 400, "number of players to seed")
	dbPath := flag.String("db", "", "path of the SQLite store (overrides DB_NAME)")
	flag.Parse()

	log.Info("Starting database seeder...")
	cfg, err := config.LoadForStore()
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}
	if *dbPath != "" {
		cfg.DBName = *dbPath
	}

	db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}
	defer teardown()

	ctx := context.Background()
	store := ladder.New(db)
	now := time.Now().UTC()
	startTime := time.Now()

	regions := []riot.Region{riot.RegionEUW, riot.RegionEUNE, riot.RegionKR, riot.RegionNA}
	players := make([]riot.PlayerRecord, 0, *numPlayers)
	for i := 0; i < *numPlayers; i++ {
		tier := riot.TierGrandmaster
		if i%3 == 0 {
			tier = riot.TierChallenger
		}
		players = append(players, riot.PlayerRecord{
			SourcePlayerID: fmt.Sprintf("seed-%05d", i),
			RankTier:       tier,
			Region:         regions[i%len(regions)],
		})
	}
	stats, err := store.ReconcilePlayers(ctx, players, now.Add(-48*time.Hour))
	if err != nil {
		log.Fatal("Failed to seed players", "error", err)
	}
	log.Info("Seeded players", "inserted", stats.Inserted, "updated", stats.Updated, "deleted", stats.Deleted)

	// Three quarters of the players get a global id, a third of those get match refs and
	// half of the refs get details.
	var ids []ladder.IdentifierResult
	for i, p := range players {
		if i%4 == 3 {
			continue
		}
		ids = append(ids, ladder.IdentifierResult{SourcePlayerID: p.SourcePlayerID, Region: p.Region, GlobalID: uuid.NewString()})
	}
	resolved, err := store.SetGlobalIDs(ctx, ids, now.Add(-24*time.Hour))
	if err != nil {
		log.Fatal("Failed to seed global ids", "error", err)
	}

	var refs []ladder.MatchRef
	for i, id := range ids {
		if i%3 != 0 {
			continue
		}
		for j := 0; j < 1+rand.Intn(5); j++ {
			refs = append(refs, ladder.MatchRef{
				MatchID:       fmt.Sprintf("%s_%d", id.Region, 7_000_000_000+rand.Int63n(1_000_000_000)),
				OwnerGlobalID: id.GlobalID,
				Region:        id.Region,
				CreatedAt:     now.Add(-time.Duration(rand.Intn(24)) * time.Hour),
			})
		}
	}
	written, err := store.InsertMatchRefs(ctx, refs)
	if err != nil {
		log.Fatal("Failed to seed match refs", "error", err)
	}

	var details []ladder.MatchDetail
	for i, ref := range refs {
		if i%2 != 0 {
			continue
		}
		start := ref.CreatedAt.Add(-time.Hour)
		winner := 100
		if rand.Intn(2) == 0 {
			winner = 200
		}
		details = append(details, ladder.MatchDetail{
			MatchID:           ref.MatchID,
			DurationSeconds:   int64(900 + rand.Intn(1500)),
			GameVersion:       "14.9.584.6622",
			QueueID:           420,
			WinningTeamID:     winner,
			HadEarlySurrender: rand.Intn(10) == 0,
			StartTimestamp:    start.UnixMilli(),
			CreatedAt:         now,
		})
	}
	detailed, err := store.InsertMatchDetails(ctx, details)
	if err != nil {
		log.Fatal("Failed to seed match details", "error", err)
	}

	log.Info("Seeding finished",
		"global_ids", resolved,
		"match_refs", written,
		"match_details", detailed,
		"duration", time.Since(startTime),
	)
}
