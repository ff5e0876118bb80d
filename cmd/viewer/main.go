package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mix-lab/internal"
	"mix-lab/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
)

// Config keeps the viewer independent from the master's required
// variables : browsing a store needs no API key.
type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	DebugPort      int    `env:"DEBUG_PORT,default=8082"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (Master) holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Start Debug Server Only
	// A tiny stats provider, since no manager is running here
	viewerStats := func() map[string]any {
		return map[string]any{
			"status": "Viewer Mode (Read-Only)",
			"time":   time.Now().Format(time.RFC822),
		}
	}

	fmt.Printf("🌐 Viewer started at http://localhost:%d/inspect\n", config.DebugPort)

	internal.StartDebugServer(db, config.DebugPort, "/inspect", SessionMapper, viewerStats)

	// Blocks until someone hits /resume, keeping the page alive.
	internal.Wait("sess:")
}

// Copy of the master's SessionMapper to keep the viewer independent
func SessionMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var record repositories.SessionRecord
	if err := json.Unmarshal(val, &record); err != nil {
		row.Detail = "Error: decode failed"
		return row
	}

	row.Type = record.State
	row.Namespace = record.GuildID + ":" + record.ChannelID
	row.Detail = fmt.Sprintf("%d/%d players", len(record.Roster), record.Capacity)

	if len(record.TeamA) > 0 {
		totalA, totalB := 0, 0
		for _, p := range record.TeamA {
			totalA += p.Rating
		}
		for _, p := range record.TeamB {
			totalB += p.Rating
		}
		gap := totalA - totalB
		if gap < 0 {
			gap = -gap
		}
		row.Scores = fmt.Sprintf("A:%d B:%d gap:%d", totalA, totalB, gap)
	}
	return row
}
