package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/muh-hamada/german-telc-b1-sub000/analytics"
	"github.com/muh-hamada/german-telc-b1-sub000/config"
	"github.com/muh-hamada/german-telc-b1-sub000/database"
)

// snapshotd only talks to Mongo, so its contract is the Mongo subset of the
// server's .env.example (no PORT / JWT_SECRET required here).
const envContract = `NODE_ENV=
MONGO_URI=
MONGO_DB_CONTENT=
MONGO_DB_APP=
MONGO_DB_APP_DEV=
`

var (
	env     string
	appID   string
	dryRun  bool
	timeout time.Duration
)

// snapshotd is the daily snapshot writer: it recomputes the analytics
// aggregate for every known app and upserts one daily_snapshots document per
// app under today's YYYY-MM-DD date. The API server never writes snapshots;
// this binary is the only writer and is scheduled once per day.
func main() {
	flag.StringVar(&env, "env", "development", "Environment to run against (development/production)")
	flag.StringVar(&appID, "app", "", "Only snapshot a single app ID (default: all known apps)")
	flag.BoolVar(&dryRun, "dry-run", false, "Compute aggregates but skip the snapshot writes")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall run timeout")
	flag.Parse()

	// Load env vars
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env vars")
	}
	os.Setenv("NODE_ENV", env)

	config.Init(envContract)
	database.ConnectMongoDB()

	svc := analytics.NewService(database.NewMongoStore())

	apps := svc.AppIDs()
	if appID != "" {
		apps = []string{appID}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	today := time.Now().Format("2006-01-02")
	log.Printf("🚀 Writing daily snapshots for %s (%d apps, dry-run=%v)", today, len(apps), dryRun)

	failures := 0
	for _, app := range apps {
		data, err := svc.GetAnalytics(ctx, app, true)
		if err != nil {
			log.Printf("❌ %s: aggregation failed: %v", app, err)
			failures++
			continue
		}

		if dryRun {
			log.Printf("   %s: %d users (dry run, not written)", app, data.TotalUsers)
			continue
		}

		if err := database.AppCollections.Snapshots.UpsertSnapshot(ctx, app, today, *data); err != nil {
			log.Printf("❌ %s: snapshot write failed: %v", app, err)
			failures++
			continue
		}
		log.Printf("✅ %s: snapshot written (%d users)", app, data.TotalUsers)
	}

	if failures > 0 {
		log.Fatalf("Finished with %d failures", failures)
	}
	log.Println("✅ All snapshots written")
}
