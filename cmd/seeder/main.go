package main

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/smashmate/smashmate/internal/config"
	"github.com/smashmate/smashmate/internal/database"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/metrics"
	"github.com/smashmate/smashmate/internal/player"
	"github.com/smashmate/smashmate/internal/rating"
	"github.com/smashmate/smashmate/internal/trueskill"
)

type seedPlayer struct {
	id   string
	name string
}

// Simplified config loading for the script
func loadEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func main() {
	log.Info("Starting database seeder...")
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName := loadEnv("DB_NAME", "smashmate.db")
	migrationsDir := loadEnv("MIGRATIONS_DIR", "migrations")

	db, teardown, err := database.InitDB(dbName, "", "", migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	log.Info("Successfully connected to the database.", "db", dbName)

	players := player.New(db)
	ratingCfg := config.RatingConfig{InitialMu: 25.0, InitialSigma: 25.0 / 3.0}
	ratings := rating.New(db, ratingCfg, nil)
	recorder := match.New(db, players, ratings, trueskill.New(ratingCfg.InitialMu, ratingCfg.InitialSigma), metrics.NewMock())

	ctx := context.Background()

	roster := []seedPlayer{
		{id: "player-1", name: "Seeder Player A"},
		{id: "player-2", name: "Seeder Player B"},
		{id: "player-3", name: "Seeder Player C"},
		{id: "player-4", name: "Seeder Player D"},
		{id: "player-5", name: "Seeder Player E"},
		{id: "player-6", name: "Seeder Player F"},
	}
	for _, p := range roster {
		if err := players.UpsertPlayer(ctx, p.id, p.id, p.name); err != nil {
			log.Fatalf("Failed to insert dummy player %s: %s", p.name, err)
		}
	}
	log.Info("Ensured dummy players exist.", "count", len(roster))

	venues := []string{"hall-a", "hall-b", "community-center"}
	const numMatches = 200

	log.Info("Preparing to record dummy matches...", "total", numMatches)
	startTime := time.Now()

	for i := 0; i < numMatches; i++ {
		// Draw four distinct players per match.
		perm := rand.Perm(len(roster))[:4]
		playedAt := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour)

		submission := match.NewMatch{
			VenueID:   venues[rand.Intn(len(venues))],
			PlayedAt:  playedAt,
			Team1:     [2]string{roster[perm[0]].id, roster[perm[1]].id},
			Team2:     [2]string{roster[perm[2]].id, roster[perm[3]].id},
			Scores:    randomScores(),
			CreatedBy: roster[perm[0]].id,
		}

		if _, err := recorder.RecordMatch(ctx, submission); err != nil {
			log.Fatalf("Failed to record dummy match: %s", err)
		}

		if (i+1)%50 == 0 || (i+1) == numMatches {
			log.Info("Recorded matches", "completed", i+1, "total", numMatches)
		}
	}

	duration := time.Since(startTime)
	log.Info("Successfully recorded all dummy matches.", "duration", duration)
}

// randomScores produces a decided best-of-three badminton scoreline.
func randomScores() []match.SetScore {
	winnerFirst := rand.Intn(2) == 0
	sets := []match.SetScore{}
	for i := 0; i < 2; i++ {
		loserPoints := rand.Intn(20)
		set := match.SetScore{Team1: 21, Team2: loserPoints}
		if !winnerFirst {
			set = match.SetScore{Team1: loserPoints, Team2: 21}
		}
		sets = append(sets, set)
	}
	return sets
}
