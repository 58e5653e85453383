package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}
	getEnvFloat := func(key string, fallback float64) float64 {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Fatalf("Error: Environment variable %s is not a valid float: %s", key, value)
		}
		return f
	}
	getEnvInt := func(key string, fallback int) int {
		value, ok := os.LookupEnv(key)
		if !ok {
			return fallback
		}
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Fatalf("Error: Environment variable %s is not a valid integer: %s", key, value)
		}
		return i
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: "./migrations",
		Port:          getEnv("PORT"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL"),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN"),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		Rating: RatingConfig{
			InitialMu:    getEnvFloat("RATING_INITIAL_MU", 25.0),
			InitialSigma: getEnvFloat("RATING_INITIAL_SIGMA", 25.0/3.0),
		},
		Recommend: RecommendConfig{
			MinGames: getEnvInt("RECOMMEND_MIN_GAMES", 3),
			Limit:    getEnvInt("RECOMMEND_LIMIT", 5),
		},
	}
	return cfg
}
