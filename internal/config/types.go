package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Slack         SlackConfig
	Turso         TursoConfig
	ProjectID     string
	Rating        RatingConfig
	Recommend     RecommendConfig
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// RatingConfig holds the prior used for never-seen players and teams.
type RatingConfig struct {
	InitialMu    float64
	InitialSigma float64
}

// RecommendConfig holds the defaults for partner recommendations.
type RecommendConfig struct {
	// Pairs with at least MinGames games together are no longer recommended.
	MinGames int
	Limit    int
}
