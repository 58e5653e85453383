package compat

import (
	"database/sql"
	"errors"
)

// engine answers compatibility and ranking queries. It holds no derived
// state: every answer is recomputed from the current rating rows.
type engine struct {
	db      *sql.DB
	players playerResolver
	ratings ratingReader
}

// ErrNoHistory signals a compatibility query for a pair that has never
// played together. It is a query-result state, not a failure.
var ErrNoHistory = errors.New("no games played together")

// PairScore is the compatibility verdict for one specific pair.
type PairScore struct {
	PlayerA         string  `json:"player_a"`
	PlayerB         string  `json:"player_b"`
	TeamID          string  `json:"team_id"`
	TeamMu          float64 `json:"team_rating"`
	AvgIndividualMu float64 `json:"avg_individual_rating"`
	Score           float64 `json:"compatibility_score"`
	GamesPlayed     int     `json:"games_played_together"`
}

// PartnerScore is one row of a player's compatibility listing across all
// partners they have history with.
type PartnerScore struct {
	PartnerID       string  `json:"partner_id"`
	PartnerName     string  `json:"partner_name"`
	TeamMu          float64 `json:"team_rating"`
	AvgIndividualMu float64 `json:"avg_individual_rating"`
	Score           float64 `json:"compatibility_score"`
	GamesTogether   int     `json:"games_played_together"`
}

// Recommendation is a suggested partner the subject has little or no
// team history with yet.
type Recommendation struct {
	PartnerID   string  `json:"partner_id"`
	PartnerName string  `json:"partner_name"`
	Projected   float64 `json:"projected_compatibility"`
	CombinedMu  float64 `json:"combined_rating"`
}

// TeamRanking is one row of the team leaderboard.
type TeamRanking struct {
	TeamID      string  `json:"team_id"`
	PlayerA     string  `json:"player_a"`
	PlayerB     string  `json:"player_b"`
	Mu          float64 `json:"team_rating"`
	GamesPlayed int     `json:"games_played"`
}
