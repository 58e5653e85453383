package rating

import (
	"context"
	"database/sql"
	"sync"
)

// store handles all database operations for ratings and teams.
type store struct {
	db           *sql.DB
	mu           sync.RWMutex
	initialMu    float64
	initialSigma float64
	order        PairOrder
}

// Rating is the persisted skill estimate for a player or team.
type Rating struct {
	EntityID    string  `json:"entity_id"`
	Mu          float64 `json:"mu"`
	Sigma       float64 `json:"sigma"`
	GamesPlayed int     `json:"games_played"`
}

// Team is the canonical record for an unordered pair of players.
// PlayerA always precedes PlayerB under the store's pair ordering.
type Team struct {
	ID      string `json:"id"`
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
}

// PlayerRanking is one leaderboard row.
type PlayerRanking struct {
	PlayerID    string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	Mu          float64 `json:"mu"`
	Sigma       float64 `json:"sigma"`
	GamesPlayed int     `json:"games_played"`
}

// PairOrder is the total, stable ordering used to canonicalize a pair of
// player identifiers. It must be symmetric: the same two IDs in either
// order produce the same result.
type PairOrder func(a, b string) (first, second string)

// LexicalPairOrder orders a pair by byte order of the identifiers.
func LexicalPairOrder(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Store methods that take a Querier participate in whatever transaction
// the caller supplies.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
