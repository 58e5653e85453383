package rating

import "context"

// RatingStore defines the interface for reading and writing skill ratings
// and canonical team records.
type RatingStore interface {
	// GetRating returns the stored rating for a player or team, or the
	// configured initial rating if the entity has never been rated.
	GetRating(ctx context.Context, q Querier, entityID string) (Rating, error)
	// PutRating upserts a rating row.
	PutRating(ctx context.Context, q Querier, r Rating) error
	// GetOrCreateTeam canonicalizes the pair and returns the single team
	// record for it, creating the row on first use.
	GetOrCreateTeam(ctx context.Context, q Querier, playerA, playerB string) (Team, error)
	// GetTeam returns the team for a pair, or nil when the two players
	// have never played together.
	GetTeam(ctx context.Context, playerA, playerB string) (*Team, error)
	// PlayerRating reads a player's rating, following a one-hop link to
	// the player's canonical identity first.
	PlayerRating(ctx context.Context, playerID string) (Rating, error)
	// TopPlayers returns the individual leaderboard ordered by mean
	// descending. Linked (merged-away) players are excluded.
	TopPlayers(ctx context.Context, limit, minGames int) ([]PlayerRanking, error)
}
