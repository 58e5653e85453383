package compat

import (
	"context"

	"github.com/smashmate/smashmate/internal/rating"
)

// CompatibilityEngine defines the read-only interface for compatibility
// and ranking queries.
type CompatibilityEngine interface {
	// CompatibilityScore computes team mean minus the average of the two
	// members' individual means. ErrNoHistory when the pair has never
	// played together.
	CompatibilityScore(ctx context.Context, playerA, playerB string) (*PairScore, error)
	// PartnerScores lists the subject's compatibility with every partner
	// they have team history with, best pairing first.
	PartnerScores(ctx context.Context, playerID string) ([]PartnerScore, error)
	// RecommendedPartners suggests players the subject has not teamed
	// with yet, or has fewer than minGames games with.
	RecommendedPartners(ctx context.Context, playerID string, limit, minGames int) ([]Recommendation, error)
	// TeamRankings returns teams with at least one game, best first.
	TeamRankings(ctx context.Context, limit int) ([]TeamRanking, error)
}

// playerResolver is the part of the player store the engine needs.
type playerResolver interface {
	Resolve(ctx context.Context, q rating.Querier, playerID string) (string, error)
}

// ratingReader is the part of the rating store the engine needs.
type ratingReader interface {
	GetRating(ctx context.Context, q rating.Querier, entityID string) (rating.Rating, error)
	GetTeam(ctx context.Context, playerA, playerB string) (*rating.Team, error)
}
