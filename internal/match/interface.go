package match

import "context"

// Recorder defines the interface for recording and editing matches.
type Recorder interface {
	// RecordMatch validates a submission, runs the skill update and
	// persists match, participants and all six touched ratings as one
	// atomic unit.
	RecordMatch(ctx context.Context, submission NewMatch) (*Match, error)
	// UpdateMatch revises the scores of an existing match under
	// optimistic concurrency. Winner flags are recomputed; ratings are
	// intentionally not re-run.
	UpdateMatch(ctx context.Context, matchID string, expectedVersion int, scores []SetScore) (*Match, error)
	// GetMatch returns a single match with its participants.
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	// PlayerMatches returns every match a player participated in,
	// newest first.
	PlayerMatches(ctx context.Context, playerID string) ([]*Match, error)
	// VenueMatches returns every match played at a venue, newest first.
	VenueMatches(ctx context.Context, venueID string) ([]*Match, error)
}
