package player

import (
	"context"

	"github.com/smashmate/smashmate/internal/rating"
)

// PlayerStore defines the interface for player identity management and
// alias linking.
type PlayerStore interface {
	// UpsertPlayer registers or refreshes a real player.
	UpsertPlayer(ctx context.Context, id, ownerID, displayName string) error
	// CreateFakePlayer creates an owner-managed placeholder player.
	CreateFakePlayer(ctx context.Context, ownerID, displayName string) (Player, error)
	// GetPlayer returns a player by ID, ErrNotFound when absent.
	GetPlayer(ctx context.Context, id string) (Player, error)
	// LinkPlayer points a fake player at its real counterpart. The target
	// must be unlinked; history referencing the fake is left untouched.
	LinkPlayer(ctx context.Context, fakeID, targetID string) error
	// Resolve follows at most one link hop and returns the canonical
	// identity for rating purposes. Unknown IDs resolve to themselves.
	Resolve(ctx context.Context, q rating.Querier, playerID string) (string, error)
}
