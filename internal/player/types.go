package player

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for player identities.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Player is an identity unit for rating purposes. A fake player is a
// placeholder managed by its owner on someone else's behalf; once linked,
// rating reads for it redirect to the linked player.
type Player struct {
	ID             string  `json:"id"`
	OwnerID        string  `json:"owner_id"`
	DisplayName    string  `json:"display_name"`
	IsFake         bool    `json:"is_fake"`
	LinkedPlayerID *string `json:"linked_player_id,omitempty"`
}

var (
	// ErrNotFound is returned when a referenced player does not exist.
	ErrNotFound = errors.New("player not found")
	// ErrAlreadyLinked is returned when either side of a link request is
	// already linked; only unlinked players may participate in a link.
	ErrAlreadyLinked = errors.New("player is already linked")
	// ErrLinkCycle is returned when a link would point a player at itself.
	ErrLinkCycle = errors.New("link would create a cycle")
)
