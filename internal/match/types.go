package match

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smashmate/smashmate/internal/metrics"
	"github.com/smashmate/smashmate/internal/player"
	"github.com/smashmate/smashmate/internal/rating"
	"github.com/smashmate/smashmate/internal/trueskill"
)

// recorder orchestrates match submission end-to-end.
type recorder struct {
	db      *sql.DB
	mu      sync.Mutex
	players player.PlayerStore
	ratings rating.RatingStore
	skill   *trueskill.Updater
	metrics metrics.Metrics
}

// Match status values. A match enters the store confirmed; pending exists
// for submissions awaiting opponent sign-off.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
)

// SetScore is the score of a single set.
type SetScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Participant ties a match to one of its four players.
type Participant struct {
	PlayerID string `json:"player_id"`
	TeamNo   int    `json:"team"`
	IsWinner bool   `json:"is_winner"`
}

// Match is a recorded game outcome.
type Match struct {
	ID           string        `json:"id"`
	VenueID      string        `json:"venue_id"`
	PlayedAt     time.Time     `json:"played_at"`
	CreatedBy    string        `json:"created_by"`
	Scores       []SetScore    `json:"scores"`
	Status       string        `json:"status"`
	Version      int           `json:"version"`
	Participants []Participant `json:"players"`
}

// NewMatch is a match submission.
type NewMatch struct {
	VenueID   string     `json:"venue_id"`
	PlayedAt  time.Time  `json:"played_at"`
	Team1     [2]string  `json:"team1_players"`
	Team2     [2]string  `json:"team2_players"`
	Scores    []SetScore `json:"scores"`
	CreatedBy string     `json:"created_by"`
}

var (
	// ErrValidation is returned for malformed submissions: wrong roster
	// shape, repeated players or an undecidable set score.
	ErrValidation = errors.New("invalid match submission")
	// ErrNotFound is returned when the referenced match does not exist.
	ErrNotFound = errors.New("match not found")
	// ErrVersionConflict is returned when a match edit carries a stale
	// version; the stored match is left untouched.
	ErrVersionConflict = errors.New("match version conflict")
)

// VersionConflictError carries the current version so the caller can
// refetch and retry.
type VersionConflictError struct {
	MatchID        string
	CurrentVersion int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("match %s version conflict: current version is %d", e.MatchID, e.CurrentVersion)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }
