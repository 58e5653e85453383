package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/smashmate/smashmate/internal/rating"
)

// New creates a new PlayerStore.
func New(db *sql.DB) PlayerStore {
	return &store{db: db}
}

func (s *store) UpsertPlayer(ctx context.Context, id, ownerID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, owner_id, display_name, is_fake)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id,
			display_name = excluded.display_name
	`, id, ownerID, displayName)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", id, err)
	}
	return nil
}

func (s *store) CreateFakePlayer(ctx context.Context, ownerID, displayName string) (Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Player{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		DisplayName: displayName,
		IsFake:      true,
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO players (id, owner_id, display_name, is_fake) VALUES (?, ?, ?, 1)",
		p.ID, p.OwnerID, p.DisplayName)
	if err != nil {
		return Player{}, fmt.Errorf("failed to create fake player: %w", err)
	}
	log.Info("Created fake player", "playerID", p.ID, "ownerID", ownerID)
	return p, nil
}

func (s *store) GetPlayer(ctx context.Context, id string) (Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getPlayer(ctx, s.db, id)
}

func (s *store) getPlayer(ctx context.Context, q rating.Querier, id string) (Player, error) {
	var p Player
	var isFake int
	err := q.QueryRowContext(ctx,
		"SELECT id, owner_id, display_name, is_fake, linked_player_id FROM players WHERE id = ?", id,
	).Scan(&p.ID, &p.OwnerID, &p.DisplayName, &isFake, &p.LinkedPlayerID)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Player{}, fmt.Errorf("failed to read player %s: %w", id, err)
	}
	p.IsFake = isFake != 0
	return p, nil
}

// LinkPlayer validates and applies a one-hop alias link inside a single
// transaction so a concurrent link to the same target cannot slip in
// between the checks and the write.
func (s *store) LinkPlayer(ctx context.Context, fakeID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fakeID == targetID {
		return fmt.Errorf("%w: %s cannot link to itself", ErrLinkCycle, fakeID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin link transaction: %w", err)
	}
	defer tx.Rollback()

	fake, err := s.getPlayer(ctx, tx, fakeID)
	if err != nil {
		return err
	}
	target, err := s.getPlayer(ctx, tx, targetID)
	if err != nil {
		return err
	}

	if fake.LinkedPlayerID != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyLinked, fakeID)
	}
	// The source must not be anyone's link target either, or the
	// existing inbound link would become a two-hop chain that one-hop
	// resolution can never follow to its end.
	var inbound int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM players WHERE linked_player_id = ?", fakeID,
	).Scan(&inbound); err != nil {
		return fmt.Errorf("failed to check inbound links for %s: %w", fakeID, err)
	}
	if inbound > 0 {
		return fmt.Errorf("%w: %s is the link target of another player", ErrAlreadyLinked, fakeID)
	}
	if target.LinkedPlayerID != nil {
		// Chains deeper than one hop are not allowed, which also rules
		// out any cycle longer than a self-link.
		if *target.LinkedPlayerID == fakeID {
			return fmt.Errorf("%w: %s already links to %s", ErrLinkCycle, targetID, fakeID)
		}
		return fmt.Errorf("%w: target %s", ErrAlreadyLinked, targetID)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE players SET linked_player_id = ? WHERE id = ?", targetID, fakeID,
	); err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", fakeID, targetID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit link: %w", err)
	}
	log.Info("Linked player", "fakeID", fakeID, "targetID", targetID)
	return nil
}

func (s *store) Resolve(ctx context.Context, q rating.Querier, playerID string) (string, error) {
	if q == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		q = s.db
	}
	var canonical string
	err := q.QueryRowContext(ctx,
		"SELECT COALESCE(linked_player_id, id) FROM players WHERE id = ?", playerID,
	).Scan(&canonical)
	if errors.Is(err, sql.ErrNoRows) {
		return playerID, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve player %s: %w", playerID, err)
	}
	return canonical, nil
}
