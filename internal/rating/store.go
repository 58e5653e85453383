package rating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/smashmate/smashmate/internal/config"
)

// New creates a new RatingStore. The order function controls team
// canonicalization; pass nil for the default lexical ordering.
func New(db *sql.DB, cfg config.RatingConfig, order PairOrder) RatingStore {
	if order == nil {
		order = LexicalPairOrder
	}
	return &store{
		db:           db,
		initialMu:    cfg.InitialMu,
		initialSigma: cfg.InitialSigma,
		order:        order,
	}
}

func (s *store) GetRating(ctx context.Context, q Querier, entityID string) (Rating, error) {
	if q == nil {
		q = s.db
	}
	r := Rating{EntityID: entityID}
	err := q.QueryRowContext(ctx,
		"SELECT mu, sigma, games_played FROM ratings WHERE entity_id = ?", entityID,
	).Scan(&r.Mu, &r.Sigma, &r.GamesPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		return Rating{EntityID: entityID, Mu: s.initialMu, Sigma: s.initialSigma}, nil
	}
	if err != nil {
		return Rating{}, fmt.Errorf("failed to read rating for %s: %w", entityID, err)
	}
	return r, nil
}

func (s *store) PutRating(ctx context.Context, q Querier, r Rating) error {
	if q == nil {
		q = s.db
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO ratings (entity_id, mu, sigma, games_played)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			mu = excluded.mu,
			sigma = excluded.sigma,
			games_played = excluded.games_played
	`, r.EntityID, r.Mu, r.Sigma, r.GamesPlayed)
	if err != nil {
		return fmt.Errorf("failed to write rating for %s: %w", r.EntityID, err)
	}
	return nil
}

func (s *store) GetOrCreateTeam(ctx context.Context, q Querier, playerA, playerB string) (Team, error) {
	if q == nil {
		q = s.db
	}
	first, second := s.order(playerA, playerB)
	if first == second {
		return Team{}, fmt.Errorf("a team requires two distinct players, got %s twice", first)
	}

	// INSERT OR IGNORE keeps this race-free under the unique pair
	// constraint: the losing writer falls through to the SELECT.
	id := uuid.NewString()
	if _, err := q.ExecContext(ctx,
		"INSERT OR IGNORE INTO teams (id, player_a, player_b) VALUES (?, ?, ?)",
		id, first, second,
	); err != nil {
		return Team{}, fmt.Errorf("failed to create team (%s, %s): %w", first, second, err)
	}

	team := Team{PlayerA: first, PlayerB: second}
	err := q.QueryRowContext(ctx,
		"SELECT id FROM teams WHERE player_a = ? AND player_b = ?", first, second,
	).Scan(&team.ID)
	if err != nil {
		return Team{}, fmt.Errorf("failed to read team (%s, %s): %w", first, second, err)
	}
	return team, nil
}

func (s *store) GetTeam(ctx context.Context, playerA, playerB string) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	first, second := s.order(playerA, playerB)
	team := Team{PlayerA: first, PlayerB: second}
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM teams WHERE player_a = ? AND player_b = ?", first, second,
	).Scan(&team.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read team (%s, %s): %w", first, second, err)
	}
	return &team, nil
}

func (s *store) PlayerRating(ctx context.Context, playerID string) (Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var canonical string
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(linked_player_id, id) FROM players WHERE id = ?", playerID,
	).Scan(&canonical)
	if errors.Is(err, sql.ErrNoRows) {
		canonical = playerID
	} else if err != nil {
		return Rating{}, fmt.Errorf("failed to resolve player %s: %w", playerID, err)
	}
	return s.GetRating(ctx, s.db, canonical)
}

func (s *store) TopPlayers(ctx context.Context, limit, minGames int) ([]PlayerRanking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.display_name, r.mu, r.sigma, r.games_played
		FROM ratings r
		JOIN players p ON p.id = r.entity_id
		WHERE p.linked_player_id IS NULL AND r.games_played >= ?
		ORDER BY r.mu DESC, r.games_played ASC, p.id ASC
		LIMIT ?
	`, minGames, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var rankings []PlayerRanking
	for rows.Next() {
		var pr PlayerRanking
		if err := rows.Scan(&pr.PlayerID, &pr.DisplayName, &pr.Mu, &pr.Sigma, &pr.GamesPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		rankings = append(rankings, pr)
	}
	return rankings, rows.Err()
}
