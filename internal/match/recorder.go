package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/smashmate/smashmate/internal/metrics"
	"github.com/smashmate/smashmate/internal/player"
	"github.com/smashmate/smashmate/internal/rating"
	"github.com/smashmate/smashmate/internal/trueskill"
)

// New creates a new match Recorder.
func New(db *sql.DB, players player.PlayerStore, ratings rating.RatingStore, skill *trueskill.Updater, m metrics.Metrics) Recorder {
	return &recorder{
		db:      db,
		players: players,
		ratings: ratings,
		skill:   skill,
		metrics: m,
	}
}

func (r *recorder) RecordMatch(ctx context.Context, sub NewMatch) (*Match, error) {
	start := time.Now()

	if err := validateRoster(sub.Team1, sub.Team2); err != nil {
		return nil, err
	}
	team1Won, err := deriveWinner(sub.Scores)
	if err != nil {
		return nil, err
	}

	// One writer at a time: the read-compute-write cycle over shared
	// rating rows must not interleave with another recording.
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	roster := []string{sub.Team1[0], sub.Team1[1], sub.Team2[0], sub.Team2[1]}
	for _, id := range roster {
		// Players submitted before they ever registered get a row so the
		// participant foreign keys hold.
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO players (id, owner_id, display_name, is_fake) VALUES (?, ?, ?, 0)",
			id, sub.CreatedBy, id,
		); err != nil {
			return nil, fmt.Errorf("failed to register player %s: %w", id, err)
		}
	}

	// Rating lookups go through each player's canonical identity.
	canonical := make(map[string]string, 4)
	for _, id := range roster {
		res, err := r.players.Resolve(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		canonical[id] = res
	}
	seen := make(map[string]string, 4)
	for _, id := range roster {
		if prev, ok := seen[canonical[id]]; ok {
			return nil, fmt.Errorf("%w: players %s and %s share the same identity", ErrValidation, prev, id)
		}
		seen[canonical[id]] = id
	}

	c1a, c1b := canonical[sub.Team1[0]], canonical[sub.Team1[1]]
	c2a, c2b := canonical[sub.Team2[0]], canonical[sub.Team2[1]]

	team1, err := r.ratings.GetOrCreateTeam(ctx, tx, c1a, c1b)
	if err != nil {
		return nil, err
	}
	team2, err := r.ratings.GetOrCreateTeam(ctx, tx, c2a, c2b)
	if err != nil {
		return nil, err
	}

	entities := []string{c1a, c1b, c2a, c2b, team1.ID, team2.ID}
	current := make([]rating.Rating, len(entities))
	for i, id := range entities {
		if current[i], err = r.ratings.GetRating(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	side1 := []trueskill.Rating{toSkill(current[0]), toSkill(current[1])}
	side2 := []trueskill.Rating{toSkill(current[2]), toSkill(current[3])}
	teamSide1 := []trueskill.Rating{toSkill(current[4])}
	teamSide2 := []trueskill.Rating{toSkill(current[5])}

	var newSide1, newSide2, newTeam1, newTeam2 []trueskill.Rating
	if team1Won {
		newSide1, newSide2 = r.skill.Rate(side1, side2)
		newTeam1, newTeam2 = r.skill.Rate(teamSide1, teamSide2)
	} else {
		newSide2, newSide1 = r.skill.Rate(side2, side1)
		newTeam2, newTeam1 = r.skill.Rate(teamSide2, teamSide1)
	}

	updated := []trueskill.Rating{newSide1[0], newSide1[1], newSide2[0], newSide2[1], newTeam1[0], newTeam2[0]}
	for i, id := range entities {
		next := rating.Rating{
			EntityID:    id,
			Mu:          updated[i].Mu,
			Sigma:       updated[i].Sigma,
			GamesPlayed: current[i].GamesPlayed + 1,
		}
		if err := r.ratings.PutRating(ctx, tx, next); err != nil {
			return nil, err
		}
	}

	scoresJSON, err := json.Marshal(sub.Scores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scores: %w", err)
	}

	m := &Match{
		ID:        uuid.NewString(),
		VenueID:   sub.VenueID,
		PlayedAt:  sub.PlayedAt,
		CreatedBy: sub.CreatedBy,
		Scores:    sub.Scores,
		Status:    StatusConfirmed,
		Version:   1,
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO matches (id, venue_id, played_at, created_by, scores_json, status, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.VenueID, m.PlayedAt.Unix(), m.CreatedBy, string(scoresJSON), m.Status, m.Version); err != nil {
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}

	// Participants keep the submitted identities; alias resolution is a
	// read-time concern and history stays attributed as played.
	m.Participants = []Participant{
		{PlayerID: sub.Team1[0], TeamNo: 1, IsWinner: team1Won},
		{PlayerID: sub.Team1[1], TeamNo: 1, IsWinner: team1Won},
		{PlayerID: sub.Team2[0], TeamNo: 2, IsWinner: !team1Won},
		{PlayerID: sub.Team2[1], TeamNo: 2, IsWinner: !team1Won},
	}
	for _, p := range m.Participants {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO match_participants (match_id, player_id, team_no, is_winner) VALUES (?, ?, ?, ?)",
			m.ID, p.PlayerID, p.TeamNo, p.IsWinner,
		); err != nil {
			return nil, fmt.Errorf("failed to insert participant %s: %w", p.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match: %w", err)
	}

	r.metrics.IncMatchesRecorded()
	r.metrics.ObserveRecordDuration(time.Since(start).Seconds())
	log.Info("Recorded match", "matchID", m.ID, "venueID", m.VenueID, "team1Won", team1Won)
	return m, nil
}

func (r *recorder) UpdateMatch(ctx context.Context, matchID string, expectedVersion int, scores []SetScore) (*Match, error) {
	team1Won, err := deriveWinner(scores)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx, "SELECT version FROM matches WHERE id = ?", matchID).Scan(&currentVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read match %s: %w", matchID, err)
	}
	if currentVersion != expectedVersion {
		r.metrics.IncVersionConflicts()
		return nil, &VersionConflictError{MatchID: matchID, CurrentVersion: currentVersion}
	}

	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scores: %w", err)
	}

	// Winner flags follow the revised scores. The skill update is NOT
	// re-run: ratings reflect the match as confirmed at recording time.
	if _, err := tx.ExecContext(ctx,
		"UPDATE matches SET scores_json = ?, version = version + 1 WHERE id = ?",
		string(scoresJSON), matchID,
	); err != nil {
		return nil, fmt.Errorf("failed to update match %s: %w", matchID, err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE match_participants SET is_winner = (team_no = 1) = ? WHERE match_id = ?",
		team1Won, matchID,
	); err != nil {
		return nil, fmt.Errorf("failed to update participants for %s: %w", matchID, err)
	}

	m, err := r.loadMatch(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit match edit: %w", err)
	}
	log.Info("Updated match scores", "matchID", matchID, "version", m.Version)
	return m, nil
}

func (r *recorder) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	return r.loadMatch(ctx, r.db, matchID)
}

func (r *recorder) PlayerMatches(ctx context.Context, playerID string) ([]*Match, error) {
	return r.listMatches(ctx, `
		SELECT m.id, m.venue_id, m.played_at, m.created_by, m.scores_json, m.status, m.version
		FROM matches m
		JOIN match_participants mp ON mp.match_id = m.id
		WHERE mp.player_id = ?
		ORDER BY m.played_at DESC
	`, playerID)
}

func (r *recorder) VenueMatches(ctx context.Context, venueID string) ([]*Match, error) {
	return r.listMatches(ctx, `
		SELECT id, venue_id, played_at, created_by, scores_json, status, version
		FROM matches
		WHERE venue_id = ?
		ORDER BY played_at DESC
	`, venueID)
}

func (r *recorder) listMatches(ctx context.Context, query, arg string) ([]*Match, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.Participants, err = r.loadParticipants(ctx, r.db, m.ID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (r *recorder) loadMatch(ctx context.Context, q rating.Querier, matchID string) (*Match, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, venue_id, played_at, created_by, scores_json, status, version
		FROM matches WHERE id = ?
	`, matchID)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
	}
	if err != nil {
		return nil, err
	}
	if m.Participants, err = r.loadParticipants(ctx, q, matchID); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *recorder) loadParticipants(ctx context.Context, q rating.Querier, matchID string) ([]Participant, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT player_id, team_no, is_winner FROM match_participants WHERE match_id = ? ORDER BY team_no, player_id",
		matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for %s: %w", matchID, err)
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.PlayerID, &p.TeamNo, &p.IsWinner); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var playedAt int64
	var scoresJSON string
	if err := scanner.Scan(&m.ID, &m.VenueID, &playedAt, &m.CreatedBy, &scoresJSON, &m.Status, &m.Version); err != nil {
		return nil, err
	}
	m.PlayedAt = time.Unix(playedAt, 0).UTC()
	if err := json.Unmarshal([]byte(scoresJSON), &m.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores for %s: %w", m.ID, err)
	}
	return &m, nil
}

func validateRoster(team1, team2 [2]string) error {
	if team1[0] == "" || team1[1] == "" || team2[0] == "" || team2[1] == "" {
		return fmt.Errorf("%w: every roster slot must name a player", ErrValidation)
	}
	seen := make(map[string]struct{}, 4)
	for _, id := range []string{team1[0], team1[1], team2[0], team2[1]} {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: player %s appears more than once", ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// deriveWinner counts decided sets. A set-count tie cannot be recorded.
func deriveWinner(scores []SetScore) (team1Won bool, err error) {
	if len(scores) == 0 {
		return false, fmt.Errorf("%w: at least one set score is required", ErrValidation)
	}
	var t1, t2 int
	for _, s := range scores {
		if s.Team1 < 0 || s.Team2 < 0 {
			return false, fmt.Errorf("%w: set scores cannot be negative", ErrValidation)
		}
		switch {
		case s.Team1 > s.Team2:
			t1++
		case s.Team2 > s.Team1:
			t2++
		}
	}
	if t1 == t2 {
		return false, fmt.Errorf("%w: set scores do not decide a winner", ErrValidation)
	}
	return t1 > t2, nil
}

func toSkill(r rating.Rating) trueskill.Rating {
	return trueskill.Rating{Mu: r.Mu, Sigma: r.Sigma}
}
