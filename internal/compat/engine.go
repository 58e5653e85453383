package compat

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
)

// New creates a new CompatibilityEngine reading the same store the match
// recorder writes.
func New(db *sql.DB, players playerResolver, ratings ratingReader) CompatibilityEngine {
	return &engine{db: db, players: players, ratings: ratings}
}

func (e *engine) CompatibilityScore(ctx context.Context, playerA, playerB string) (*PairScore, error) {
	a, err := e.players.Resolve(ctx, nil, playerA)
	if err != nil {
		return nil, err
	}
	b, err := e.players.Resolve(ctx, nil, playerB)
	if err != nil {
		return nil, err
	}

	team, err := e.ratings.GetTeam(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, fmt.Errorf("%w: %s and %s", ErrNoHistory, playerA, playerB)
	}

	teamRating, err := e.ratings.GetRating(ctx, nil, team.ID)
	if err != nil {
		return nil, err
	}
	if teamRating.GamesPlayed == 0 {
		return nil, fmt.Errorf("%w: %s and %s", ErrNoHistory, playerA, playerB)
	}
	ra, err := e.ratings.GetRating(ctx, nil, a)
	if err != nil {
		return nil, err
	}
	rb, err := e.ratings.GetRating(ctx, nil, b)
	if err != nil {
		return nil, err
	}

	avg := (ra.Mu + rb.Mu) / 2
	return &PairScore{
		PlayerA:         team.PlayerA,
		PlayerB:         team.PlayerB,
		TeamID:          team.ID,
		TeamMu:          teamRating.Mu,
		AvgIndividualMu: avg,
		Score:           teamRating.Mu - avg,
		GamesPlayed:     teamRating.GamesPlayed,
	}, nil
}

func (e *engine) PartnerScores(ctx context.Context, playerID string) ([]PartnerScore, error) {
	subject, err := e.players.Resolve(ctx, nil, playerID)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, `
		SELECT CASE WHEN t.player_a = ?1 THEN t.player_b ELSE t.player_a END AS partner_id,
		       p.display_name, tr.mu, tr.games_played
		FROM teams t
		JOIN ratings tr ON tr.entity_id = t.id
		JOIN players p ON p.id = (CASE WHEN t.player_a = ?1 THEN t.player_b ELSE t.player_a END)
		WHERE (t.player_a = ?1 OR t.player_b = ?1) AND tr.games_played > 0
	`, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner teams: %w", err)
	}
	defer rows.Close()

	subjectRating, err := e.ratings.GetRating(ctx, nil, subject)
	if err != nil {
		return nil, err
	}

	var scores []PartnerScore
	for rows.Next() {
		var ps PartnerScore
		if err := rows.Scan(&ps.PartnerID, &ps.PartnerName, &ps.TeamMu, &ps.GamesTogether); err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}
		partnerRating, err := e.ratings.GetRating(ctx, nil, ps.PartnerID)
		if err != nil {
			return nil, err
		}
		ps.AvgIndividualMu = (subjectRating.Mu + partnerRating.Mu) / 2
		ps.Score = ps.TeamMu - ps.AvgIndividualMu
		scores = append(scores, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].PartnerID < scores[j].PartnerID
	})
	return scores, nil
}

func (e *engine) RecommendedPartners(ctx context.Context, playerID string, limit, minGames int) ([]Recommendation, error) {
	subject, err := e.players.Resolve(ctx, nil, playerID)
	if err != nil {
		return nil, err
	}
	subjectRating, err := e.ratings.GetRating(ctx, nil, subject)
	if err != nil {
		return nil, err
	}

	// Candidates are all unlinked players other than the subject.
	// Never-rated players project from the configured prior.
	rows, err := e.db.QueryContext(ctx, `
		SELECT p.id, p.display_name
		FROM players p
		WHERE p.linked_player_id IS NULL AND p.id != ?
	`, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		id   string
		name string
	}
	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.id, &c.name); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var recs []Recommendation
	for _, c := range candidates {
		team, err := e.ratings.GetTeam(ctx, subject, c.id)
		if err != nil {
			return nil, err
		}
		if team != nil {
			tr, err := e.ratings.GetRating(ctx, nil, team.ID)
			if err != nil {
				return nil, err
			}
			if tr.GamesPlayed >= minGames {
				continue
			}
		}
		candidateRating, err := e.ratings.GetRating(ctx, nil, c.id)
		if err != nil {
			return nil, err
		}
		// The projection uses individual ratings only: closely matched
		// players make the best untried pairs, with overall strength as
		// the tie-breaker.
		recs = append(recs, Recommendation{
			PartnerID:   c.id,
			PartnerName: c.name,
			Projected:   -math.Abs(subjectRating.Mu - candidateRating.Mu),
			CombinedMu:  subjectRating.Mu + candidateRating.Mu,
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Projected != recs[j].Projected {
			return recs[i].Projected > recs[j].Projected
		}
		if recs[i].CombinedMu != recs[j].CombinedMu {
			return recs[i].CombinedMu > recs[j].CombinedMu
		}
		return recs[i].PartnerID < recs[j].PartnerID
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

func (e *engine) TeamRankings(ctx context.Context, limit int) ([]TeamRanking, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT t.id, t.player_a, t.player_b, r.mu, r.games_played
		FROM teams t
		JOIN ratings r ON r.entity_id = t.id
		WHERE r.games_played > 0
		ORDER BY r.mu DESC, r.games_played ASC, t.id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query team rankings: %w", err)
	}
	defer rows.Close()

	var rankings []TeamRanking
	for rows.Next() {
		var tr TeamRanking
		if err := rows.Scan(&tr.TeamID, &tr.PlayerA, &tr.PlayerB, &tr.Mu, &tr.GamesPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan team ranking: %w", err)
		}
		rankings = append(rankings, tr)
	}
	return rankings, rows.Err()
}
