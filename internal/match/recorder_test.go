package match_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/smashmate/smashmate/internal/config"
	"github.com/smashmate/smashmate/internal/database"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/metrics"
	"github.com/smashmate/smashmate/internal/player"
	"github.com/smashmate/smashmate/internal/rating"
	"github.com/smashmate/smashmate/internal/trueskill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	initialMu    = 25.0
	initialSigma = 25.0 / 3.0
)

type fixture struct {
	recorder match.Recorder
	players  player.PlayerStore
	ratings  rating.RatingStore
	metrics  *metrics.Mock
	db       *sql.DB
}

func setup(t *testing.T) (*fixture, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	players := player.New(db)
	ratings := rating.New(db, config.RatingConfig{InitialMu: initialMu, InitialSigma: initialSigma}, nil)
	mocks := metrics.NewMock()
	rec := match.New(db, players, ratings, trueskill.New(initialMu, initialSigma), mocks)

	return &fixture{recorder: rec, players: players, ratings: ratings, metrics: mocks, db: db}, teardown
}

func submission(team1, team2 [2]string, scores ...match.SetScore) match.NewMatch {
	if len(scores) == 0 {
		scores = []match.SetScore{{Team1: 21, Team2: 18}, {Team1: 21, Team2: 15}}
	}
	return match.NewMatch{
		VenueID:   "venue-1",
		PlayedAt:  time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC),
		Team1:     team1,
		Team2:     team2,
		Scores:    scores,
		CreatedBy: team1[0],
	}
}

func TestRecordMatch_NewPlayersWin(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	m, err := f.recorder.RecordMatch(ctx, submission([2]string{"a", "b"}, [2]string{"c", "d"}))
	require.NoError(t, err)
	assert.Equal(t, match.StatusConfirmed, m.Status)
	assert.Equal(t, 1, m.Version)
	require.Len(t, m.Participants, 4)

	team, err := f.ratings.GetTeam(ctx, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, team, "a team record must exist after the pair's first match")

	for _, id := range []string{"a", "b"} {
		r, err := f.ratings.GetRating(ctx, nil, id)
		require.NoError(t, err)
		assert.Greater(t, r.Mu, initialMu, "winner %s mean should rise", id)
		assert.Less(t, r.Sigma, initialSigma, "winner %s uncertainty should shrink", id)
		assert.Equal(t, 1, r.GamesPlayed)
	}
	for _, id := range []string{"c", "d"} {
		r, err := f.ratings.GetRating(ctx, nil, id)
		require.NoError(t, err)
		assert.Less(t, r.Mu, initialMu, "loser %s mean should fall", id)
		assert.Less(t, r.Sigma, initialSigma)
		assert.Equal(t, 1, r.GamesPlayed)
	}

	teamRating, err := f.ratings.GetRating(ctx, nil, team.ID)
	require.NoError(t, err)
	assert.Greater(t, teamRating.Mu, initialMu, "winning team mean should rise above the prior")
	assert.Equal(t, 1, teamRating.GamesPlayed)

	loserTeam, err := f.ratings.GetTeam(ctx, "d", "c")
	require.NoError(t, err)
	require.NotNil(t, loserTeam)
	loserRating, err := f.ratings.GetRating(ctx, nil, loserTeam.ID)
	require.NoError(t, err)
	assert.Less(t, loserRating.Mu, initialMu)
	assert.Equal(t, 1, loserRating.GamesPlayed)

	assert.Equal(t, 1, f.metrics.MatchesRecorded())
}

func TestRecordMatch_GamesPlayedIncrementsByExactlyOne(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	_, err := f.recorder.RecordMatch(ctx, submission([2]string{"a", "b"}, [2]string{"c", "d"}))
	require.NoError(t, err)
	_, err = f.recorder.RecordMatch(ctx, submission([2]string{"a", "b"}, [2]string{"c", "d"},
		match.SetScore{Team1: 15, Team2: 21}, match.SetScore{Team1: 12, Team2: 21}))
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c", "d"} {
		r, err := f.ratings.GetRating(ctx, nil, id)
		require.NoError(t, err)
		assert.Equal(t, 2, r.GamesPlayed, "player %s", id)
	}
	team, err := f.ratings.GetTeam(ctx, "b", "a")
	require.NoError(t, err)
	teamRating, err := f.ratings.GetRating(ctx, nil, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, teamRating.GamesPlayed)
}

func TestRecordMatch_Validation(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	tests := []struct {
		name string
		sub  match.NewMatch
	}{
		{"player repeated within a team", submission([2]string{"a", "a"}, [2]string{"c", "d"})},
		{"player on both teams", submission([2]string{"a", "b"}, [2]string{"a", "d"})},
		{"empty roster slot", submission([2]string{"a", ""}, [2]string{"c", "d"})},
		{"no scores", match.NewMatch{
			VenueID: "venue-1", PlayedAt: time.Now(), CreatedBy: "a",
			Team1: [2]string{"a", "b"}, Team2: [2]string{"c", "d"},
		}},
		{"set count tie", submission([2]string{"a", "b"}, [2]string{"c", "d"},
			match.SetScore{Team1: 21, Team2: 18}, match.SetScore{Team1: 17, Team2: 21})},
		{"negative score", submission([2]string{"a", "b"}, [2]string{"c", "d"},
			match.SetScore{Team1: -1, Team2: 21})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.recorder.RecordMatch(ctx, tc.sub)
			assert.ErrorIs(t, err, match.ErrValidation)
		})
	}

	// Nothing may be persisted by a rejected submission.
	var count int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM ratings").Scan(&count))
	assert.Zero(t, count)
}

func TestRecordMatch_ResolvesLinkedPlayers(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, f.players.UpsertPlayer(ctx, "real", "real", "Real"))
	fake, err := f.players.CreateFakePlayer(ctx, "real", "Placeholder")
	require.NoError(t, err)
	require.NoError(t, f.players.LinkPlayer(ctx, fake.ID, "real"))

	m, err := f.recorder.RecordMatch(ctx, submission([2]string{fake.ID, "b"}, [2]string{"c", "d"}))
	require.NoError(t, err)

	// The rating update lands on the canonical identity.
	realRating, err := f.ratings.GetRating(ctx, nil, "real")
	require.NoError(t, err)
	assert.Equal(t, 1, realRating.GamesPlayed)
	assert.Greater(t, realRating.Mu, initialMu)

	// The fake's own rating row stays untouched.
	fakeRating, err := f.ratings.GetRating(ctx, nil, fake.ID)
	require.NoError(t, err)
	assert.Zero(t, fakeRating.GamesPlayed)

	// A lookup through the alias sees the canonical rating.
	resolved, err := f.ratings.PlayerRating(ctx, fake.ID)
	require.NoError(t, err)
	assert.Equal(t, realRating.Mu, resolved.Mu)

	// History keeps the submitted identity.
	var found bool
	for _, p := range m.Participants {
		if p.PlayerID == fake.ID {
			found = true
		}
	}
	assert.True(t, found, "participant rows keep the submitted player ID")
}

func TestRecordMatch_RejectsAliasOfRosterMate(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, f.players.UpsertPlayer(ctx, "real", "real", "Real"))
	fake, err := f.players.CreateFakePlayer(ctx, "real", "Placeholder")
	require.NoError(t, err)
	require.NoError(t, f.players.LinkPlayer(ctx, fake.ID, "real"))

	_, err = f.recorder.RecordMatch(ctx, submission([2]string{fake.ID, "real"}, [2]string{"c", "d"}))
	assert.ErrorIs(t, err, match.ErrValidation)
}

func TestUpdateMatch_RecomputesWinnerWithoutTouchingRatings(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	m, err := f.recorder.RecordMatch(ctx, submission([2]string{"a", "b"}, [2]string{"c", "d"}))
	require.NoError(t, err)

	before, err := f.ratings.GetRating(ctx, nil, "a")
	require.NoError(t, err)

	flipped := []match.SetScore{{Team1: 15, Team2: 21}, {Team1: 12, Team2: 21}}
	updated, err := f.recorder.UpdateMatch(ctx, m.ID, 1, flipped)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, flipped, updated.Scores)

	for _, p := range updated.Participants {
		if p.TeamNo == 1 {
			assert.False(t, p.IsWinner, "team 1 lost under the revised scores")
		} else {
			assert.True(t, p.IsWinner)
		}
	}

	after, err := f.ratings.GetRating(ctx, nil, "a")
	require.NoError(t, err)
	assert.Equal(t, before, after, "score edits never re-run the skill update")
}

func TestUpdateMatch_StaleVersionConflict(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	m, err := f.recorder.RecordMatch(ctx, submission([2]string{"a", "b"}, [2]string{"c", "d"}))
	require.NoError(t, err)

	_, err = f.recorder.UpdateMatch(ctx, m.ID, 1, []match.SetScore{{Team1: 21, Team2: 10}})
	require.NoError(t, err)

	// A second editor still holding version 1 must be rejected.
	_, err = f.recorder.UpdateMatch(ctx, m.ID, 1, []match.SetScore{{Team1: 10, Team2: 21}})
	require.ErrorIs(t, err, match.ErrVersionConflict)

	var conflict *match.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.CurrentVersion)

	// The stored match is unchanged by the rejected edit.
	stored, err := f.recorder.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Version)
	assert.Equal(t, []match.SetScore{{Team1: 21, Team2: 10}}, stored.Scores)
	assert.Equal(t, 1, f.metrics.VersionConflicts())
}

func TestUpdateMatch_NotFound(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()

	_, err := f.recorder.UpdateMatch(context.Background(), "ghost", 1, []match.SetScore{{Team1: 21, Team2: 10}})
	assert.ErrorIs(t, err, match.ErrNotFound)
}

func TestRecordMatch_ConcurrentSubmissionsShareAPlayer(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Every roster contains "shared"; partners and opponents vary.
			sub := submission(
				[2]string{"shared", partner(i)},
				[2]string{opponent(i, 0), opponent(i, 1)},
			)
			_, errs[i] = f.recorder.RecordMatch(ctx, sub)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "submission %d", i)
	}

	// No lost updates: the shared player saw every single game.
	r, err := f.ratings.GetRating(ctx, nil, "shared")
	require.NoError(t, err)
	assert.Equal(t, n, r.GamesPlayed)

	matches, err := f.recorder.PlayerMatches(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, matches, n)
}

func partner(i int) string {
	return "partner-" + string(rune('a'+i))
}

func opponent(i, j int) string {
	return "opponent-" + string(rune('a'+i)) + "-" + string(rune('0'+j))
}

func TestPlayerAndVenueMatches(t *testing.T) {
	f, teardown := setup(t)
	defer teardown()
	ctx := context.Background()

	first := submission([2]string{"a", "b"}, [2]string{"c", "d"})
	first.PlayedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_, err := f.recorder.RecordMatch(ctx, first)
	require.NoError(t, err)

	second := submission([2]string{"a", "e"}, [2]string{"f", "g"})
	second.PlayedAt = time.Date(2025, 6, 8, 10, 0, 0, 0, time.UTC)
	second.VenueID = "venue-2"
	_, err = f.recorder.RecordMatch(ctx, second)
	require.NoError(t, err)

	mine, err := f.recorder.PlayerMatches(ctx, "a")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].PlayedAt.After(mine[1].PlayedAt), "newest first")

	othersOnly, err := f.recorder.PlayerMatches(ctx, "c")
	require.NoError(t, err)
	assert.Len(t, othersOnly, 1)

	atVenue, err := f.recorder.VenueMatches(ctx, "venue-2")
	require.NoError(t, err)
	require.Len(t, atVenue, 1)
	assert.Equal(t, "venue-2", atVenue[0].VenueID)
}
