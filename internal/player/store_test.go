package player_test

import (
	"context"
	"testing"

	"github.com/smashmate/smashmate/internal/database"
	"github.com/smashmate/smashmate/internal/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (player.PlayerStore, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	return player.New(db), teardown
}

func TestCreateFakePlayerAndGet(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	ctx := context.Background()
	p, err := store.CreateFakePlayer(ctx, "owner-1", "Uncle Bo")
	require.NoError(t, err)
	assert.True(t, p.IsFake)
	assert.Equal(t, "owner-1", p.OwnerID)

	got, err := store.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Uncle Bo", got.DisplayName)
	assert.Nil(t, got.LinkedPlayerID)
}

func TestGetPlayer_NotFound(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	_, err := store.GetPlayer(context.Background(), "ghost")
	assert.ErrorIs(t, err, player.ErrNotFound)
}

func TestLinkPlayer(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	ctx := context.Background()
	require.NoError(t, store.UpsertPlayer(ctx, "real", "real", "Real Player"))
	fake, err := store.CreateFakePlayer(ctx, "real", "Placeholder")
	require.NoError(t, err)

	require.NoError(t, store.LinkPlayer(ctx, fake.ID, "real"))

	canonical, err := store.Resolve(ctx, nil, fake.ID)
	require.NoError(t, err)
	assert.Equal(t, "real", canonical)

	// An unlinked player resolves to itself, as does an unknown ID.
	canonical, err = store.Resolve(ctx, nil, "real")
	require.NoError(t, err)
	assert.Equal(t, "real", canonical)
	canonical, err = store.Resolve(ctx, nil, "stranger")
	require.NoError(t, err)
	assert.Equal(t, "stranger", canonical)
}

func TestLinkPlayer_RejectsSelfLink(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	err := store.LinkPlayer(context.Background(), "a", "a")
	assert.ErrorIs(t, err, player.ErrLinkCycle)
}

func TestLinkPlayer_RejectsLinkedTarget(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	ctx := context.Background()
	require.NoError(t, store.UpsertPlayer(ctx, "real", "real", "Real"))
	f1, err := store.CreateFakePlayer(ctx, "real", "First")
	require.NoError(t, err)
	f2, err := store.CreateFakePlayer(ctx, "real", "Second")
	require.NoError(t, err)

	require.NoError(t, store.LinkPlayer(ctx, f1.ID, "real"))

	// f1 is now linked: it may be neither source nor target again.
	err = store.LinkPlayer(ctx, f1.ID, "real")
	assert.ErrorIs(t, err, player.ErrAlreadyLinked)
	err = store.LinkPlayer(ctx, f2.ID, f1.ID)
	assert.ErrorIs(t, err, player.ErrAlreadyLinked)
}

func TestLinkPlayer_RejectsChainThroughLinkTarget(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	ctx := context.Background()
	require.NoError(t, store.UpsertPlayer(ctx, "real", "real", "Real"))
	f1, err := store.CreateFakePlayer(ctx, "real", "First")
	require.NoError(t, err)
	f2, err := store.CreateFakePlayer(ctx, "real", "Second")
	require.NoError(t, err)

	require.NoError(t, store.LinkPlayer(ctx, f1.ID, f2.ID))

	// f2 now carries f1's inbound link: linking f2 onward would bury
	// f1 behind a two-hop chain, so it must be rejected.
	err = store.LinkPlayer(ctx, f2.ID, "real")
	assert.ErrorIs(t, err, player.ErrAlreadyLinked)

	// The existing link is untouched and still terminates in an
	// unlinked player.
	canonical, err := store.Resolve(ctx, nil, f1.ID)
	require.NoError(t, err)
	assert.Equal(t, f2.ID, canonical)
	got, err := store.GetPlayer(ctx, f2.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LinkedPlayerID)
}

func TestLinkPlayer_RejectsTwoHopCycle(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	ctx := context.Background()
	f1, err := store.CreateFakePlayer(ctx, "o", "One")
	require.NoError(t, err)
	f2, err := store.CreateFakePlayer(ctx, "o", "Two")
	require.NoError(t, err)

	require.NoError(t, store.LinkPlayer(ctx, f1.ID, f2.ID))
	err = store.LinkPlayer(ctx, f2.ID, f1.ID)
	assert.Error(t, err, "closing the loop must be rejected")
}

func TestLinkPlayer_UnknownPlayers(t *testing.T) {
	store, teardown := setupTestDB(t)
	defer teardown()

	ctx := context.Background()
	require.NoError(t, store.UpsertPlayer(ctx, "real", "real", "Real"))

	err := store.LinkPlayer(ctx, "ghost", "real")
	assert.ErrorIs(t, err, player.ErrNotFound)
	err = store.LinkPlayer(ctx, "real", "ghost")
	assert.ErrorIs(t, err, player.ErrNotFound)
}
