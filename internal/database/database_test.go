package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"players", "ratings", "teams", "matches", "match_participants"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "querying for %s table should not produce an error", table)
		assert.Equal(t, table, name, "the %q table should be created", table)
	}
}

func TestInitDB_TeamPairIsUnique(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec(`INSERT INTO players (id, owner_id, display_name) VALUES ('a', 'a', 'A'), ('b', 'b', 'B')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO teams (id, player_a, player_b) VALUES ('t1', 'a', 'b')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO teams (id, player_a, player_b) VALUES ('t2', 'a', 'b')`)
	assert.Error(t, err, "duplicate canonical pair should violate the unique constraint")
}
