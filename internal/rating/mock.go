package rating

import (
	"context"
	"sync"
)

// MockStore is a mock implementation of the RatingStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	GetRatingFunc       func(ctx context.Context, q Querier, entityID string) (Rating, error)
	PutRatingFunc       func(ctx context.Context, q Querier, r Rating) error
	GetOrCreateTeamFunc func(ctx context.Context, q Querier, playerA, playerB string) (Team, error)
	GetTeamFunc         func(ctx context.Context, playerA, playerB string) (*Team, error)
	PlayerRatingFunc    func(ctx context.Context, playerID string) (Rating, error)
	TopPlayersFunc      func(ctx context.Context, limit, minGames int) ([]PlayerRanking, error)

	GetRatingCalls []string
	PutRatingCalls []Rating
	TeamCalls      [][2]string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetRating(ctx context.Context, q Querier, entityID string) (Rating, error) {
	m.mu.Lock()
	m.GetRatingCalls = append(m.GetRatingCalls, entityID)
	m.mu.Unlock()
	if m.GetRatingFunc != nil {
		return m.GetRatingFunc(ctx, q, entityID)
	}
	return Rating{EntityID: entityID, Mu: 25, Sigma: 25.0 / 3.0}, nil
}

func (m *MockStore) PutRating(ctx context.Context, q Querier, r Rating) error {
	m.mu.Lock()
	m.PutRatingCalls = append(m.PutRatingCalls, r)
	m.mu.Unlock()
	if m.PutRatingFunc != nil {
		return m.PutRatingFunc(ctx, q, r)
	}
	return nil
}

func (m *MockStore) GetOrCreateTeam(ctx context.Context, q Querier, playerA, playerB string) (Team, error) {
	m.mu.Lock()
	m.TeamCalls = append(m.TeamCalls, [2]string{playerA, playerB})
	m.mu.Unlock()
	if m.GetOrCreateTeamFunc != nil {
		return m.GetOrCreateTeamFunc(ctx, q, playerA, playerB)
	}
	a, b := LexicalPairOrder(playerA, playerB)
	return Team{ID: "team-" + a + "-" + b, PlayerA: a, PlayerB: b}, nil
}

func (m *MockStore) GetTeam(ctx context.Context, playerA, playerB string) (*Team, error) {
	if m.GetTeamFunc != nil {
		return m.GetTeamFunc(ctx, playerA, playerB)
	}
	return nil, nil
}

func (m *MockStore) PlayerRating(ctx context.Context, playerID string) (Rating, error) {
	if m.PlayerRatingFunc != nil {
		return m.PlayerRatingFunc(ctx, playerID)
	}
	return Rating{EntityID: playerID, Mu: 25, Sigma: 25.0 / 3.0}, nil
}

func (m *MockStore) TopPlayers(ctx context.Context, limit, minGames int) ([]PlayerRanking, error) {
	if m.TopPlayersFunc != nil {
		return m.TopPlayersFunc(ctx, limit, minGames)
	}
	return nil, nil
}
