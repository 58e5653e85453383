package player

import (
	"context"
	"sync"

	"github.com/smashmate/smashmate/internal/rating"
)

// MockStore is a mock implementation of the PlayerStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	UpsertPlayerFunc     func(ctx context.Context, id, ownerID, displayName string) error
	CreateFakePlayerFunc func(ctx context.Context, ownerID, displayName string) (Player, error)
	GetPlayerFunc        func(ctx context.Context, id string) (Player, error)
	LinkPlayerFunc       func(ctx context.Context, fakeID, targetID string) error
	ResolveFunc          func(ctx context.Context, q rating.Querier, playerID string) (string, error)

	LinkPlayerCalls [][2]string
	ResolveCalls    []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertPlayer(ctx context.Context, id, ownerID, displayName string) error {
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(ctx, id, ownerID, displayName)
	}
	return nil
}

func (m *MockStore) CreateFakePlayer(ctx context.Context, ownerID, displayName string) (Player, error) {
	if m.CreateFakePlayerFunc != nil {
		return m.CreateFakePlayerFunc(ctx, ownerID, displayName)
	}
	return Player{ID: "fake-" + displayName, OwnerID: ownerID, DisplayName: displayName, IsFake: true}, nil
}

func (m *MockStore) GetPlayer(ctx context.Context, id string) (Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(ctx, id)
	}
	return Player{ID: id, OwnerID: id, DisplayName: id}, nil
}

func (m *MockStore) LinkPlayer(ctx context.Context, fakeID, targetID string) error {
	m.mu.Lock()
	m.LinkPlayerCalls = append(m.LinkPlayerCalls, [2]string{fakeID, targetID})
	m.mu.Unlock()
	if m.LinkPlayerFunc != nil {
		return m.LinkPlayerFunc(ctx, fakeID, targetID)
	}
	return nil
}

func (m *MockStore) Resolve(ctx context.Context, q rating.Querier, playerID string) (string, error) {
	m.mu.Lock()
	m.ResolveCalls = append(m.ResolveCalls, playerID)
	m.mu.Unlock()
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, q, playerID)
	}
	return playerID, nil
}
