package match

import (
	"context"
	"sync"
)

// MockRecorder is a mock implementation of the Recorder interface for
// testing. It is safe for concurrent use.
type MockRecorder struct {
	mu sync.Mutex

	RecordMatchFunc   func(ctx context.Context, submission NewMatch) (*Match, error)
	UpdateMatchFunc   func(ctx context.Context, matchID string, expectedVersion int, scores []SetScore) (*Match, error)
	GetMatchFunc      func(ctx context.Context, matchID string) (*Match, error)
	PlayerMatchesFunc func(ctx context.Context, playerID string) ([]*Match, error)
	VenueMatchesFunc  func(ctx context.Context, venueID string) ([]*Match, error)

	RecordMatchCalls []NewMatch
	UpdateMatchCalls []struct {
		MatchID         string
		ExpectedVersion int
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockRecorder {
	return &MockRecorder{}
}

func (m *MockRecorder) RecordMatch(ctx context.Context, submission NewMatch) (*Match, error) {
	m.mu.Lock()
	m.RecordMatchCalls = append(m.RecordMatchCalls, submission)
	m.mu.Unlock()
	if m.RecordMatchFunc != nil {
		return m.RecordMatchFunc(ctx, submission)
	}
	return &Match{ID: "mock-match", Status: StatusConfirmed, Version: 1, Scores: submission.Scores}, nil
}

func (m *MockRecorder) UpdateMatch(ctx context.Context, matchID string, expectedVersion int, scores []SetScore) (*Match, error) {
	m.mu.Lock()
	m.UpdateMatchCalls = append(m.UpdateMatchCalls, struct {
		MatchID         string
		ExpectedVersion int
	}{matchID, expectedVersion})
	m.mu.Unlock()
	if m.UpdateMatchFunc != nil {
		return m.UpdateMatchFunc(ctx, matchID, expectedVersion, scores)
	}
	return &Match{ID: matchID, Status: StatusConfirmed, Version: expectedVersion + 1, Scores: scores}, nil
}

func (m *MockRecorder) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, matchID)
	}
	return &Match{ID: matchID, Status: StatusConfirmed, Version: 1}, nil
}

func (m *MockRecorder) PlayerMatches(ctx context.Context, playerID string) ([]*Match, error) {
	if m.PlayerMatchesFunc != nil {
		return m.PlayerMatchesFunc(ctx, playerID)
	}
	return nil, nil
}

func (m *MockRecorder) VenueMatches(ctx context.Context, venueID string) ([]*Match, error) {
	if m.VenueMatchesFunc != nil {
		return m.VenueMatchesFunc(ctx, venueID)
	}
	return nil, nil
}
