package notifier

import (
	"sync"

	"github.com/smashmate/smashmate/internal/compat"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/rating"
)

// MockNotifier is a mock implementation of the Notifier interface for
// testing. It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	SendResultNotificationFunc     func(m *match.Match, names map[string]string, dryRun bool) error
	SendLeaderboardFunc            func(rankings []rating.PlayerRanking, dryRun bool) error
	SendTeamRankingsFunc           func(rankings []compat.TeamRanking, names map[string]string, dryRun bool) error
	FormatLeaderboardResponseFunc  func(rankings []rating.PlayerRanking) (any, error)
	FormatTeamRankingsResponseFunc func(rankings []compat.TeamRanking, names map[string]string) (any, error)

	ResultNotificationCalls []*match.Match
	LeaderboardCalls        [][]rating.PlayerRanking
	TeamRankingsCalls       [][]compat.TeamRanking
}

// NewMock creates a new mock instance.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) SendResultNotification(mt *match.Match, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	m.ResultNotificationCalls = append(m.ResultNotificationCalls, mt)
	m.mu.Unlock()
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(mt, names, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendLeaderboard(rankings []rating.PlayerRanking, dryRun bool) error {
	m.mu.Lock()
	m.LeaderboardCalls = append(m.LeaderboardCalls, rankings)
	m.mu.Unlock()
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(rankings, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendTeamRankings(rankings []compat.TeamRanking, names map[string]string, dryRun bool) error {
	m.mu.Lock()
	m.TeamRankingsCalls = append(m.TeamRankingsCalls, rankings)
	m.mu.Unlock()
	if m.SendTeamRankingsFunc != nil {
		return m.SendTeamRankingsFunc(rankings, names, dryRun)
	}
	return nil
}

func (m *MockNotifier) FormatLeaderboardResponse(rankings []rating.PlayerRanking) (any, error) {
	if m.FormatLeaderboardResponseFunc != nil {
		return m.FormatLeaderboardResponseFunc(rankings)
	}
	return rankings, nil
}

func (m *MockNotifier) FormatTeamRankingsResponse(rankings []compat.TeamRanking, names map[string]string) (any, error) {
	if m.FormatTeamRankingsResponseFunc != nil {
		return m.FormatTeamRankingsResponseFunc(rankings, names)
	}
	return rankings, nil
}
