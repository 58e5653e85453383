package notifier

import (
	"github.com/smashmate/smashmate/internal/compat"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/rating"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For freshly recorded results. names maps player IDs to display names.
	SendResultNotification(m *match.Match, names map[string]string, dryRun bool) error
	// For the individual leaderboard.
	SendLeaderboard(rankings []rating.PlayerRanking, dryRun bool) error
	// For the team leaderboard.
	SendTeamRankings(rankings []compat.TeamRanking, names map[string]string, dryRun bool) error
	// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
	FormatLeaderboardResponse(rankings []rating.PlayerRanking) (any, error)
	// FormatTeamRankingsResponse formats a team rankings message for a slash command response.
	FormatTeamRankingsResponse(rankings []compat.TeamRanking, names map[string]string) (any, error)
}
