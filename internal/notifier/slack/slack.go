package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/smashmate/smashmate/internal/compat"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/metrics"
	"github.com/smashmate/smashmate/internal/notifier"
	"github.com/smashmate/smashmate/internal/rating"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendResultNotification announces a recorded match result.
func (s *Notifier) SendResultNotification(m *match.Match, names map[string]string, dryRun bool) error {
	msg := s.formatResultNotification(m, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendLeaderboard posts the player leaderboard.
func (s *Notifier) SendLeaderboard(rankings []rating.PlayerRanking, dryRun bool) error {
	msg := s.formatLeaderboard(rankings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendTeamRankings posts the team leaderboard.
func (s *Notifier) SendTeamRankings(rankings []compat.TeamRanking, names map[string]string, dryRun bool) error {
	msg := s.formatTeamRankings(rankings, names)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(rankings []rating.PlayerRanking) (any, error) {
	return s.formatLeaderboard(rankings), nil
}

// FormatTeamRankingsResponse formats a team rankings message for a slash command response.
func (s *Notifier) FormatTeamRankingsResponse(rankings []compat.TeamRanking, names map[string]string) (any, error) {
	return s.formatTeamRankings(rankings, names), nil
}

// displayName falls back to the raw player ID when no name is known.
func displayName(names map[string]string, playerID string) string {
	if name, ok := names[playerID]; ok && name != "" {
		return name
	}
	return playerID
}

// formatResultNotification creates the Slack message for a recorded match using Block Kit.
func (s *Notifier) formatResultNotification(m *match.Match, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏸 Match recorded! 🏸", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Details
	detailsText := fmt.Sprintf("Venue: %s\nPlayed: %s", m.VenueID, m.PlayedAt.Format("Monday 02 Jan, 15:04"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	// Teams
	var team1, team2 []string
	var winningTeam int
	for _, p := range m.Participants {
		name := displayName(names, p.PlayerID)
		if p.TeamNo == 1 {
			team1 = append(team1, name)
		} else {
			team2 = append(team2, name)
		}
		if p.IsWinner {
			winningTeam = p.TeamNo
		}
	}

	team1Name := strings.Join(team1, " & ")
	team2Name := strings.Join(team2, " & ")

	var winningTeamName string
	switch winningTeam {
	case 1:
		winningTeamName = team1Name
	case 2:
		winningTeamName = team2Name
	}

	// Scores
	var setFields []*slack.TextBlockObject
	for i, set := range m.Scores {
		setText := fmt.Sprintf("Set %d\n• %s: %d\n• %s: %d", i+1, team1Name, set.Team1, team2Name, set.Team2)
		setFields = append(setFields, slack.NewTextBlockObject("plain_text", setText, true, false))
	}

	resultHeaderText := "Result:"
	if winningTeamName != "" {
		resultHeaderText = fmt.Sprintf("Result: %s won! 🏆", winningTeamName)
	}

	if len(setFields) > 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultHeaderText, true, false), setFields, nil))
	} else {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Result: No scores reported.", true, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the player leaderboard.
func (s *Notifier) formatLeaderboard(rankings []rating.PlayerRanking) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Player Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(rankings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No ratings yet. Go play some matches!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Player Ranks
	for i, r := range rankings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		playerText := fmt.Sprintf("%d. %s %s\n> *Skill*: %.2f ± %.2f | Games: %d",
			rank,
			medal,
			r.DisplayName,
			r.Mu,
			r.Sigma,
			r.GamesPlayed,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatTeamRankings creates a Slack message to display the team leaderboard.
func (s *Notifier) formatTeamRankings(rankings []compat.TeamRanking, names map[string]string) slack.Message {
	blocks := make([]slack.Block, 0)

	// Header
	headerText := slack.NewTextBlockObject("plain_text", "🏆 Team Rankings 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(rankings) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No teams rated yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	// Team Ranks
	for i, r := range rankings {
		rank := i + 1
		var medal string
		switch rank {
		case 1:
			medal = "🥇"
		case 2:
			medal = "🥈"
		case 3:
			medal = "🥉"
		}

		teamName := fmt.Sprintf("%s & %s", displayName(names, r.PlayerA), displayName(names, r.PlayerB))
		teamText := fmt.Sprintf("%d. %s %s\n> *Rating*: %.2f | Games: %d",
			rank,
			medal,
			teamName,
			r.Mu,
			r.GamesPlayed,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", teamText, false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
