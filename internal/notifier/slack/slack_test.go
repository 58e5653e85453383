package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/smashmate/smashmate/internal/compat"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/metrics"
	"github.com/smashmate/smashmate/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	postMessageCalled := false
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

// Test one of the public methods to ensure it calls the private sender.
func TestSendResultNotification_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	m := &match.Match{
		ID:       "m1",
		VenueID:  "hall-a",
		PlayedAt: time.Now(),
	}

	err := notifier.SendResultNotification(m, nil, false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendResultNotification")
}

func TestFormatResultNotification(t *testing.T) {
	m := &match.Match{
		ID:       "m1",
		VenueID:  "hall-a",
		PlayedAt: time.Date(2025, 7, 9, 20, 0, 0, 0, time.Local),
		Scores: []match.SetScore{
			{Team1: 21, Team2: 15},
			{Team1: 21, Team2: 18},
		},
		Participants: []match.Participant{
			{PlayerID: "u1", TeamNo: 1, IsWinner: true},
			{PlayerID: "u2", TeamNo: 1, IsWinner: true},
			{PlayerID: "u3", TeamNo: 2, IsWinner: false},
			{PlayerID: "u4", TeamNo: 2, IsWinner: false},
		},
	}
	names := map[string]string{
		"u1": "Alice",
		"u2": "Bob",
		"u3": "Carol",
		"u4": "Dave",
	}

	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(m, names)
	require.Len(t, msg.Blocks.BlockSet, 3, "Expected 3 blocks")

	// 1. Header Block
	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "Expected first block to be a HeaderBlock")
	assert.Contains(t, header.Text.Text, "Match recorded")

	// 2. Details Block
	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok, "Expected second block to be a SectionBlock")
	assert.Contains(t, details.Text.Text, "hall-a")

	// 3. Result Block, winning team named, one field per set.
	result, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok, "Expected third block to be a SectionBlock")
	assert.Contains(t, result.Text.Text, "Alice & Bob won!")
	require.Len(t, result.Fields, 2)
	assert.Contains(t, result.Fields[0].Text, "Alice & Bob: 21")
	assert.Contains(t, result.Fields[0].Text, "Carol & Dave: 15")
}

func TestFormatResultNotification_NoScores(t *testing.T) {
	m := &match.Match{
		ID:       "m1",
		VenueID:  "hall-a",
		PlayedAt: time.Now(),
	}

	client := &Notifier{channelID: "C123"}
	msg := client.formatResultNotification(m, nil)
	require.Len(t, msg.Blocks.BlockSet, 3)

	result, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, result.Text.Text, "No scores reported")
}

func TestFormatLeaderboard(t *testing.T) {
	rankings := []rating.PlayerRanking{
		{PlayerID: "u1", DisplayName: "Alice", Mu: 28.5, Sigma: 4.2, GamesPlayed: 10},
		{PlayerID: "u2", DisplayName: "Bob", Mu: 26.1, Sigma: 5.0, GamesPlayed: 8},
	}

	client := &Notifier{channelID: "C123"}
	msg := client.formatLeaderboard(rankings)
	require.Len(t, msg.Blocks.BlockSet, 3, "Expected header plus one block per player")

	first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, first.Text.Text, "1. 🥇 Alice")
	assert.Contains(t, first.Text.Text, "28.50")

	second, ok := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, second.Text.Text, "2. 🥈 Bob")
}

func TestFormatLeaderboard_Empty(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatLeaderboard(nil)
	require.Len(t, msg.Blocks.BlockSet, 2)

	empty, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, empty.Text.Text, "No ratings yet")
}

func TestFormatTeamRankings(t *testing.T) {
	rankings := []compat.TeamRanking{
		{TeamID: "t1", PlayerA: "u1", PlayerB: "u2", Mu: 27.3, GamesPlayed: 6},
	}
	names := map[string]string{"u1": "Alice", "u2": "Bob"}

	client := &Notifier{channelID: "C123"}
	msg := client.formatTeamRankings(rankings, names)
	require.Len(t, msg.Blocks.BlockSet, 2)

	row, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, row.Text.Text, "Alice & Bob")
	assert.Contains(t, row.Text.Text, "27.30")
}
