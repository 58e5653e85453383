package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchRecorded EventType = "match-recorded"
	EventMatchUpdated  EventType = "match-updated"
	EventPlayerLinked  EventType = "player-linked"
)

// MatchRecordedEvent is published after a match and its rating updates
// commit, for downstream consumers such as digest builders.
type MatchRecordedEvent struct {
	MatchID    string   `msgpack:"match_id"`
	VenueID    string   `msgpack:"venue_id"`
	PlayerIDs  []string `msgpack:"player_ids"`
	RecordedAt int64    `msgpack:"recorded_at"`
}

// PlayerLinkedEvent is published after a fake player is linked to a real
// account.
type PlayerLinkedEvent struct {
	FakePlayerID string `msgpack:"fake_player_id"`
	TargetID     string `msgpack:"target_id"`
}
