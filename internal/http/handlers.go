package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/smashmate/smashmate/internal/compat"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/player"
	"github.com/smashmate/smashmate/internal/pubsub"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeDomainError maps domain errors onto HTTP status codes. Anything
// not recognized is treated as a storage failure.
func writeDomainError(w http.ResponseWriter, err error) {
	var conflict *match.VersionConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":           conflict.Error(),
			"current_version": conflict.CurrentVersion,
		})
	case errors.Is(err, match.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, match.ErrNotFound),
		errors.Is(err, player.ErrNotFound),
		errors.Is(err, compat.ErrNoHistory):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, player.ErrAlreadyLinked), errors.Is(err, player.ErrLinkCycle):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Error("Storage failure", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage unavailable"})
	}
}

// intParam parses a positive integer query parameter, falling back to a
// default when absent or malformed.
func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		log.Warn("Invalid integer parameter. Using default.", "param", name, "value", raw)
		return fallback
	}
	return parsed
}

// displayNames resolves participant IDs to display names for notifications.
// Players the store does not know keep their raw ID.
func (s *Server) displayNames(r *http.Request, m *match.Match) map[string]string {
	names := make(map[string]string, len(m.Participants))
	for _, p := range m.Participants {
		pl, err := s.Players.GetPlayer(r.Context(), p.PlayerID)
		if err != nil {
			continue
		}
		names[p.PlayerID] = pl.DisplayName
	}
	return names
}

func (s *Server) RecordMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var submission match.NewMatch
		if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
			log.Error("Failed to decode match submission", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}

		recorded, err := s.Recorder.RecordMatch(r.Context(), submission)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		isDryRun := isDryRunFromContext(r)

		playerIDs := make([]string, 0, len(recorded.Participants))
		for _, p := range recorded.Participants {
			playerIDs = append(playerIDs, p.PlayerID)
		}
		event := pubsub.MatchRecordedEvent{
			MatchID:    recorded.ID,
			VenueID:    recorded.VenueID,
			PlayerIDs:  playerIDs,
			RecordedAt: time.Now().Unix(),
		}
		if isDryRun {
			log.Info("[Dry Run] Would publish match recorded event", "matchID", recorded.ID)
		} else if err := s.pubsub.SendMessage(string(pubsub.EventMatchRecorded), event); err != nil {
			// The match is committed; downstream consumers catch up later.
			log.Error("Failed to publish match recorded event", "matchID", recorded.ID, "error", err)
		}

		if err := s.Notifier.SendResultNotification(recorded, s.displayNames(r, recorded), isDryRun); err != nil {
			log.Error("Failed to send result notification", "matchID", recorded.ID, "error", err)
		}

		writeJSON(w, http.StatusCreated, recorded)
	}
}

func (s *Server) UpdateMatchHandler() http.HandlerFunc {
	type updateRequest struct {
		ID              string           `json:"id"`
		ExpectedVersion int              `json:"expected_version"`
		Scores          []match.SetScore `json:"scores"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode match update", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		if req.ID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
			return
		}

		updated, err := s.Recorder.UpdateMatch(r.Context(), req.ID, req.ExpectedVersion, req.Scores)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case query.Get("matchID") != "":
			m, err := s.Recorder.GetMatch(r.Context(), query.Get("matchID"))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, m)
		case query.Get("playerID") != "":
			matches, err := s.Recorder.PlayerMatches(r.Context(), query.Get("playerID"))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, matches)
		case query.Get("venueID") != "":
			matches, err := s.Recorder.VenueMatches(r.Context(), query.Get("venueID"))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, matches)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "matchID, playerID or venueID is required"})
		}
	}
}

// LeaderboardHandler returns a handler that serves the individual leaderboard.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := intParam(r, "limit", 10)
		minGames := intParam(r, "minGames", 0)

		rankings, err := s.Ratings.TopPlayers(r.Context(), limit, minGames)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rankings)
	}
}

func (s *Server) TeamRankingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := intParam(r, "limit", 10)

		rankings, err := s.Compat.TeamRankings(r.Context(), limit)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rankings)
	}
}

func (s *Server) CompatibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerA := r.URL.Query().Get("playerA")
		playerB := r.URL.Query().Get("playerB")
		if playerA == "" || playerB == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "playerA and playerB are required"})
			return
		}

		score, err := s.Compat.CompatibilityScore(r.Context(), playerA, playerB)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, score)
	}
}

func (s *Server) PartnerScoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "playerID is required"})
			return
		}

		scores, err := s.Compat.PartnerScores(r.Context(), playerID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

func (s *Server) RecommendationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("playerID")
		if playerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "playerID is required"})
			return
		}
		limit := intParam(r, "limit", s.Cfg.Recommend.Limit)
		minGames := intParam(r, "minGames", s.Cfg.Recommend.MinGames)

		recs, err := s.Compat.RecommendedPartners(r.Context(), playerID, limit, minGames)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

func (s *Server) CreateFakePlayerHandler() http.HandlerFunc {
	type createRequest struct {
		OwnerID     string `json:"owner_id"`
		DisplayName string `json:"display_name"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode fake player request", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		if req.OwnerID == "" || req.DisplayName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "owner_id and display_name are required"})
			return
		}

		created, err := s.Players.CreateFakePlayer(r.Context(), req.OwnerID, req.DisplayName)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		log.Info("Created fake player", "playerID", created.ID, "owner", req.OwnerID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) LinkPlayerHandler() http.HandlerFunc {
	type linkRequest struct {
		FakePlayerID   string `json:"fake_player_id"`
		TargetPlayerID string `json:"target_player_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req linkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Error("Failed to decode link request", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
			return
		}
		if req.FakePlayerID == "" || req.TargetPlayerID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "fake_player_id and target_player_id are required"})
			return
		}

		if err := s.Players.LinkPlayer(r.Context(), req.FakePlayerID, req.TargetPlayerID); err != nil {
			writeDomainError(w, err)
			return
		}
		s.Metrics.IncPlayersLinked()

		event := pubsub.PlayerLinkedEvent{
			FakePlayerID: req.FakePlayerID,
			TargetID:     req.TargetPlayerID,
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would publish player linked event", "fakePlayerID", req.FakePlayerID)
		} else if err := s.pubsub.SendMessage(string(pubsub.EventPlayerLinked), event); err != nil {
			log.Error("Failed to publish player linked event", "fakePlayerID", req.FakePlayerID, "error", err)
		}

		log.Info("Linked player", "fakePlayerID", req.FakePlayerID, "targetPlayerID", req.TargetPlayerID)
		writeJSON(w, http.StatusOK, map[string]string{"status": "linked"})
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rankings, err := s.Ratings.TopPlayers(r.Context(), 10, 0)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(rankings)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// TeamRankingsCommandHandler returns a handler for the /team-rankings Slack command.
func (s *Server) TeamRankingsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rankings, err := s.Compat.TeamRankings(r.Context(), 10)
		if err != nil {
			http.Error(w, "Failed to get team rankings", http.StatusInternalServerError)
			log.Error("Failed to get team rankings from store", "error", err)
			return
		}

		names := make(map[string]string)
		for _, ranking := range rankings {
			for _, id := range []string{ranking.PlayerA, ranking.PlayerB} {
				if _, ok := names[id]; ok {
					continue
				}
				pl, err := s.Players.GetPlayer(r.Context(), id)
				if err != nil {
					continue
				}
				names[id] = pl.DisplayName
			}
		}

		msg, err := s.Notifier.FormatTeamRankingsResponse(rankings, names)
		if err != nil {
			http.Error(w, "Failed to format team rankings", http.StatusInternalServerError)
			log.Error("Failed to format team rankings", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}
