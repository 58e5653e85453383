package http

import (
	"net/http"

	"github.com/smashmate/smashmate/internal/compat"
	"github.com/smashmate/smashmate/internal/config"
	"github.com/smashmate/smashmate/internal/match"
	"github.com/smashmate/smashmate/internal/metrics"
	"github.com/smashmate/smashmate/internal/notifier"
	"github.com/smashmate/smashmate/internal/player"
	"github.com/smashmate/smashmate/internal/pubsub"
	"github.com/smashmate/smashmate/internal/rating"
)

func NewServer(recorder match.Recorder, players player.PlayerStore, ratings rating.RatingStore, engine compat.CompatibilityEngine, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Recorder:       recorder,
		Players:        players,
		Ratings:        ratings,
		Compat:         engine,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches", Chain(s.RecordMatchHandler(), paramsMiddleware))
	s.Router.Handle("PATCH /matches/update", Chain(s.UpdateMatchHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /team-rankings", Chain(s.TeamRankingsHandler(), paramsMiddleware))
	s.Router.Handle("GET /compatibility", Chain(s.CompatibilityHandler(), paramsMiddleware))
	s.Router.Handle("GET /compatibility/partners", Chain(s.PartnerScoresHandler(), paramsMiddleware))
	s.Router.Handle("GET /recommendations", Chain(s.RecommendationsHandler(), paramsMiddleware))
	s.Router.Handle("POST /players/fake", Chain(s.CreateFakePlayerHandler(), paramsMiddleware))
	s.Router.Handle("POST /players/link", Chain(s.LinkPlayerHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/team-rankings", Chain(s.TeamRankingsCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
