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

type Server struct {
	Recorder       match.Recorder
	Players        player.PlayerStore
	Ratings        rating.RatingStore
	Compat         compat.CompatibilityEngine
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
