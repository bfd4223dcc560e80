package handlers

import (
	"context"
	"net/http"

	"github.com/linesmerrill/radio-santana-api/api"
	"github.com/linesmerrill/radio-santana-api/config"
	"github.com/linesmerrill/radio-santana-api/models"
)

// StreamStatsUnavailableMessage is returned while no stats have been read
const StreamStatsUnavailableMessage = "Las estadísticas de la transmisión no están disponibles."

// StatsSource serves cached stream statistics
type StatsSource interface {
	Latest() (models.StreamStats, bool)
	Refresh(ctx context.Context) error
}

// Stream exposes the listener statistics of the station stream
type Stream struct {
	Stats StatsSource
}

// StatsHandler returns the last polled stats, reading them once if the poller
// has not succeeded yet
func (s Stream) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		config.ErrorStatus(StreamStatsUnavailableMessage, http.StatusServiceUnavailable, w, nil)
		return
	}
	if stats, ok := s.Stats.Latest(); ok {
		api.WriteJSON(w, http.StatusOK, stats)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := s.Stats.Refresh(ctx); err != nil {
		config.ErrorStatus(StreamStatsUnavailableMessage, http.StatusServiceUnavailable, w, err)
		return
	}
	stats, _ := s.Stats.Latest()
	api.WriteJSON(w, http.StatusOK, stats)
}
