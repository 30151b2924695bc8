package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

// watchMessage is one frame pushed to a watching client.
type watchMessage struct {
	Type    string          `json:"type"`
	Round   *roundResponse  `json:"round,omitempty"`
	Outcome *combat.Outcome `json:"outcome,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// handleWatch plays the battle automatically, pushing every round to the
// websocket until the battle is decided, the round cap is reached, or the
// client disconnects. ?interval= and ?max_rounds= override the configured values.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	interval := s.cfg.AutoRoundInterval
	if v := r.URL.Query().Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			s.writeError(w, r, fmt.Errorf("%w: interval must be a positive duration", errBadRequest))
			return
		}
		interval = d
	}
	maxRounds := s.cfg.MaxRounds
	if v := r.URL.Query().Get("max_rounds"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, fmt.Errorf("%w: max_rounds must be a non-negative integer", errBadRequest))
			return
		}
		maxRounds = n
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		// Any read error means the client went away.
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	log := s.logger.With(zap.String("battle", b.ID))
	log.Info("watch started", zap.Duration("interval", interval), zap.Int("max_rounds", maxRounds))

	err = b.AutoPlay(ctx, interval, maxRounds, func(n int, rep combat.RoundReport) error {
		rr := newRoundResponse(n, rep)
		return conn.WriteJSON(watchMessage{Type: "round", Round: &rr})
	})
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("watcher disconnected")
		return
	case err != nil:
		_ = conn.WriteJSON(watchMessage{Type: "error", Error: err.Error()})
	default:
		outcome := b.Outcome()
		_ = conn.WriteJSON(watchMessage{Type: "end", Outcome: &outcome})
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	log.Info("watch finished", zap.Int("round", b.Round()))
}
