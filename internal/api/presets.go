package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/setup"
)

var errDisabled = errors.New("persistence is not enabled")

type createPresetRequest struct {
	Name     string         `json:"name"`
	Settings setup.Settings `json:"settings"`
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		s.writeError(w, r, errDisabled)
		return
	}
	req := createPresetRequest{Settings: setup.DefaultSettings()}
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.writeError(w, r, fmt.Errorf("%w: preset name must not be empty", errBadRequest))
		return
	}
	p, err := s.presets.Create(r.Context(), req.Name, req.Settings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("preset created", zap.String("preset", p.Name))
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		s.writeError(w, r, errDisabled)
		return
	}
	list, err := s.presets.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		s.writeError(w, r, errDisabled)
		return
	}
	p, err := s.presets.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		s.writeError(w, r, errDisabled)
		return
	}
	if err := s.presets.Delete(r.Context(), mux.Vars(r)["name"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// storedBattleID returns {id} once it parses as a UUID. The battle need not be live.
func storedBattleID(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: battle id %q is not a UUID", errBadRequest, id)
	}
	return id, nil
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, r, errDisabled)
		return
	}
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := setup.SnapshotOf(b, time.Now())
	id, err := s.snapshots.Save(r.Context(), snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "battle_id": b.ID, "round": snap.State.Round})
}

// handleRestoreSnapshot starts a new battle from the latest snapshot of {id}.
func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, r, errDisabled)
		return
	}
	id, err := storedBattleID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.snapshots.Latest(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.engine.Restore(snap.State)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.View())
}

// handleListSnapshots lists the stored snapshots of {id}, oldest round first.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, r, errDisabled)
		return
	}
	id, err := storedBattleID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	infos, err := s.snapshots.List(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}
