package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/setup"
)

var errBadRequest = errors.New("bad request")

// roundResponse is the body returned for each resolved round.
type roundResponse struct {
	Round   int                `json:"round"`
	Report  combat.RoundReport `json:"report"`
	Lines   []string           `json:"lines"`
	Outcome combat.Outcome     `json:"outcome"`
}

func newRoundResponse(n int, rep combat.RoundReport) roundResponse {
	return roundResponse{Round: n, Report: rep, Lines: rep.Lines(), Outcome: rep.Outcome}
}

// editCombatantsRequest applies one edit to every listed combatant.
type editCombatantsRequest struct {
	Refs []combat.Ref `json:"refs"`
	combat.CombatantEdit
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) battle(r *http.Request) (*combat.Battle, error) {
	id := mux.Vars(r)["id"]
	b, ok := s.engine.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errBattleNotFound, id)
	}
	return b, nil
}

func pathInt(r *http.Request, key string) int {
	// Route patterns restrict these variables to digits.
	n, _ := strconv.Atoi(mux.Vars(r)[key])
	return n
}

func refOf(r *http.Request) combat.Ref {
	return combat.Ref{Side: pathInt(r, "side"), Index: pathInt(r, "index")}
}

// handleCreateBattle starts a battle from a Settings body, or from a stored
// preset when ?preset=name is given.
func (s *Server) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var st setup.Settings
	if name := r.URL.Query().Get("preset"); name != "" {
		if s.presets == nil {
			s.writeError(w, r, errDisabled)
			return
		}
		p, err := s.presets.Get(r.Context(), name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		st = p.Settings
	} else {
		st = setup.DefaultSettings()
		if err := decode(r, &st); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	sides, _, err := st.Build()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.engine.Start(sides)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.View())
}

func (s *Server) handleListBattles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"battles": s.engine.List()})
}

func (s *Server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleEndBattle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.engine.End(id) {
		s.writeError(w, r, fmt.Errorf("%w: %s", errBattleNotFound, id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunRound(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, n, err := b.RunRound()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRoundResponse(n, rep))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	history := b.History()
	out := make([]roundResponse, len(history))
	for i, rep := range history {
		out[i] = newRoundResponse(i+1, rep)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Outcome())
}

func (s *Server) handleGetAlliances(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Alliances())
}

func (s *Server) handleSetAlliances(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var m combat.AllianceMatrix
	if err := decode(r, &m); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := b.ApplyAlliances(m); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.Alliances())
}

func (s *Server) handleEditCombatants(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req editCombatantsRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Refs) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: refs must not be empty", errBadRequest))
		return
	}
	if err := b.EditCombatants(req.Refs, req.CombatantEdit); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleAddAttack(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var st combat.AttackState
	if err := decode(r, &st); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := st.Attack()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := b.AddAttack(refOf(r), a); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.View())
}

func (s *Server) handleEditAttack(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var e combat.AttackEdit
	if err := decode(r, &e); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := b.EditAttack(refOf(r), pathInt(r, "n"), e); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleRemoveAttack(w http.ResponseWriter, r *http.Request) {
	b, err := s.battle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := b.RemoveAttack(refOf(r), pathInt(r, "n")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}
