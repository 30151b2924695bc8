// Package api exposes the battle engine over HTTP with a websocket feed for
// automatic play.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/setup"
	"github.com/cory-johannsen/battlesim/internal/storage/postgres"
)

var errBattleNotFound = errors.New("battle not found")

// PresetStore persists named battle settings.
type PresetStore interface {
	Create(ctx context.Context, name string, settings setup.Settings) (postgres.Preset, error)
	Get(ctx context.Context, name string) (postgres.Preset, error)
	List(ctx context.Context) ([]postgres.Preset, error)
	Delete(ctx context.Context, name string) error
}

// SnapshotStore persists battle snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap setup.Snapshot) (int64, error)
	Latest(ctx context.Context, battleID string) (setup.Snapshot, error)
	List(ctx context.Context, battleID string) ([]postgres.SnapshotInfo, error)
}

// Server routes HTTP requests to the battle engine.
type Server struct {
	engine    *combat.Engine
	cfg       config.BattleConfig
	logger    *zap.Logger
	presets   PresetStore
	snapshots SnapshotStore
	health    func(context.Context) error
	router    *mux.Router
	upgrader  websocket.Upgrader
}

// Option configures optional Server collaborators.
type Option func(*Server)

// WithPresets enables the /presets endpoints.
func WithPresets(p PresetStore) Option { return func(s *Server) { s.presets = p } }

// WithSnapshots enables the snapshot endpoints.
func WithSnapshots(st SnapshotStore) Option { return func(s *Server) { s.snapshots = st } }

// WithHealthCheck adds a dependency check to /healthz.
func WithHealthCheck(fn func(context.Context) error) Option {
	return func(s *Server) { s.health = fn }
}

// New builds a Server over engine.
//
// Precondition: engine and logger must be non-nil.
func New(engine *combat.Engine, cfg config.BattleConfig, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/battles", s.handleCreateBattle).Methods(http.MethodPost)
	r.HandleFunc("/battles", s.handleListBattles).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}", s.handleGetBattle).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}", s.handleEndBattle).Methods(http.MethodDelete)
	r.HandleFunc("/battles/{id}/rounds", s.handleRunRound).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}/rounds", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/outcome", s.handleOutcome).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/alliances", s.handleGetAlliances).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/alliances", s.handleSetAlliances).Methods(http.MethodPut)
	r.HandleFunc("/battles/{id}/combatants", s.handleEditCombatants).Methods(http.MethodPatch)
	r.HandleFunc("/battles/{id}/combatants/{side:[0-9]+}/{index:[0-9]+}/attacks", s.handleAddAttack).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}/combatants/{side:[0-9]+}/{index:[0-9]+}/attacks/{n:[0-9]+}", s.handleEditAttack).Methods(http.MethodPut)
	r.HandleFunc("/battles/{id}/combatants/{side:[0-9]+}/{index:[0-9]+}/attacks/{n:[0-9]+}", s.handleRemoveAttack).Methods(http.MethodDelete)
	r.HandleFunc("/battles/{id}/snapshots", s.handleSaveSnapshot).Methods(http.MethodPost)
	r.HandleFunc("/battles/{id}/snapshots", s.handleListSnapshots).Methods(http.MethodGet)
	r.HandleFunc("/battles/{id}/watch", s.handleWatch).Methods(http.MethodGet)

	r.HandleFunc("/snapshots/{id}/restore", s.handleRestoreSnapshot).Methods(http.MethodPost)

	r.HandleFunc("/presets", s.handleCreatePreset).Methods(http.MethodPost)
	r.HandleFunc("/presets", s.handleListPresets).Methods(http.MethodGet)
	r.HandleFunc("/presets/{name}", s.handleGetPreset).Methods(http.MethodGet)
	r.HandleFunc("/presets/{name}", s.handleDeletePreset).Methods(http.MethodDelete)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, combat.ErrInvalidConfig),
		errors.Is(err, combat.ErrInvalidAlliance),
		errors.Is(err, combat.ErrIndexOutOfRange),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, combat.ErrBattleOver),
		errors.Is(err, combat.ErrNoCombatants),
		errors.Is(err, postgres.ErrPresetExists):
		return http.StatusConflict
	case errors.Is(err, errBattleNotFound),
		errors.Is(err, postgres.ErrPresetNotFound),
		errors.Is(err, postgres.ErrSnapshotNotFound),
		errors.Is(err, errDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
