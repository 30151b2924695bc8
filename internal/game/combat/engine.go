package combat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// Engine manages all live battles keyed by id.
// All methods are safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	battles   map[string]*Battle
	newSource func() dice.Source
	logger    *zap.Logger
}

// NewEngine creates an empty Engine. newSource is called once per battle to
// obtain that battle's randomness.
//
// Precondition: newSource and logger must be non-nil.
func NewEngine(newSource func() dice.Source, logger *zap.Logger) *Engine {
	return &Engine{
		battles:   make(map[string]*Battle),
		newSource: newSource,
		logger:    logger,
	}
}

// Start registers a new battle over sides under a fresh id.
//
// Precondition: sides[i].Index == i for every i.
// Postcondition: Returns the new Battle, or an error wrapping ErrInvalidConfig
// when there are fewer than two factions or the indices are inconsistent.
func (e *Engine) Start(sides []*Roster) (*Battle, error) {
	if len(sides) < 2 {
		return nil, fmt.Errorf("%w: a battle needs at least 2 factions, got %d", ErrInvalidConfig, len(sides))
	}
	for i, r := range sides {
		if r.Index != i {
			return nil, fmt.Errorf("%w: faction %q at position %d has index %d", ErrInvalidConfig, r.Name, i, r.Index)
		}
		for _, c := range r.Members {
			if c.Side() != i {
				return nil, fmt.Errorf("%w: combatant %q in faction %d has side %d", ErrInvalidConfig, c.Name(), i, c.Side())
			}
		}
	}

	b := newBattle(uuid.NewString(), sides, e.newSource(), e.logger)

	e.mu.Lock()
	e.battles[b.ID] = b
	e.mu.Unlock()

	e.logger.Info("battle started", zap.String("battle", b.ID), zap.Int("factions", len(sides)))
	return b, nil
}

// Restore registers a battle rebuilt from a captured state, keeping its round counter.
func (e *Engine) Restore(st BattleState) (*Battle, error) {
	sides, err := RestoreSides(st)
	if err != nil {
		return nil, err
	}
	b, err := e.Start(sides)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.round = st.Round
	b.mu.Unlock()
	return b, nil
}

// Get returns the battle with the given id.
//
// Postcondition: Returns (battle, true) if found, or (nil, false) otherwise.
func (e *Engine) Get(id string) (*Battle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.battles[id]
	return b, ok
}

// List returns the ids of all live battles, sorted.
func (e *Engine) List() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.battles))
	for id := range e.battles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// End removes the battle record for id. Reports whether it existed.
func (e *Engine) End(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.battles[id]
	delete(e.battles, id)
	return ok
}
