package combat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// Ref addresses one combatant by faction and roster position.
type Ref struct {
	Side  int `json:"side"`
	Index int `json:"index"`
}

// FactionState is the serialized form of one roster.
type FactionState struct {
	Name    string           `json:"name" yaml:"name"`
	Members []CombatantState `json:"members" yaml:"members"`
}

// BattleState is the serialized form of a whole battle.
type BattleState struct {
	Round    int            `json:"round" yaml:"round"`
	Factions []FactionState `json:"factions" yaml:"factions"`
}

// RestoreSides rebuilds rosters from a captured state.
//
// Postcondition: Every member's Side() equals its faction position and every
// ignored side names an existing faction.
func RestoreSides(s BattleState) ([]*Roster, error) {
	sides := make([]*Roster, len(s.Factions))
	for i, f := range s.Factions {
		r := &Roster{Name: f.Name, Index: i, Members: make([]*Combatant, len(f.Members))}
		for j, cs := range f.Members {
			if cs.Side != i {
				return nil, fmt.Errorf("%w: faction %q member %d has side %d", ErrInvalidConfig, f.Name, j, cs.Side)
			}
			for _, ig := range cs.IgnoreSides {
				if ig >= len(s.Factions) {
					return nil, fmt.Errorf("%w: faction %q member %d ignores unknown faction %d", ErrInvalidConfig, f.Name, j, ig)
				}
			}
			c, err := RestoreCombatant(cs)
			if err != nil {
				return nil, fmt.Errorf("faction %q: %w", f.Name, err)
			}
			r.Members[j] = c
		}
		sides[i] = r
	}
	return sides, nil
}

// Battle is one live battle. All methods serialize on the battle's mutex, so a
// round always completes before any other operation observes or edits the rosters.
type Battle struct {
	ID string

	mu      sync.Mutex
	sides   []*Roster
	roller  *dice.Roller
	round   int
	history []RoundReport
	logger  *zap.Logger
}

func newBattle(id string, sides []*Roster, src dice.Source, logger *zap.Logger) *Battle {
	logger = logger.With(zap.String("battle", id))
	return &Battle{
		ID:     id,
		sides:  sides,
		roller: dice.NewRoller(src, logger),
		logger: logger,
	}
}

// RunRound resolves the next round and returns its report and number.
//
// Postcondition: On error (ErrNoCombatants, ErrBattleOver) the round counter and
// rosters are unchanged.
func (b *Battle) RunRound() (RoundReport, int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	report, err := RunRound(b.sides, b.roller)
	if err != nil {
		b.logger.Warn("round refused", zap.Int("round", b.round+1), zap.Error(err))
		return RoundReport{}, b.round, err
	}
	b.round++
	b.history = append(b.history, report)
	b.logger.Info("round resolved",
		zap.Int("round", b.round),
		zap.Int("entries", len(report.Entries)),
		zap.Stringer("outcome", report.Outcome.Status),
		zap.Ints("alive_factions", report.Outcome.Alive),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, b.round, nil
}

// AutoPlay runs a round every interval until the battle is decided, maxRounds
// rounds have run (0 means no limit), or ctx is cancelled. onRound is called
// after each round; a non-nil error from it stops play and is returned.
//
// Precondition: interval > 0.
func (b *Battle) AutoPlay(ctx context.Context, interval time.Duration, maxRounds int, onRound func(n int, r RoundReport) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for played := 0; maxRounds == 0 || played < maxRounds; played++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		report, n, err := b.RunRound()
		if err != nil {
			return err
		}
		if err := onRound(n, report); err != nil {
			return err
		}
		if report.Outcome.Status != Ongoing {
			return nil
		}
	}
	return nil
}

// Round returns the number of rounds resolved so far.
func (b *Battle) Round() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.round
}

// History returns a copy of every round report so far.
func (b *Battle) History() []RoundReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RoundReport(nil), b.history...)
}

// Outcome evaluates the current battle state.
func (b *Battle) Outcome() Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return EvaluateOutcome(b.sides)
}

// View returns the current status of every combatant.
func (b *Battle) View() BattleView {
	b.mu.Lock()
	defer b.mu.Unlock()
	v := ViewOf(b.sides)
	v.ID = b.ID
	v.Round = b.round
	return v
}

// State captures the battle for persistence.
func (b *Battle) State() BattleState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := BattleState{Round: b.round, Factions: make([]FactionState, len(b.sides))}
	for i, r := range b.sides {
		fs := FactionState{Name: r.Name, Members: make([]CombatantState, len(r.Members))}
		for j, c := range r.Members {
			fs.Members[j] = c.State()
		}
		st.Factions[i] = fs
	}
	return st
}

// Alliances returns the exclusion matrix currently in force.
func (b *Battle) Alliances() AllianceMatrix {
	b.mu.Lock()
	defer b.mu.Unlock()
	return AllianceMatrixFrom(b.sides)
}

// ApplyAlliances replaces every combatant's exclusions with m.
func (b *Battle) ApplyAlliances(m AllianceMatrix) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ApplyAllianceMatrix(b.sides, m)
}

func (b *Battle) lookup(ref Ref) (*Combatant, error) {
	if ref.Side < 0 || ref.Side >= len(b.sides) {
		return nil, fmt.Errorf("%w: no faction %d", ErrIndexOutOfRange, ref.Side)
	}
	return b.sides[ref.Side].Member(ref.Index)
}

// EditCombatants applies e to every referenced combatant. Every edit is checked
// before any is applied, so either all combatants change or none do.
func (b *Battle) EditCombatants(refs []Ref, e CombatantEdit) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	targets := make([]*Combatant, len(refs))
	for i, ref := range refs {
		c, err := b.lookup(ref)
		if err != nil {
			return err
		}
		if err := e.Check(c); err != nil {
			return err
		}
		targets[i] = c
	}
	for _, c := range targets {
		// Check already passed for every target.
		_ = c.Edit(e)
	}
	return nil
}

// AddAttack appends a to the referenced combatant's attack list.
func (b *Battle) AddAttack(ref Ref, a Attack) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, err := b.lookup(ref)
	if err != nil {
		return err
	}
	return c.AddAttack(a)
}

// RemoveAttack deletes attack i from the referenced combatant.
func (b *Battle) RemoveAttack(ref Ref, i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, err := b.lookup(ref)
	if err != nil {
		return err
	}
	return c.RemoveAttack(i)
}

// EditAttack applies e to attack i of the referenced combatant.
func (b *Battle) EditAttack(ref Ref, i int, e AttackEdit) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, err := b.lookup(ref)
	if err != nil {
		return err
	}
	return c.EditAttack(i, e)
}
