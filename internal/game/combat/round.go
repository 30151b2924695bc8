package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// EntryKind distinguishes the lines of a round log.
type EntryKind int

const (
	// EntryAttack records one resolved attack, hit or miss.
	EntryAttack EntryKind = iota
	// EntryKill follows the attack that dropped its target to zero HP.
	EntryKill
	// EntryNoTarget records an actor that found nobody to attack.
	EntryNoTarget
	// EntryOutcome closes the round with the post-round battle state.
	EntryOutcome
)

// String returns a human-readable kind label.
func (k EntryKind) String() string {
	switch k {
	case EntryAttack:
		return "attack"
	case EntryKill:
		return "kill"
	case EntryNoTarget:
		return "no_target"
	case EntryOutcome:
		return "outcome"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its label.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a label written by MarshalText.
func (k *EntryKind) UnmarshalText(text []byte) error {
	for _, kind := range []EntryKind{EntryAttack, EntryKill, EntryNoTarget, EntryOutcome} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown entry kind %q", text)
}

// LogEntry is one line of a round log.
type LogEntry struct {
	Kind       EntryKind     `json:"kind"`
	Actor      string        `json:"actor,omitempty"`
	ActorSide  int           `json:"actor_side"`
	Target     string        `json:"target,omitempty"`
	TargetSide int           `json:"target_side"`
	Attack     string        `json:"attack,omitempty"`
	Result     *AttackResult `json:"result,omitempty"`
	Text       string        `json:"text"`
}

// RoundReport is everything one round produced.
type RoundReport struct {
	Entries []LogEntry `json:"entries"`
	Outcome Outcome    `json:"outcome"`
}

// Lines returns the text of every entry in order.
func (r RoundReport) Lines() []string {
	lines := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		lines[i] = e.Text
	}
	return lines
}

// RunRound resolves one full round. Factions act in index order and members in
// roster order. Liveness is re-checked at every step, so a combatant killed
// earlier in the round neither acts nor is targeted later in it. Each actor
// picks one target and spends its whole attack list on it, stopping once the
// target dies.
//
// Precondition: sides[i].Index == i; src must be non-nil.
// Postcondition: On success, every combatant still satisfies Alive() == (HP() > 0)
// and the report ends with an EntryOutcome line. Returns ErrNoCombatants or
// ErrBattleOver, with no mutation and no log, when fewer than two factions are alive.
func RunRound(sides []*Roster, src dice.Source) (RoundReport, error) {
	before := EvaluateOutcome(sides)
	switch before.Status {
	case Draw:
		return RoundReport{}, ErrNoCombatants
	case Won:
		return RoundReport{}, fmt.Errorf("%w: %s has already won", ErrBattleOver, sides[before.Winner].Name)
	}

	r := rollerFor(src)
	var entries []LogEntry
	for _, roster := range sides {
		for _, actor := range roster.Members {
			if !actor.Alive() {
				continue
			}
			entries = append(entries, takeTurn(actor, sides, r)...)
		}
	}

	outcome := EvaluateOutcome(sides)
	entries = append(entries, LogEntry{
		Kind:       EntryOutcome,
		ActorSide:  outcome.Winner,
		TargetSide: -1,
		Text:       describeOutcome(outcome, sides),
	})
	return RoundReport{Entries: entries, Outcome: outcome}, nil
}

func takeTurn(actor *Combatant, sides []*Roster, r Roller) []LogEntry {
	target, ok := SelectTarget(actor, sides, r)
	if !ok {
		return []LogEntry{{
			Kind:       EntryNoTarget,
			Actor:      actor.Name(),
			ActorSide:  actor.Side(),
			TargetSide: -1,
			Text:       fmt.Sprintf("%s - no eligible targets", actor.Name()),
		}}
	}

	var entries []LogEntry
	for _, a := range actor.attacks {
		res := ResolveAttack(a, target.ArmorClass(), r)
		entries = append(entries, LogEntry{
			Kind:       EntryAttack,
			Actor:      actor.Name(),
			ActorSide:  actor.Side(),
			Target:     target.Name(),
			TargetSide: target.Side(),
			Attack:     a.Name,
			Result:     &res,
			Text:       describeAttack(actor, target, a, res),
		})
		if !res.Hit {
			continue
		}
		if !target.ApplyDamage(res.Damage) {
			entries = append(entries, LogEntry{
				Kind:       EntryKill,
				Actor:      actor.Name(),
				ActorSide:  actor.Side(),
				Target:     target.Name(),
				TargetSide: target.Side(),
				Text:       fmt.Sprintf("☠️ %s DESTROYED!", target.Name()),
			})
			break
		}
	}
	return entries
}

func describeAttack(actor, target *Combatant, a Attack, res AttackResult) string {
	head := fmt.Sprintf("%s → %s (%s: %d vs AC %d)", actor.Name(), target.Name(), a.Name, res.Total, target.ArmorClass())
	if !res.Hit {
		return head + " - MISS!"
	}
	crit := ""
	if res.Critical {
		crit = " CRITICAL HIT!"
	}
	return fmt.Sprintf("%s - HIT!%s %s", head, crit, res.Description)
}

func describeOutcome(o Outcome, sides []*Roster) string {
	switch o.Status {
	case Won:
		return fmt.Sprintf("🎉 %s WINS!", sides[o.Winner].Name)
	case Draw:
		return "⚔️ All sides destroyed! Draw."
	default:
		names := make([]string, len(o.Alive))
		for i, idx := range o.Alive {
			names[i] = sides[idx].Name
		}
		return "Battle continues: " + strings.Join(names, " vs ")
	}
}
