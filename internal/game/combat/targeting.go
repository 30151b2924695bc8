package combat

import "github.com/cory-johannsen/battlesim/internal/game/dice"

// EligibleTargets returns every living combatant the actor may attack, in
// faction then roster order: members of factions other than the actor's own
// that the actor does not ignore. Liveness is read at call time.
func EligibleTargets(actor *Combatant, sides []*Roster) []*Combatant {
	var pool []*Combatant
	for i, r := range sides {
		if i == actor.Side() || actor.Ignores(i) {
			continue
		}
		pool = append(pool, r.LivingMembers()...)
	}
	return pool
}

// SelectTarget picks one eligible target uniformly at random.
//
// Postcondition: Returns (nil, false) when no target is eligible; otherwise a
// living combatant from a faction the actor neither belongs to nor ignores.
func SelectTarget(actor *Combatant, sides []*Roster, src dice.Source) (*Combatant, bool) {
	pool := EligibleTargets(actor, sides)
	if len(pool) == 0 {
		return nil, false
	}
	return pool[src.Intn(len(pool))], true
}
