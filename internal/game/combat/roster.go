package combat

import "fmt"

// Roster is one faction: an ordered list of combatants sharing a side index.
// Member order is both the acting order within a round and the display order.
type Roster struct {
	Name    string
	Index   int
	Members []*Combatant
}

// CreateRoster builds count combatants named "{name}_{i+1}" with identical stats.
// Each combatant receives its own copy of attacks. A count of zero yields an
// empty faction, but the stats are still validated.
//
// Postcondition: len(Members) == count and every member has Side() == index.
func CreateRoster(name string, index, count, hp, armorClass int, attacks []Attack) (*Roster, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: roster %q: count must be >= 0, got %d", ErrInvalidConfig, name, count)
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: roster %q: index must be >= 0, got %d", ErrInvalidConfig, name, index)
	}
	if hp < 1 {
		return nil, fmt.Errorf("%w: roster %q: hp must be >= 1, got %d", ErrInvalidConfig, name, hp)
	}
	if armorClass < 1 {
		return nil, fmt.Errorf("%w: roster %q: armor class must be >= 1, got %d", ErrInvalidConfig, name, armorClass)
	}
	if err := validateAttacks(name, attacks); err != nil {
		return nil, fmt.Errorf("roster %q: %w", name, err)
	}
	r := &Roster{Name: name, Index: index, Members: make([]*Combatant, 0, count)}
	for i := 0; i < count; i++ {
		c, err := NewCombatant(fmt.Sprintf("%s_%d", name, i+1), hp, armorClass, attacks, index)
		if err != nil {
			return nil, fmt.Errorf("roster %q: %w", name, err)
		}
		r.Members = append(r.Members, c)
	}
	return r, nil
}

// Alive reports whether at least one member is alive.
func (r *Roster) Alive() bool {
	for _, c := range r.Members {
		if c.Alive() {
			return true
		}
	}
	return false
}

// LivingMembers returns the living members in roster order.
func (r *Roster) LivingMembers() []*Combatant {
	var alive []*Combatant
	for _, c := range r.Members {
		if c.Alive() {
			alive = append(alive, c)
		}
	}
	return alive
}

// Member returns the combatant at index i.
func (r *Roster) Member(i int) (*Combatant, error) {
	if i < 0 || i >= len(r.Members) {
		return nil, fmt.Errorf("%w: roster %q has no member %d", ErrIndexOutOfRange, r.Name, i)
	}
	return r.Members[i], nil
}
