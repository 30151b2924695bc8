package combat

import "fmt"

// AttackState is the serialized form of an Attack.
type AttackState struct {
	Name            string `json:"name" yaml:"name"`
	AttackBonus     int    `json:"attack_bonus" yaml:"attack_bonus"`
	DamageDiceCount int    `json:"damage_dice_count" yaml:"damage_dice_count"`
	DamageDie       string `json:"damage_dice_type" yaml:"damage_dice_type"`
	DamageModifier  int    `json:"damage_modifier" yaml:"damage_modifier"`
	DamageType      string `json:"damage_type,omitempty" yaml:"damage_type,omitempty"`
}

// State returns the serialized form of a.
func (a Attack) State() AttackState {
	return AttackState{
		Name:            a.Name,
		AttackBonus:     a.AttackBonus,
		DamageDiceCount: a.DamageDiceCount,
		DamageDie:       a.DamageDie(),
		DamageModifier:  a.DamageModifier,
		DamageType:      a.DamageType,
	}
}

// Attack rebuilds and validates the attack described by s.
func (s AttackState) Attack() (Attack, error) {
	return NewAttack(s.Name, s.AttackBonus, s.DamageDiceCount, s.DamageDie, s.DamageModifier, s.DamageType)
}

// CombatantState is the full serialized state of a Combatant.
type CombatantState struct {
	Name        string        `json:"name" yaml:"name"`
	MaxHP       int           `json:"max_hp" yaml:"max_hp"`
	HP          int           `json:"hp" yaml:"hp"`
	ArmorClass  int           `json:"ac" yaml:"ac"`
	Attacks     []AttackState `json:"attacks" yaml:"attacks"`
	Side        int           `json:"side" yaml:"side"`
	Alive       bool          `json:"alive" yaml:"alive"`
	IgnoreSides []int         `json:"ignore_sides" yaml:"ignore_sides"`
}

// State captures the full state of c.
func (c *Combatant) State() CombatantState {
	attacks := make([]AttackState, len(c.attacks))
	for i, a := range c.attacks {
		attacks[i] = a.State()
	}
	return CombatantState{
		Name:        c.name,
		MaxHP:       c.maxHP,
		HP:          c.hp,
		ArmorClass:  c.armorClass,
		Attacks:     attacks,
		Side:        c.side,
		Alive:       c.alive,
		IgnoreSides: c.ignored.Slice(),
	}
}

// RestoreCombatant rebuilds a combatant from a captured state.
//
// Postcondition: RestoreCombatant(c.State()) yields a combatant whose State() equals c.State().
// Returns an error wrapping ErrInvalidConfig when the state violates an invariant,
// including an Alive flag that disagrees with HP.
func RestoreCombatant(s CombatantState) (*Combatant, error) {
	attacks := make([]Attack, len(s.Attacks))
	for i, as := range s.Attacks {
		a, err := as.Attack()
		if err != nil {
			return nil, fmt.Errorf("combatant %q: %w", s.Name, err)
		}
		attacks[i] = a
	}
	if s.MaxHP < 1 {
		return nil, fmt.Errorf("%w: combatant %q: max hp must be >= 1, got %d", ErrInvalidConfig, s.Name, s.MaxHP)
	}
	c, err := NewCombatant(s.Name, s.MaxHP, s.ArmorClass, attacks, s.Side)
	if err != nil {
		return nil, err
	}
	if s.HP < 0 || s.HP > s.MaxHP {
		return nil, fmt.Errorf("%w: combatant %q: hp must be within [0, %d], got %d", ErrInvalidConfig, s.Name, s.MaxHP, s.HP)
	}
	if s.Alive != (s.HP > 0) {
		return nil, fmt.Errorf("%w: combatant %q: alive=%v disagrees with hp=%d", ErrInvalidConfig, s.Name, s.Alive, s.HP)
	}
	for _, side := range s.IgnoreSides {
		if side < 0 {
			return nil, fmt.Errorf("%w: combatant %q: ignored side must be >= 0, got %d", ErrInvalidConfig, s.Name, side)
		}
		if side == s.Side {
			return nil, fmt.Errorf("%w: combatant %q cannot ignore its own side %d", ErrInvalidConfig, s.Name, side)
		}
	}
	c.hp = s.HP
	c.alive = s.HP > 0
	c.setIgnored(s.IgnoreSides)
	return c, nil
}
