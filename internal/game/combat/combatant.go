package combat

import "fmt"

// Combatant is a single participant in a battle.
//
// Invariant: 0 <= HP() <= MaxHP() and Alive() == (HP() > 0).
// Invariant: Ignored() never contains Side().
type Combatant struct {
	name       string
	maxHP      int
	hp         int
	armorClass int
	attacks    []Attack
	side       int
	alive      bool
	ignored    SideSet
}

// NewCombatant builds a living combatant at full health.
//
// Precondition: attacks must be non-empty and individually valid.
// Postcondition: Returns a combatant with HP() == MaxHP() == hp, or an error
// wrapping ErrInvalidConfig.
func NewCombatant(name string, hp, armorClass int, attacks []Attack, side int) (*Combatant, error) {
	if hp < 1 {
		return nil, fmt.Errorf("%w: combatant %q: hp must be >= 1, got %d", ErrInvalidConfig, name, hp)
	}
	if armorClass < 1 {
		return nil, fmt.Errorf("%w: combatant %q: armor class must be >= 1, got %d", ErrInvalidConfig, name, armorClass)
	}
	if side < 0 {
		return nil, fmt.Errorf("%w: combatant %q: side must be >= 0, got %d", ErrInvalidConfig, name, side)
	}
	if err := validateAttacks(name, attacks); err != nil {
		return nil, err
	}
	return &Combatant{
		name:       name,
		maxHP:      hp,
		hp:         hp,
		armorClass: armorClass,
		attacks:    append([]Attack(nil), attacks...),
		side:       side,
		alive:      true,
	}, nil
}

func validateAttacks(name string, attacks []Attack) error {
	if len(attacks) == 0 {
		return fmt.Errorf("%w: combatant %q: at least one attack is required", ErrInvalidConfig, name)
	}
	for _, a := range attacks {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("combatant %q: %w", name, err)
		}
	}
	return nil
}

func (c *Combatant) Name() string { return c.name }
func (c *Combatant) HP() int { return c.hp }
func (c *Combatant) MaxHP() int { return c.maxHP }
func (c *Combatant) ArmorClass() int { return c.armorClass }
func (c *Combatant) Side() int { return c.side }
func (c *Combatant) Alive() bool { return c.alive }
func (c *Combatant) Ignored() SideSet { return c.ignored }
func (c *Combatant) AttackCount() int { return len(c.attacks) }

// Attacks returns a copy of the attack list in execution order.
func (c *Combatant) Attacks() []Attack {
	return append([]Attack(nil), c.attacks...)
}

// Ignores reports whether this combatant refuses to target members of side.
func (c *Combatant) Ignores(side int) bool {
	return c.ignored.Has(side)
}

// ApplyDamage reduces HP by amount, flooring at zero, and updates liveness in the same step.
// Negative amounts are treated as zero.
//
// Postcondition: HP() >= 0; Alive() == (HP() > 0). Returns Alive().
func (c *Combatant) ApplyDamage(amount int) bool {
	if amount < 0 {
		amount = 0
	}
	c.hp -= amount
	if c.hp <= 0 {
		c.hp = 0
	}
	c.alive = c.hp > 0
	return c.alive
}

// setIgnored replaces the ignored set, dropping the combatant's own side.
func (c *Combatant) setIgnored(sides []int) {
	filtered := make([]int, 0, len(sides))
	for _, s := range sides {
		if s != c.side {
			filtered = append(filtered, s)
		}
	}
	c.ignored = NewSideSet(filtered...)
}

// CombatantEdit names the combatant fields to overwrite; nil fields are left unchanged.
type CombatantEdit struct {
	Name       *string `json:"name,omitempty"`
	HP         *int    `json:"hp,omitempty"`
	MaxHP      *int    `json:"max_hp,omitempty"`
	ArmorClass *int    `json:"armor_class,omitempty"`
}

// Check reports whether the edit can be applied to c without violating an invariant.
// A lowered MaxHP is not clamped: the caller must lower HP with it.
func (e CombatantEdit) Check(c *Combatant) error {
	maxHP, hp, ac := c.maxHP, c.hp, c.armorClass
	if e.MaxHP != nil {
		maxHP = *e.MaxHP
	}
	if e.HP != nil {
		hp = *e.HP
	}
	if e.ArmorClass != nil {
		ac = *e.ArmorClass
	}
	switch {
	case maxHP < 1:
		return fmt.Errorf("%w: combatant %q: max hp must be >= 1, got %d", ErrInvalidConfig, c.name, maxHP)
	case hp < 0 || hp > maxHP:
		return fmt.Errorf("%w: combatant %q: hp must be within [0, %d], got %d", ErrInvalidConfig, c.name, maxHP, hp)
	case ac < 1:
		return fmt.Errorf("%w: combatant %q: armor class must be >= 1, got %d", ErrInvalidConfig, c.name, ac)
	}
	return nil
}

// Edit applies e atomically; on error the combatant is unchanged.
//
// Postcondition: Alive() == (HP() > 0).
func (c *Combatant) Edit(e CombatantEdit) error {
	if err := e.Check(c); err != nil {
		return err
	}
	if e.Name != nil {
		c.name = *e.Name
	}
	if e.MaxHP != nil {
		c.maxHP = *e.MaxHP
	}
	if e.HP != nil {
		c.hp = *e.HP
	}
	if e.ArmorClass != nil {
		c.armorClass = *e.ArmorClass
	}
	c.alive = c.hp > 0
	return nil
}

// AddAttack appends a to the end of the attack list.
func (c *Combatant) AddAttack(a Attack) error {
	if err := a.Validate(); err != nil {
		return err
	}
	c.attacks = append(c.attacks, a)
	return nil
}

// RemoveAttack deletes the attack at index i. The last attack cannot be removed.
func (c *Combatant) RemoveAttack(i int) error {
	if i < 0 || i >= len(c.attacks) {
		return fmt.Errorf("%w: combatant %q has no attack %d", ErrIndexOutOfRange, c.name, i)
	}
	if len(c.attacks) == 1 {
		return fmt.Errorf("%w: combatant %q must keep at least one attack", ErrInvalidConfig, c.name)
	}
	c.attacks = append(c.attacks[:i:i], c.attacks[i+1:]...)
	return nil
}

// EditAttack applies e to the attack at index i; on error the attack is unchanged.
func (c *Combatant) EditAttack(i int, e AttackEdit) error {
	if i < 0 || i >= len(c.attacks) {
		return fmt.Errorf("%w: combatant %q has no attack %d", ErrIndexOutOfRange, c.name, i)
	}
	edited, err := e.apply(c.attacks[i])
	if err != nil {
		return err
	}
	c.attacks[i] = edited
	return nil
}
