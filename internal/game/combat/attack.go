package combat

import (
	"fmt"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// Attack is one attack profile a combatant uses each time it acts.
type Attack struct {
	Name            string
	AttackBonus     int
	DamageDiceCount int
	// DamageDieSize is the number of faces on each damage die.
	DamageDieSize  int
	DamageModifier int
	DamageType     string
}

// NewAttack builds an Attack from a die label such as "d6".
//
// Postcondition: Returns a valid Attack or an error wrapping ErrInvalidConfig.
func NewAttack(name string, bonus, diceCount int, die string, modifier int, damageType string) (Attack, error) {
	sides, err := dice.ParseDie(die)
	if err != nil {
		return Attack{}, fmt.Errorf("%w: attack %q: %v", ErrInvalidConfig, name, err)
	}
	a := Attack{
		Name:            name,
		AttackBonus:     bonus,
		DamageDiceCount: diceCount,
		DamageDieSize:   sides,
		DamageModifier:  modifier,
		DamageType:      damageType,
	}
	if err := a.Validate(); err != nil {
		return Attack{}, err
	}
	return a, nil
}

// Validate checks the attack invariants.
//
// Postcondition: Returns nil iff Name is non-empty and both dice fields are >= 1.
func (a Attack) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: attack name must not be empty", ErrInvalidConfig)
	}
	if a.DamageDiceCount < 1 {
		return fmt.Errorf("%w: attack %q: damage dice count must be >= 1, got %d", ErrInvalidConfig, a.Name, a.DamageDiceCount)
	}
	if a.DamageDieSize < 1 {
		return fmt.Errorf("%w: attack %q: damage die size must be >= 1, got %d", ErrInvalidConfig, a.Name, a.DamageDieSize)
	}
	return nil
}

// DamageDie returns the die label, e.g. "d6".
func (a Attack) DamageDie() string {
	return dice.DieLabel(a.DamageDieSize)
}

// Damage returns the damage expression for this attack.
//
// Precondition: a.Validate() == nil.
func (a Attack) Damage() dice.Expression {
	return dice.Expression{Count: a.DamageDiceCount, Sides: a.DamageDieSize, Modifier: a.DamageModifier}
}

// String renders the attack as "Claw (+3, 2d6+1)".
func (a Attack) String() string {
	return fmt.Sprintf("%s (%+d, %dd%d%+d)", a.Name, a.AttackBonus, a.DamageDiceCount, a.DamageDieSize, a.DamageModifier)
}

// AttackEdit names the attack fields to overwrite; nil fields are left unchanged.
type AttackEdit struct {
	Name            *string `json:"name,omitempty"`
	AttackBonus     *int    `json:"attack_bonus,omitempty"`
	DamageDiceCount *int    `json:"damage_dice_count,omitempty"`
	DamageDie       *string `json:"damage_dice_type,omitempty"`
	DamageModifier  *int    `json:"damage_modifier,omitempty"`
	DamageType      *string `json:"damage_type,omitempty"`
}

// apply returns a copy of a with the edit applied, or an error if the result is invalid.
func (e AttackEdit) apply(a Attack) (Attack, error) {
	if e.Name != nil {
		a.Name = *e.Name
	}
	if e.AttackBonus != nil {
		a.AttackBonus = *e.AttackBonus
	}
	if e.DamageDiceCount != nil {
		a.DamageDiceCount = *e.DamageDiceCount
	}
	if e.DamageDie != nil {
		sides, err := dice.ParseDie(*e.DamageDie)
		if err != nil {
			return Attack{}, fmt.Errorf("%w: attack %q: %v", ErrInvalidConfig, a.Name, err)
		}
		a.DamageDieSize = sides
	}
	if e.DamageModifier != nil {
		a.DamageModifier = *e.DamageModifier
	}
	if e.DamageType != nil {
		a.DamageType = *e.DamageType
	}
	if err := a.Validate(); err != nil {
		return Attack{}, err
	}
	return a, nil
}
