// Package setup builds battles from saved settings and persists settings and
// battle snapshots as JSON or YAML files.
package setup

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

// Side count limits for a battle built from settings.
const (
	MinSides = 2
	MaxSides = 6
)

// Settings is a complete battle setup: faction names and sizes, the stat block
// every combatant shares, one starting attack, and the alliance matrix.
// Only the first NumSides entries of SideNames and SideCounts are used.
type Settings struct {
	NumSides         int      `json:"num_sides" yaml:"num_sides"`
	SideNames        []string `json:"side_names" yaml:"side_names"`
	SideCounts       []int    `json:"side_counts" yaml:"side_counts"`
	ArmorClass       int      `json:"armor_class" yaml:"armor_class"`
	Health           int      `json:"health" yaml:"health"`
	AttackName       string   `json:"attack_name" yaml:"attack_name"`
	AttackBonus      int      `json:"attack_bonus" yaml:"attack_bonus"`
	DamageDiceCount  int      `json:"damage_dice_count" yaml:"damage_dice_count"`
	DamageDiceType   string   `json:"damage_dice_type" yaml:"damage_dice_type"`
	DamageModifier   int      `json:"damage_modifier" yaml:"damage_modifier"`
	DamageType       string   `json:"damage_type" yaml:"damage_type"`
	AllianceSettings [][]bool `json:"alliance_settings" yaml:"alliance_settings"`
}

// DefaultSettings returns two sides of five, AC 10, 10 HP and a +0 1d6 attack.
// All six side slots are named so NumSides can be raised without renaming.
func DefaultSettings() Settings {
	names := make([]string, MaxSides)
	counts := make([]int, MaxSides)
	for i := range names {
		names[i] = fmt.Sprintf("Side %c", 'A'+i)
	}
	counts[0], counts[1] = 5, 5
	return Settings{
		NumSides:        2,
		SideNames:       names,
		SideCounts:      counts,
		ArmorClass:      10,
		Health:          10,
		AttackName:      "Attack",
		DamageDiceCount: 1,
		DamageDiceType:  "d6",
	}
}

// Attack returns the starting attack every combatant receives.
func (s Settings) Attack() (combat.Attack, error) {
	return combat.NewAttack(s.AttackName, s.AttackBonus, s.DamageDiceCount, s.DamageDiceType, s.DamageModifier, s.DamageType)
}

// Validate checks every setting and reports all violations at once.
//
// Postcondition: Returns nil, or an error wrapping combat.ErrInvalidConfig.
func (s Settings) Validate() error {
	var errs []string
	if s.NumSides < MinSides || s.NumSides > MaxSides {
		errs = append(errs, fmt.Sprintf("num_sides must be %d-%d, got %d", MinSides, MaxSides, s.NumSides))
	}
	if len(s.SideNames) < s.NumSides {
		errs = append(errs, fmt.Sprintf("side_names has %d entries, need %d", len(s.SideNames), s.NumSides))
	}
	if len(s.SideCounts) < s.NumSides {
		errs = append(errs, fmt.Sprintf("side_counts has %d entries, need %d", len(s.SideCounts), s.NumSides))
	}
	for i := 0; i < s.NumSides && i < len(s.SideNames); i++ {
		if strings.TrimSpace(s.SideNames[i]) == "" {
			errs = append(errs, fmt.Sprintf("side_names[%d] must not be empty", i))
		}
	}
	for i := 0; i < s.NumSides && i < len(s.SideCounts); i++ {
		if s.SideCounts[i] < 0 {
			errs = append(errs, fmt.Sprintf("side_counts[%d] must be >= 0, got %d", i, s.SideCounts[i]))
		}
	}
	if s.ArmorClass < 1 {
		errs = append(errs, fmt.Sprintf("armor_class must be >= 1, got %d", s.ArmorClass))
	}
	if s.Health < 1 {
		errs = append(errs, fmt.Sprintf("health must be >= 1, got %d", s.Health))
	}
	if _, err := s.Attack(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", combat.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Alliances returns AllianceSettings as a NumSides×NumSides matrix. Missing rows
// and columns are padded with false, extra ones dropped, and the diagonal cleared.
func (s Settings) Alliances() combat.AllianceMatrix {
	m := combat.NewAllianceMatrix(s.NumSides)
	for i := 0; i < s.NumSides && i < len(s.AllianceSettings); i++ {
		row := s.AllianceSettings[i]
		for j := 0; j < s.NumSides && j < len(row); j++ {
			m[i][j] = row[j] && i != j
		}
	}
	return m
}

// Build creates one roster per side and applies the alliance matrix.
//
// Postcondition: len(sides) == NumSides, sides[i].Index == i, and every member
// of side i ignores exactly the sides marked in row i of the returned matrix.
func (s Settings) Build() ([]*combat.Roster, combat.AllianceMatrix, error) {
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	atk, err := s.Attack()
	if err != nil {
		return nil, nil, err
	}
	sides := make([]*combat.Roster, s.NumSides)
	for i := range sides {
		r, err := combat.CreateRoster(s.SideNames[i], i, s.SideCounts[i], s.Health, s.ArmorClass, []combat.Attack{atk})
		if err != nil {
			return nil, nil, err
		}
		sides[i] = r
	}
	m := s.Alliances()
	if err := combat.ApplyAllianceMatrix(sides, m); err != nil {
		return nil, nil, err
	}
	return sides, m, nil
}
