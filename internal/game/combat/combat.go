// Package combat implements the multi-faction battle engine: combatants and
// their attacks, alliance-filtered targeting, attack resolution, round
// orchestration, and outcome evaluation.
package combat

import "errors"

var (
	// ErrInvalidConfig is returned when a combatant, attack, or roster is built
	// or edited with values that violate its invariants.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNoCombatants is returned when a round is requested but no faction has a living member.
	ErrNoCombatants = errors.New("no living combatants")
	// ErrBattleOver is returned when a round is requested but only one faction remains.
	ErrBattleOver = errors.New("battle is already decided")
	// ErrInvalidAlliance is returned for alliance matrices with the wrong shape or a set diagonal.
	ErrInvalidAlliance = errors.New("invalid alliance matrix")
	// ErrIndexOutOfRange is returned when a side, member, or attack index does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
)
