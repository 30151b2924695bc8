package setup

import (
	"time"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

// Snapshot is a saved battle: every combatant's full state plus the round counter.
type Snapshot struct {
	BattleID string             `json:"battle_id" yaml:"battle_id"`
	SavedAt  time.Time          `json:"saved_at" yaml:"saved_at"`
	State    combat.BattleState `json:"state" yaml:"state"`
}

// SnapshotOf captures b.
func SnapshotOf(b *combat.Battle, now time.Time) Snapshot {
	return Snapshot{BattleID: b.ID, SavedAt: now.UTC(), State: b.State()}
}
