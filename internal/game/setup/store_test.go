package setup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

func fixedClock(ts time.Time) func() time.Time { return func() time.Time { return ts } }

func TestFileStore_SaveLoadJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "battle_settings")
	s := NewFileStore(dir)
	s.now = fixedClock(time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local))

	st := DefaultSettings()
	st.NumSides = 3
	st.SideCounts[2] = 2
	st.DamageType = "slashing"
	st.AllianceSettings = [][]bool{{false, true, false}, {true, false, false}, {false, false, false}}

	path, err := s.Save(st)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "battle_20250314_092653.json"), path)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	second, err := s.Save(st)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "battle_20250314_092653_2.json"), second)

	files, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{path, second}, files)
}

func TestLoad_JSONWithMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "num_sides": 2,
  "side_names": ["Orcs", "Elves", "Side C", "Side D", "Side E", "Side F"],
  "side_counts": [3, 4, 0, 0, 0, 0],
  "armor_class": 12,
  "health": 15,
  "attack_name": "Axe",
  "attack_bonus": 4,
  "damage_dice_count": 1,
  "damage_dice_type": "d12",
  "damage_modifier": 2
}`), 0o644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", st.DamageType)
	assert.Nil(t, st.AllianceSettings)

	sides, m, err := st.Build()
	require.NoError(t, err)
	assert.Equal(t, "Orcs_3", sides[0].Members[2].Name())
	assert.Len(t, sides[1].Members, 4)
	assert.Equal(t, combat.NewAllianceMatrix(2), m)
	assert.Equal(t, "Axe (+4, 1d12+2)", sides[1].Members[0].Attacks()[0].String())
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skirmish.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
num_sides: 3
side_names: [Red, Blue, Green]
side_counts: [2, 2, 2]
health: 8
attack_name: Spear
damage_dice_type: d8
alliance_settings:
  - [false, true, false]
`), 0o644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, st.NumSides)
	assert.Equal(t, 10, st.ArmorClass, "absent keys keep their defaults")
	assert.Equal(t, 8, st.Health)
	assert.Equal(t, combat.AllianceMatrix{{false, true, false}, {false, false, false}, {false, false, false}}, st.Alliances())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	txt := filepath.Join(dir, "settings.txt")
	require.NoError(t, os.WriteFile(txt, []byte("{}"), 0o644))
	_, err = Load(txt)
	assert.ErrorIs(t, err, combat.ErrInvalidConfig)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"num_sides": 9}`), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, combat.ErrInvalidConfig)

	garbled := filepath.Join(dir, "garbled.json")
	require.NoError(t, os.WriteFile(garbled, []byte(`{"num_sides": `), 0o644))
	_, err = Load(garbled)
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	files, err := NewFileStore(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileStore_SnapshotRoundTrip(t *testing.T) {
	sides, _, err := DefaultSettings().Build()
	require.NoError(t, err)
	b, err := combat.NewEngine(func() dice.Source { return dice.NewSeededSource(7) }, zap.NewNop()).Start(sides)
	require.NoError(t, err)
	_, _, err = b.RunRound()
	require.NoError(t, err)

	s := NewFileStore(t.TempDir())
	s.now = fixedClock(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	path, err := s.SaveSnapshot(SnapshotOf(b, s.now()))
	require.NoError(t, err)
	assert.Equal(t, "snapshot_20250102_030405.json", filepath.Base(path))

	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files, "snapshots are not settings files")

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, b.ID, snap.BattleID)
	assert.Equal(t, b.State(), snap.State)
	assert.True(t, snap.SavedAt.Equal(s.now()))
}

func TestLoadSnapshot_RejectsUnknownIgnoredFaction(t *testing.T) {
	sides, _, err := DefaultSettings().Build()
	require.NoError(t, err)
	b, err := combat.NewEngine(func() dice.Source { return dice.NewSeededSource(7) }, zap.NewNop()).Start(sides)
	require.NoError(t, err)

	for _, ignored := range [][]int{{-1}, {9}} {
		snap := SnapshotOf(b, time.Now())
		snap.State.Factions[1].Members[0].IgnoreSides = ignored

		s := NewFileStore(t.TempDir())
		path, err := s.SaveSnapshot(snap)
		require.NoError(t, err)

		_, err = LoadSnapshot(path)
		assert.ErrorIs(t, err, combat.ErrInvalidConfig, "ignored sides %v", ignored)
	}
}
