package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlesim/internal/game/setup"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a battle.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotInfo describes a stored snapshot without its state.
type SnapshotInfo struct {
	ID       int64     `json:"id"`
	BattleID string    `json:"battle_id"`
	Round    int       `json:"round"`
	SavedAt  time.Time `json:"saved_at"`
}

// SnapshotRepository stores battle snapshots as JSONB.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts snap and returns its row id.
//
// Precondition: snap.BattleID must be a UUID.
func (r *SnapshotRepository) Save(ctx context.Context, snap setup.Snapshot) (int64, error) {
	data, err := json.Marshal(snap.State)
	if err != nil {
		return 0, fmt.Errorf("encoding battle state: %w", err)
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now().UTC()
	}
	var id int64
	err = r.db.QueryRow(ctx,
		`INSERT INTO battle_snapshots (battle_id, round, state, saved_at)
		 VALUES ($1::uuid, $2, $3, $4)
		 RETURNING id`,
		snap.BattleID, snap.State.Round, data, snap.SavedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}
	return id, nil
}

// Latest returns the most recent snapshot of a battle.
//
// Postcondition: Returns the snapshot or ErrSnapshotNotFound.
func (r *SnapshotRepository) Latest(ctx context.Context, battleID string) (setup.Snapshot, error) {
	var (
		snap setup.Snapshot
		data []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT battle_id::text, state, saved_at
		 FROM battle_snapshots
		 WHERE battle_id = $1::uuid
		 ORDER BY round DESC, id DESC
		 LIMIT 1`,
		battleID,
	).Scan(&snap.BattleID, &data, &snap.SavedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return setup.Snapshot{}, ErrSnapshotNotFound
		}
		return setup.Snapshot{}, fmt.Errorf("querying snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap.State); err != nil {
		return setup.Snapshot{}, fmt.Errorf("decoding snapshot of %s: %w", battleID, err)
	}
	return snap, nil
}

// List returns every snapshot of a battle, oldest round first.
func (r *SnapshotRepository) List(ctx context.Context, battleID string) ([]SnapshotInfo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, battle_id::text, round, saved_at
		 FROM battle_snapshots
		 WHERE battle_id = $1::uuid
		 ORDER BY round, id`,
		battleID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	infos := []SnapshotInfo{}
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.ID, &info.BattleID, &info.Round, &info.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return infos, nil
}
