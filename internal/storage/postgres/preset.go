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

// ErrPresetNotFound is returned when a preset lookup yields no results.
var ErrPresetNotFound = errors.New("preset not found")

// ErrPresetExists is returned when attempting to create a duplicate preset name.
var ErrPresetExists = errors.New("preset already exists")

// Preset is a named battle setup stored in the database.
type Preset struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Settings  setup.Settings `json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
}

// PresetRepository provides preset persistence operations.
type PresetRepository struct {
	db *pgxpool.Pool
}

// NewPresetRepository creates a PresetRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPresetRepository(db *pgxpool.Pool) *PresetRepository {
	return &PresetRepository{db: db}
}

// Create stores settings under name.
//
// Precondition: name must be non-empty; settings must pass Validate.
// Postcondition: Returns the created Preset with ID and CreatedAt set,
// or ErrPresetExists if the name is taken.
func (r *PresetRepository) Create(ctx context.Context, name string, settings setup.Settings) (Preset, error) {
	if err := settings.Validate(); err != nil {
		return Preset{}, err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return Preset{}, fmt.Errorf("encoding settings: %w", err)
	}

	p := Preset{Name: name, Settings: settings}
	err = r.db.QueryRow(ctx,
		`INSERT INTO presets (name, settings)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		name, data,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return Preset{}, ErrPresetExists
		}
		return Preset{}, fmt.Errorf("inserting preset: %w", err)
	}
	return p, nil
}

// Get retrieves a preset by name.
//
// Postcondition: Returns the Preset or ErrPresetNotFound.
func (r *PresetRepository) Get(ctx context.Context, name string) (Preset, error) {
	p, err := scanPreset(r.db.QueryRow(ctx,
		`SELECT id, name, settings, created_at FROM presets WHERE name = $1`,
		name,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Preset{}, ErrPresetNotFound
		}
		return Preset{}, fmt.Errorf("querying preset: %w", err)
	}
	return p, nil
}

// List returns every preset ordered by name.
func (r *PresetRepository) List(ctx context.Context) ([]Preset, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, settings, created_at FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	defer rows.Close()

	presets := []Preset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning preset: %w", err)
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating presets: %w", err)
	}
	return presets, nil
}

// Delete removes the preset with the given name.
//
// Postcondition: Returns ErrPresetNotFound if no such preset existed.
func (r *PresetRepository) Delete(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM presets WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting preset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPresetNotFound
	}
	return nil
}

func scanPreset(row pgx.Row) (Preset, error) {
	var (
		p    Preset
		data []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &data, &p.CreatedAt); err != nil {
		return Preset{}, err
	}
	if err := json.Unmarshal(data, &p.Settings); err != nil {
		return Preset{}, fmt.Errorf("decoding preset %q: %w", p.Name, err)
	}
	return p, nil
}
