package setup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlesim/internal/game/combat"
)

const timestampLayout = "20060102_150405"

// FileStore keeps settings and snapshot files in a single directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore returns a store rooted at dir. The directory is created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

// Save writes st as indented JSON to battle_YYYYMMDD_HHMMSS.json and returns the path.
// A file already holding that name gets a numeric suffix instead of being overwritten.
func (s *FileStore) Save(st Settings) (string, error) {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}
	return s.write("battle", data)
}

// SaveSnapshot writes snap as indented JSON to snapshot_YYYYMMDD_HHMMSS.json.
// A zero SavedAt is stamped with the current time.
func (s *FileStore) SaveSnapshot(snap Snapshot) (string, error) {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = s.now().UTC()
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return s.write("snapshot", data)
}

func (s *FileStore) write(prefix string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", s.dir, err)
	}
	base := fmt.Sprintf("%s_%s", prefix, s.now().Format(timestampLayout))
	for n := 1; ; n++ {
		name := base + ".json"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.json", base, n)
		}
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("closing %s: %w", path, err)
		}
		return path, nil
	}
}

// List returns the settings files in the store directory, sorted by name.
// A missing directory yields an empty list.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "snapshot_") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Load reads a settings file, choosing JSON or YAML by extension. Keys absent
// from the file keep their DefaultSettings values.
//
// Postcondition: Returns validated settings or a non-nil error.
func Load(path string) (Settings, error) {
	st := DefaultSettings()
	if err := decodeFile(path, &st); err != nil {
		return Settings{}, err
	}
	if err := st.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// LoadSnapshot reads a snapshot file and checks that its state can be restored.
func LoadSnapshot(path string) (Snapshot, error) {
	var snap Snapshot
	if err := decodeFile(path, &snap); err != nil {
		return Snapshot{}, err
	}
	if _, err := combat.RestoreSides(snap.State); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %s: unsupported file extension", combat.ErrInvalidConfig, path)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}
