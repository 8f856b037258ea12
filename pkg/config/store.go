package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const storeVersion = "1"

// Store provides persistence for configuration data.
type Store interface {
	// Load loads the configuration from its backing medium
	Load() error

	// Save persists the configuration
	Save() error

	// GetSection retrieves configuration data for a specific section.
	// Unknown sections yield an empty map.
	GetSection(sectionID string) (map[string]interface{}, error)

	// SetSection stores configuration data for a specific section
	SetSection(sectionID string, data map[string]interface{}) error

	// GetAll retrieves all configuration data
	GetAll() (map[string]map[string]interface{}, error)

	// SetAll replaces all configuration data
	SetAll(data map[string]map[string]interface{}) error
}

type sectionMap map[string]map[string]interface{}

func copySection(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s sectionMap) clone() sectionMap {
	out := make(sectionMap, len(s))
	for id, data := range s {
		out[id] = copySection(data)
	}
	return out
}

// MemoryStore keeps configuration in memory only. Load and Save are no-ops.
// Every accessor hands out copies so callers cannot alias stored maps.
type MemoryStore struct {
	data     sectionMap
	mu       sync.RWMutex
	modified bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(sectionMap)}
}

// Load is a no-op.
func (s *MemoryStore) Load() error { return nil }

// Save clears the modified flag.
func (s *MemoryStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modified = false
	return nil
}

// GetSection retrieves a copy of one section.
func (s *MemoryStore) GetSection(sectionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySection(s.data[sectionID]), nil
}

// SetSection stores a copy of data under sectionID.
func (s *MemoryStore) SetSection(sectionID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(sectionMap)
	}
	s.data[sectionID] = copySection(data)
	s.modified = true
	return nil
}

// GetAll returns a deep copy of all sections.
func (s *MemoryStore) GetAll() (map[string]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone(), nil
}

// SetAll replaces all sections with a deep copy of data.
func (s *MemoryStore) SetAll(data map[string]map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = sectionMap(data).clone()
	s.modified = true
	return nil
}

// IsModified returns true if the store has unsaved changes.
func (s *MemoryStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	MemoryStore
	path    string
	version string
}

type fileLayout struct {
	Version  string     `json:"version"`
	Sections sectionMap `json:"sections"`
}

// NewFileStore creates a new file-based configuration store.
// If path is empty, defaults to ~/.pagekit/config.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".pagekit", "config.json")
	}

	store := &FileStore{
		MemoryStore: MemoryStore{data: make(sectionMap)},
		path:        path,
		version:     storeVersion,
	}

	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	return store, nil
}

// Load reads the file. A missing file yields an empty configuration.
func (s *FileStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.data = make(sectionMap)
		s.modified = false
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var layout fileLayout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if layout.Version != "" {
		s.version = layout.Version
	}
	s.data = layout.Sections
	if s.data == nil {
		s.data = make(sectionMap)
	}
	s.modified = false
	return nil
}

// Save writes the configuration atomically through a temp file and rename.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw, err := json.MarshalIndent(fileLayout{Version: s.version, Sections: s.data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, raw, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.modified = false
	return nil
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}
