package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/setstore/internal/core/ports/driven"
	"github.com/custodia-labs/setstore/internal/logger"
)

// Keys understood by setstore, as dotted paths into config.toml.
const (
	KeyStorePath    = "store.path"
	KeyStoreBackend = "store.backend"
	KeyLogVerbose   = "log.verbose"
)

// ConfigFileName is the name of the file inside the config directory.
const ConfigFileName = "config.toml"

// keyKinds maps each known key to a check of its TOML value.
var keyKinds = map[string]struct {
	want  string
	check func(any) bool
}{
	KeyStorePath:    {"string", isString},
	KeyStoreBackend: {"string", isString},
	KeyLogVerbose:   {"boolean", isBool},
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps setstore's own configuration in a TOML file.
// Tables are addressed with dotted keys: [store] path = "..." is "store.path".
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens config.toml in configDir, creating the directory.
// An empty configDir means ~/.setstore.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		configDir = filepath.Join(home, ".setstore")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{
		filePath: filepath.Join(configDir, ConfigFileName),
		data:     make(map[string]any),
	}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the raw value of key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString returns key as a string, or "" when absent.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetBool returns key as a bool, or false when absent.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// Set validates value for key and writes the whole file.
func (s *ConfigStore) Set(key string, value any) error {
	if err := checkKey(key, value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, had := s.data[key]
	s.data[key] = value
	if err := s.save(); err != nil {
		if had {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// save writes the nested form of data (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(unflattenMap(s.data))
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.filePath, err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.filePath, err)
	}
	return nil
}

// Load rereads the file. A missing file is an empty configuration.
// Known keys holding the wrong kind of value are an error; unknown keys are
// kept and reported at warn level.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		s.data = make(map[string]any)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.filePath, err)
	}

	var loaded map[string]any
	if err := toml.Unmarshal(raw, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	data := flattenMap(loaded, "")
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, known := keyKinds[key]; !known {
			logger.Warn("config: ignoring unknown key %q in %s", key, s.filePath)
			continue
		}
		if err := checkKey(key, data[key]); err != nil {
			return fmt.Errorf("%s: %w", s.filePath, err)
		}
	}

	s.data = data
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// checkKey rejects a known key whose value has the wrong kind.
func checkKey(key string, value any) error {
	kind, known := keyKinds[key]
	if !known || kind.check(value) {
		return nil
	}
	return fmt.Errorf("config key %q must be a %s, got %T", key, kind.want, value)
}

// flattenMap turns nested tables into dotted keys: {"a": {"b": 1}} is {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}

	return result
}

// unflattenMap is the inverse of flattenMap.
func unflattenMap(m map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	return result
}
