package settings

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/oomph-ac/ofly/oerror"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a settings file.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
	FormatINI
)

// FormatFromPath returns the format of a settings file based on its extension. Files without a known YAML
// or INI extension are treated as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	case ".ini":
		return FormatINI
	default:
		return FormatTOML
	}
}

const (
	KindOfly      = "ofly"
	KindFlight    = "flight"
	KindDetection = "detection"
)

// Settings holds configured values grouped by the kind of check or component they belong to. Settings are
// safe for concurrent use.
type Settings struct {
	mu     sync.RWMutex
	values map[string]map[string]any
}

// New returns empty settings.
func New() *Settings {
	return &Settings{values: make(map[string]map[string]any)}
}

// Default returns the settings ofly ships with.
func Default() *Settings {
	s := New()
	s.Set(KindOfly, "log-level", "info")

	s.Set(KindFlight, "variant", "baseline")
	s.Set(KindFlight, "ascend-ladder", 0.1176)
	s.Set(KindFlight, "descend-ladder", 0.15)
	s.Set(KindFlight, "max-jump", 0.42)
	s.Set(KindFlight, "ascend-time", 7)

	s.Set(KindDetection, "max-violations", 15.0)
	s.Set(KindDetection, "fail-buffer", 5.0)
	s.Set(KindDetection, "max-buffer", 10.0)
	s.Set(KindDetection, "trust-duration", 200)
	s.Set(KindDetection, "punishable", true)
	return s
}

// Load reads settings from the file at path. Missing values are not filled in.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	s, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return s, nil
}

// LoadOrCreate reads settings from the file at path, writing the default settings to it first if it does
// not exist yet.
func LoadOrCreate(path string) (*Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Default().Write(path); err != nil {
			return nil, err
		}
	}
	return Load(path)
}

// Parse decodes settings from data in the given format. Every top-level table must be a table of values.
func Parse(data []byte, format Format) (*Settings, error) {
	var raw map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatINI:
		var err error
		if raw, err = parseINI(data); err != nil {
			return nil, err
		}
	default:
		tree, err := toml.LoadBytes(data)
		if err != nil {
			return nil, err
		}
		raw = tree.ToMap()
	}

	s := New()
	for kind, table := range raw {
		values, ok := table.(map[string]any)
		if !ok {
			return nil, oerror.New("settings: %q is not a table", kind)
		}
		for key, v := range values {
			s.Set(kind, key, v)
		}
	}
	return s, nil
}

// Write encodes the settings to the file at path, in the format matching its extension.
func (s *Settings) Write(path string) error {
	data, err := s.Marshal(FormatFromPath(path))
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Marshal encodes the settings in the given format.
func (s *Settings) Marshal(format Format) ([]byte, error) {
	s.mu.RLock()
	raw := make(map[string]any, len(s.values))
	for kind, values := range s.values {
		table := make(map[string]any, len(values))
		for k, v := range values {
			table[k] = v
		}
		raw[kind] = table
	}
	s.mu.RUnlock()

	switch format {
	case FormatYAML:
		return yaml.Marshal(raw)
	case FormatINI:
		return marshalINI(raw)
	}
	tree, err := toml.TreeFromMap(raw)
	if err != nil {
		return nil, err
	}
	str, err := tree.ToTomlString()
	return []byte(str), err
}

// Set sets the value of key for the given kind.
func (s *Settings) Set(kind, key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values[kind] == nil {
		s.values[kind] = make(map[string]any)
	}
	s.values[kind][key] = v
}

// Kinds returns the sorted kinds that have at least one value.
func (s *Settings) Kinds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kinds := make([]string, 0, len(s.values))
	for k := range s.values {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

func (s *Settings) value(kind, key string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[kind][key]
	if !ok {
		return nil, oerror.New("settings: %s.%s is not set", kind, key)
	}
	return v, nil
}

// Double returns the value of key as a float64.
func (s *Settings) Double(kind, key string) (float64, error) {
	v, err := s.value(kind, key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, oerror.New("settings: %s.%s is %T, not a number", kind, key, v)
}

// Int returns the value of key as an int. Floating point values are accepted if they hold a whole number.
func (s *Settings) Int(kind, key string) (int, error) {
	v, err := s.value(kind, key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, oerror.New("settings: %s.%s is %v, not a whole number", kind, key, v)
}

// String returns the value of key as a string.
func (s *Settings) String(kind, key string) (string, error) {
	v, err := s.value(kind, key)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", oerror.New("settings: %s.%s is %T, not a string", kind, key, v)
	}
	return str, nil
}

// Bool returns the value of key as a bool.
func (s *Settings) Bool(kind, key string) (bool, error) {
	v, err := s.value(kind, key)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, oerror.New("settings: %s.%s is %T, not a bool", kind, key, v)
	}
	return b, nil
}

// StringOr returns the string value of key, or def if it is not set or not a string.
func (s *Settings) StringOr(kind, key, def string) string {
	if str, err := s.String(kind, key); err == nil {
		return str
	}
	return def
}
