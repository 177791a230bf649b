package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration for stt, stored in ~/.stt/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Stats   StatsConfig   `json:"stats"`
	Log     LogConfig     `json:"log"`
}

// StorageConfig selects where study data lives.
type StorageConfig struct {
	// Backend is "sqlite" (default), "file" or "memory".
	Backend string `json:"backend"`
	// Path is the data directory. Empty = the stt home directory.
	Path string `json:"path"`
}

// StatsConfig tunes the aggregated views.
type StatsConfig struct {
	// WindowDays is the trailing window for the "last N days" total and
	// the daily chart.
	WindowDays int `json:"window_days"`
	// MaxSubjects caps the subject chart.
	MaxSubjects int `json:"max_subjects"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level string `json:"level"`
}

const (
	DefaultBackend     = "sqlite"
	DefaultWindowDays  = 7
	DefaultMaxSubjects = 6
	DefaultLogLevel    = "warn"

	// HomeEnv overrides the stt home directory (~/.stt).
	HomeEnv = "STT_HOME"
)

// Default returns a Config pre-filled with sensible defaults.
func Default() Config {
	return Config{
		Storage: StorageConfig{Backend: DefaultBackend},
		Stats: StatsConfig{
			WindowDays:  DefaultWindowDays,
			MaxSubjects: DefaultMaxSubjects,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// stt configuration – ~/.stt/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Edit this file to customise stt behaviour.
{
  // ── Storage ──────────────────────────────────────────────────────────────
  "storage": {
    // Where study data is kept.
    // • "sqlite" – a single stt.db database file (default)
    // • "file"   – one JSON file per key, easy to inspect by hand
    "backend": "sqlite",

    // Data directory. Leave empty to use the stt home directory.
    "path": ""
  },

  // ── Statistics ───────────────────────────────────────────────────────────
  "stats": {
    // Length of the trailing "last N days" window and of the daily chart.
    "window_days": 7,

    // Number of subjects shown in the subject chart.
    "max_subjects": 6
  },

  // ── Logging ──────────────────────────────────────────────────────────────
  "log": {
    // debug, info, warn or error. --verbose forces debug.
    "level": "warn"
  }
}
`

// HomeDir returns the stt home directory: $STT_HOME or ~/.stt.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".stt"), nil
}

// DataDir returns the directory handed to the storage backend.
func (c Config) DataDir() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	return HomeDir()
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads config.json from the stt home directory, creating it with
// annotated defaults on first run.
func Load() (Config, error) {
	home, err := HomeDir()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(filepath.Join(home, "config.json"))
}

// LoadFrom reads the config file at path, creating it with annotated
// defaults when missing. Zero-valued fields fall back to defaults.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	if cfg.Stats.WindowDays <= 0 {
		cfg.Stats.WindowDays = DefaultWindowDays
	}
	if cfg.Stats.MaxSubjects <= 0 {
		cfg.Stats.MaxSubjects = DefaultMaxSubjects
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
