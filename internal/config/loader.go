package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var userHomeDir = os.UserHomeDir

const configDirName = ".lighthouse"

// Path returns the config file location, or "" when no home directory is
// resolvable.
func Path() string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, configDirName, "config.json")
}

// Load reads the stored config (if any) and merges it with environment
// overrides.
func Load() (ResolvedConfig, error) {
	raw, _, err := loadConfigFile(Path())
	if err != nil {
		return ResolvedConfig{}, err
	}
	env := Env{
		APIBase: os.Getenv("LIGHTHOUSE_API_BASE"),
		Token:   os.Getenv("LIGHTHOUSE_TOKEN"),
	}
	return Resolve(raw, env), nil
}

func loadConfigFile(path string) (RawConfig, bool, error) {
	if path == "" {
		return RawConfig{}, false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, false, nil
		}
		return RawConfig{}, false, fmt.Errorf("read config %s: %w", path, err)
	}

	// A corrupt or future-schema file behaves as if absent; settings
	// commands will rewrite it in the current shape.
	dec := json.NewDecoder(bytes.NewReader(b))
	var cfg RawConfig
	if err := dec.Decode(&cfg); err != nil {
		return RawConfig{}, false, nil
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return RawConfig{}, false, nil
	}
	if cfg.SchemaVersion != nil && *cfg.SchemaVersion != SchemaVersion {
		return RawConfig{}, false, nil
	}
	return cfg, true, nil
}

// Save writes the raw config atomically, creating the directory on first
// use.
func Save(raw RawConfig) error {
	path := Path()
	if path == "" {
		return errors.New("cannot resolve home directory for config")
	}
	version := SchemaVersion
	raw.SchemaVersion = &version

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')
	return atomicWriteFile(path, data, 0o600)
}

// SetToken stores (or with an empty value clears) the bearer token,
// preserving other keys.
func SetToken(token string) error {
	raw, _, err := loadConfigFile(Path())
	if err != nil {
		return err
	}
	if token == "" {
		raw.Token = nil
	} else {
		raw.Token = &token
	}
	return Save(raw)
}
