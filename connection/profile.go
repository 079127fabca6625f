package connection

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
)

// SaveProfile writes a connection profile to disk as base64-encoded JSON.
// The encoding keeps credentials out of casual view; it is not encryption.
func SaveProfile(path string, c Config) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// LoadProfile reads a connection profile saved with SaveProfile.
func LoadProfile(path string) (Config, error) {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read profile: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse profile: %w", err)
	}
	cfg.SetDefaults()
	return cfg, nil
}
