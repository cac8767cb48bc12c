package screenconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file over Default() and returns the config with the raw bytes.
// Unknown keys are rejected so that typos fail loudly.
func Load(path string) (Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, nil, fmt.Errorf("read screen config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, data, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, data, nil
}

// Parse decodes YAML over Default() and validates the result.
// Keys that are absent keep their default; explicit null clears optional limits.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}

	cfg.Universe.Name = strings.ToUpper(strings.TrimSpace(cfg.Universe.Name))

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Hash returns the SHA256 of the canonical JSON encoding
func Hash(cfg Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
