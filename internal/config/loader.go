// Package config loads simulation configurations from JSON or YAML files and
// applies RDX_* environment overrides.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"dyad-exchange-lab/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned for config files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidEnv is returned when an RDX_* override cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment override")
)

// Format identifies a config encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads the config file at path, merges it on top of the defaults and
// applies RDX_* environment overrides. Loading .env is left to the caller.
// The returned config has NOT been validated.
func Load(path string) (domain.SimConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.SimConfig{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SimConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Decode(data, format)
	if err != nil {
		return domain.SimConfig{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return domain.SimConfig{}, err
	}
	return cfg, nil
}

// Decode parses data in the given format on top of domain.DefaultSimConfig.
// Unknown fields are rejected.
func Decode(data []byte, format Format) (domain.SimConfig, error) {
	cfg := domain.DefaultSimConfig()

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return domain.SimConfig{}, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return domain.SimConfig{}, err
		}
	default:
		return domain.SimConfig{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return cfg, nil
}

// ApplyEnvOverrides overwrites fields whose RDX_* variable is set.
// A malformed value leaves cfg untouched for that field and is reported
// as an error wrapping ErrInvalidEnv. All variables are checked.
func ApplyEnvOverrides(cfg *domain.SimConfig) error {
	errs := []error{
		setUint64(&cfg.Seed, "RDX_SEED"),
		setInt(&cfg.NumAgents, "RDX_NUM_AGENTS"),
		setInt(&cfg.Rounds, "RDX_ROUNDS"),
		setInt(&cfg.P2PEncountersPerRound, "RDX_ENCOUNTERS_PER_ROUND"),
		setInt(&cfg.CandidateGoodsK, "RDX_CANDIDATE_GOODS_K"),
	}
	if v := os.Getenv("RDX_PAIRING_MODE"); v != "" {
		cfg.PairingMode = domain.PairingMode(v)
	}
	return errors.Join(errs...)
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidEnv, key, v)
	}
	*dst = n
	return nil
}

func setUint64(dst *uint64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalidEnv, key, v)
	}
	*dst = n
	return nil
}
