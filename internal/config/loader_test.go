package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dyad-exchange-lab/internal/domain"
)

const sampleJSON = `{
  "seed": 7,
  "num_agents": 20,
  "rounds": 3,
  "p2p_encounters_per_round": 15,
  "base_good": 0,
  "initial_endowment_scale": 2.0,
  "alpha_low": 0.3,
  "alpha_high": 0.7,
  "trade_step_cap_frac": 0.5,
  "min_qty": 1e-9,
  "oracle_bisect_iters": 60,
  "pairing_mode": "all_pairs_pruned",
  "candidate_goods_k": 4,
  "base_goods": ["base", "care", "repair"],
  "base_goods_quantity": 3,
  "reaction_rules": [
    {"id": "r1", "size_class": "small", "name": "assist", "lead": 1,
     "inputs": {"1": 1.0}, "outputs": {"2": 0.5}}
  ]
}`

const sampleYAML = `
seed: 7
num_agents: 20
rounds: 3
base_goods: [base, care, repair]
base_goods_quantity: 3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"cfg.json", FormatJSON, false},
		{"cfg.YAML", FormatYAML, false},
		{"dir/cfg.yml", FormatYAML, false},
		{"cfg.toml", "", true},
		{"cfg", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.err {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("%s: expected ErrUnsupportedFormat, got %v", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got (%q, %v), want %q", tt.path, got, err, tt.want)
		}
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "cfg.json", sampleJSON)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 20, cfg.NumAgents)
	assert.Equal(t, domain.PairingAllPairsPruned, cfg.PairingMode)
	assert.Equal(t, 4, cfg.CandidateGoodsK)
	assert.Equal(t, []string{"base", "care", "repair"}, cfg.Goods)
	assert.Equal(t, 0.5, cfg.TradeStepCapFrac)
	require.Len(t, cfg.ReactionRules, 1)
	out, ok := cfg.ReactionRules[0].Outputs.Get(2)
	assert.True(t, ok)
	assert.Equal(t, 0.5, out)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, "cfg.yaml", sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	def := domain.DefaultSimConfig()
	assert.Equal(t, 20, cfg.NumAgents)
	assert.Equal(t, def.OracleBisectIters, cfg.OracleBisectIters)
	assert.Equal(t, def.PairingMode, cfg.PairingMode)
	assert.Equal(t, domain.DefaultCandidateGoodsK, cfg.CandidateGoodsK)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "cfg.ini", "seed=1"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Load(writeFile(t, "bad.json", `{"seed": 1, "no_such_field": true}`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "no_such_field: 1\n"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RDX_SEED", "99")
	t.Setenv("RDX_ROUNDS", "11")
	t.Setenv("RDX_ENCOUNTERS_PER_ROUND", "5")
	t.Setenv("RDX_PAIRING_MODE", "all_pairs_pruned")
	t.Setenv("RDX_CANDIDATE_GOODS_K", "3")

	cfg := domain.DefaultSimConfig()
	require.NoError(t, ApplyEnvOverrides(&cfg))

	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, 11, cfg.Rounds)
	assert.Equal(t, 5, cfg.P2PEncountersPerRound)
	assert.Equal(t, domain.PairingAllPairsPruned, cfg.PairingMode)
	assert.Equal(t, 3, cfg.CandidateGoodsK)
}

func TestApplyEnvOverrides_Malformed(t *testing.T) {
	t.Setenv("RDX_SEED", "abc")
	t.Setenv("RDX_NUM_AGENTS", "not-a-number")
	t.Setenv("RDX_ROUNDS", "7")

	cfg := domain.DefaultSimConfig()
	err := ApplyEnvOverrides(&cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEnv))
	assert.Contains(t, err.Error(), "RDX_SEED")
	assert.Contains(t, err.Error(), "RDX_NUM_AGENTS")
	assert.Equal(t, domain.DefaultSimConfig().Seed, cfg.Seed, "malformed field keeps its value")
	assert.Equal(t, 7, cfg.Rounds)
}

func TestLoad_MalformedEnvFails(t *testing.T) {
	t.Setenv("RDX_SEED", "abc")

	_, err := Load(writeFile(t, "sim.yaml", "base_goods: [a, b]\nbase_goods_quantity: 2\n"))
	assert.True(t, errors.Is(err, ErrInvalidEnv))
}

func TestLoad_DoesNotReadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RDX_SEED=777\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("RDX_SEED", "")

	cfg, err := Load(writeFile(t, "sim.yaml", "base_goods: [a, b]\nbase_goods_quantity: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSimConfig().Seed, cfg.Seed)
}
