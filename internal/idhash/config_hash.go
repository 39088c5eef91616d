package idhash

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"dyad-exchange-lab/internal/domain"
)

// ComputeConfigHash computes a deterministic hash of cfg.
// Formula: base58(SHA256(json(cfg))). Field order is fixed by the struct
// and map keys are sorted by encoding/json, so equal configs hash equally.
func ComputeConfigHash(cfg domain.SimConfig) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	hash := sha256.Sum256(data)
	return base58.Encode(hash[:]), nil
}
