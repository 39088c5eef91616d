// Package idhash derives deterministic identifiers for runs and events.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeEventID computes a deterministic event_id using SHA256.
// Formula: SHA256(run_id|seq|round|i|j)
// Returns hex-encoded hash (64 characters).
func ComputeEventID(runID string, seq, round, i, j int) string {
	data := fmt.Sprintf("%s|%d|%d|%d|%d", runID, seq, round, i, j)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
