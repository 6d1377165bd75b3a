package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// ComputeRunID computes a deterministic, path-safe run identifier.
// Formula: base58(SHA256(scenario|started_at_ms)[:16])
// Run ids appear in report paths and log lines, so they are kept short.
func ComputeRunID(scenario string, startedAtMs int64) string {
	data := fmt.Sprintf("%s|%d", scenario, startedAtMs)
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:16])
}
