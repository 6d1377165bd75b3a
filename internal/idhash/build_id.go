package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeBuildID computes a deterministic build identifier using SHA256.
// Formula: SHA256(asset_id|build_year|kind)
// Returns hex-encoded hash (64 characters).
func ComputeBuildID(assetID string, buildYear int, kind string) string {
	data := fmt.Sprintf("%s|%d|%s", assetID, buildYear, kind)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
