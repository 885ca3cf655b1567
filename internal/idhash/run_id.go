package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(input_digest|as_of_unix_nanos)
// Returns hex-encoded hash (64 characters).
//
// Wallet age depends on as-of time, so the same input scored at a
// different as-of is a different run.
func ComputeRunID(inputDigest string, asOf time.Time) string {
	data := fmt.Sprintf("%s|%d", inputDigest, asOf.UnixNano())

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
