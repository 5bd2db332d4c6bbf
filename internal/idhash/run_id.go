package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"solana-metadata-lab/internal/domain"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(program_id|mode|started_at|accounts_total)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(
	programID string,
	mode domain.RunMode,
	startedAt int64,
	accountsTotal int,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d",
		programID,
		string(mode),
		startedAt,
		accountsTotal,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
