// Package signature provides the digest and proof of work primitives
// shared by every node on the network.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
)

// fields is the canonical encoding that gets hashed for a block. The
// keys are declared in lexicographic order and must never be reordered
// or renamed, or nodes will disagree on every digest.
type fields struct {
	ID        uint64 `json:"id"`
	Nonce     uint64 `json:"nonce"`
	Payload   string `json:"payload"`
	PrevHash  string `json:"previous_hash"`
	Timestamp int64  `json:"timestamp"`
}

// Hash computes the digest over the canonical encoding of the block
// fields. Identical inputs always produce identical output, across all
// nodes and runs.
func Hash(id uint64, timestamp int64, prevHash string, payload string, nonce uint64) []byte {
	f := fields{
		ID:        id,
		Nonce:     nonce,
		Payload:   payload,
		PrevHash:  prevHash,
		Timestamp: timestamp,
	}

	// Marshaling a flat struct of integers and strings can't fail.
	data, _ := json.Marshal(f)

	digest := sha256.Sum256(data)
	return digest[:]
}

// HashHex computes the digest and returns its hex encoding, the form
// stored in a block.
func HashHex(id uint64, timestamp int64, prevHash string, payload string, nonce uint64) string {
	return hex.EncodeToString(Hash(id, timestamp, prevHash, payload, nonce))
}

// ToBinary renders each digest byte in binary WITHOUT zero padding and
// concatenates the results, so byte value 5 becomes "101" and not
// "00000101". Every node must use this exact convention or proof of
// work checks diverge across implementations.
func ToBinary(digest []byte) string {
	var sb strings.Builder
	for _, b := range digest {
		sb.WriteString(strconv.FormatUint(uint64(b), 2))
	}
	return sb.String()
}

// Solved reports whether the binary expansion of the digest starts with
// the difficulty prefix.
func Solved(difficultyPrefix string, digest []byte) bool {
	return strings.HasPrefix(ToBinary(digest), difficultyPrefix)
}

// IsHashSolved checks a hex encoded hash against the difficulty prefix.
// A hash that can't be decoded is never solved.
func IsHashSolved(difficultyPrefix string, hexHash string) bool {
	digest, err := hex.DecodeString(hexHash)
	if err != nil {
		return false
	}
	return Solved(difficultyPrefix, digest)
}
