package term

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTerm is the hash domain prefix for term content addresses.
// Version suffix enables future algorithm migration.
const DomainTerm = "unumpy/term/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash computes the content address of t from its canonical encoding.
// Structurally equal terms whose host values share a type have equal hashes.
func Hash(t Term) (string, error) {
	canonical, err := MarshalCanonical(t)
	if err != nil {
		return "", fmt.Errorf("Hash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTerm, canonical), nil
}

// MustHash is like Hash but panics on error.
func MustHash(t Term) string {
	h, err := Hash(t)
	if err != nil {
		panic(err)
	}
	return h
}
