package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// ReferencePrefix starts every bank transfer reference.
const ReferencePrefix = "GYL-MEM-"

// GenerateBankTransferReference returns ReferencePrefix followed by 8
// uppercase hex characters. That is 32 random bits, so a collision becomes
// likely (50%) around 77,000 references. Uniqueness is not checked here; the
// members table stores the reference and a duplicate only costs a manual
// payment match.
func GenerateBankTransferReference() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return ReferencePrefix + strings.ToUpper(hex.EncodeToString(b[:])), nil
}
