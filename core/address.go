package core

import (
	"bytes"
	"crypto/sha256"
	"regexp"

	"github.com/mr-tron/base58"
)

const (
	accountIDVersion = 0x00
	accountIDLength  = 20
	checksumLength   = 4
)

var (
	addressPattern = regexp.MustCompile(`^r[1-9A-HJ-NP-Za-km-z]{24,34}$`)
	rippleAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")
)

// IsValidAddress reports whether address is a classic XRP Ledger account
// address with a valid checksum.
func IsValidAddress(address string) bool {
	if !addressPattern.MatchString(address) {
		return false
	}

	decoded, err := base58.DecodeAlphabet(address, rippleAlphabet)
	if err != nil {
		return false
	}
	if len(decoded) != 1+accountIDLength+checksumLength || decoded[0] != accountIDVersion {
		return false
	}

	payload := decoded[:len(decoded)-checksumLength]
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	return bytes.Equal(second[:checksumLength], decoded[len(decoded)-checksumLength:])
}
