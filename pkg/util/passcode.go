package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var ErrEmptyPasscode = errors.New("passcode must not be empty")

// HashPasscode hashes the back-office passcode with bcrypt.
func HashPasscode(passcode string) (string, error) {
	if passcode == "" {
		return "", ErrEmptyPasscode
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPasscode reports whether passcode matches hash.
func VerifyPasscode(hash, passcode string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)) == nil
}

// NeedsRehash reports whether hash was produced with a weaker cost than the
// current one, or is not a bcrypt hash at all.
func NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost < bcryptCost
}
