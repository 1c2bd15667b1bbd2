// Package sessionid generates session identifiers in the two formats the
// feedback system uses: long random public IDs for anonymous sessions and
// short human-shareable codes for authenticated ones.
package sessionid

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// shortAlphabet is the 32-symbol code alphabet. It excludes visually
// ambiguous characters (no 0/O, no 1/I).
const shortAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const shortLength = 6

// maxAttempts bounds the collision retry loop in UniqueShortCode.
const maxAttempts = 5

// ErrSpaceExhausted is returned when UniqueShortCode fails to find an unused
// code within maxAttempts draws.
var ErrSpaceExhausted = errors.New("sessionid: no unused short code found")

// PublicID returns a globally unique identifier for an anonymous session.
// With 122 bits of randomness no uniqueness check against the store is needed.
func PublicID() string {
	return uuid.NewString()
}

// ShortCode returns a 6-character code drawn uniformly from shortAlphabet.
// The alphabet size divides 256, so reducing random bytes modulo the
// alphabet length introduces no bias.
func ShortCode() (string, error) {
	b := make([]byte, shortLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	code := make([]byte, shortLength)
	for i, v := range b {
		code[i] = shortAlphabet[int(v)%len(shortAlphabet)]
	}
	return string(code), nil
}

// UniqueShortCode draws short codes until exists reports one as unused.
// It fails closed with ErrSpaceExhausted after maxAttempts collisions rather
// than inserting a duplicate identifier.
func UniqueShortCode(exists func(string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := ShortCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(code)
		if err != nil {
			return "", fmt.Errorf("check short code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrSpaceExhausted
}
