// Package credentials hashes and verifies account passwords with bcrypt.
package credentials

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the credential store used by the identity directory.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) bool
	// Burn spends the cost of one failed verification.
	Burn(plaintext string)
}

// BcryptHasher produces salted, adaptive-cost digests. Every call to Hash
// yields a different digest for the same input; all of them verify.
type BcryptHasher struct {
	cost int

	// digest of a random string at cost, compared against by Burn
	dummy []byte
}

// NewBcryptHasher returns a hasher using cost, clamped to bcrypt's valid range.
// It hashes one random string up front, so construction costs one Hash call.
func NewBcryptHasher(cost int) *BcryptHasher {
	cost = clampCost(cost)

	dummy, err := bcrypt.GenerateFromPassword([]byte(rand.Text()), cost)
	if err != nil {
		panic(fmt.Errorf("bcrypt dummy digest: %w", err))
	}

	return &BcryptHasher{cost: cost, dummy: dummy}
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost {
		return bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}

func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", err
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests simply
// do not match. The comparison inside bcrypt is constant-time.
func (h *BcryptHasher) Verify(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Burn runs a verification at the hasher's cost that always fails, spending
// the same CPU on unknown accounts as on wrong passwords.
func (h *BcryptHasher) Burn(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}
