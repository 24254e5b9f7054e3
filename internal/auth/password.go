// Package auth isolates credential handling behind a Verifier so the
// store never compares passwords itself.
package auth

import "golang.org/x/crypto/bcrypt"

// Verifier hashes passwords for storage and checks candidates against a
// stored value.
type Verifier interface {
	Hash(password string) (string, error)
	Verify(password, stored string) bool
}

// Plain stores and compares passwords verbatim. It reproduces the
// original demo's behavior and is unsuitable beyond local use.
type Plain struct{}

func (Plain) Hash(password string) (string, error) { return password, nil }

func (Plain) Verify(password, stored string) bool { return password == stored }

// Bcrypt stores salted bcrypt hashes.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (b Bcrypt) Verify(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
