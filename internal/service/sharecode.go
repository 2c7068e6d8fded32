package service

import (
	"crypto/rand"
	"math/big"
)

const (
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	shareCodeLength   = 8

	// attempts before a run of collisions is surfaced as ErrCodeCollision
	shareCodeAttempts = 3
)

// CodeGenerator produces public share codes. Tests substitute a
// scripted generator to force collisions.
type CodeGenerator interface {
	NewCode() (string, error)
}

type randomCodeGenerator struct{}

// NewCodeGenerator returns the production generator: 8 characters drawn
// from the 62-character alphanumeric alphabet via crypto/rand. The
// keyspace (62^8) makes guessing impractical; uniqueness is still
// enforced by the registry's constraint plus the retry loop.
func NewCodeGenerator() CodeGenerator { return randomCodeGenerator{} }

func (randomCodeGenerator) NewCode() (string, error) {
	buf := make([]byte, shareCodeLength)
	alphabetLen := big.NewInt(int64(len(shareCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
