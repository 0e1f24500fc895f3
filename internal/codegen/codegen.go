// Package codegen produces short human-readable codes for classes, rooms and
// exam codes.
package codegen

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

const (
	// Alphabet holds the 36 symbols codes are drawn from.
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// Length is the number of symbols in a generated code.
	Length = 6
	// MaxAttempts bounds the number of random draws before falling back.
	MaxAttempts = 10
	// MaxSequence is the largest index Sequential can format in three digits.
	MaxSequence = 999
	// suffixDigits is how many low-order timestamp digits the fallback appends.
	suffixDigits = 4
)

// ExistsFunc reports whether a code is already taken in its uniqueness scope.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Generator draws codes from a random source.
type Generator struct {
	source io.Reader
	now    func() time.Time
}

// New creates a Generator backed by crypto/rand and the wall clock.
func New() *Generator {
	return NewWithSource(rand.Reader, time.Now)
}

// NewWithSource creates a Generator with an explicit entropy source and clock.
func NewWithSource(source io.Reader, now func() time.Time) *Generator {
	return &Generator{source: source, now: now}
}

// Generate returns a code for which exists reports false. After MaxAttempts
// collisions the last candidate is suffixed with the low-order digits of the
// current timestamp, so the call always terminates.
func (g *Generator) Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	var candidate string
	for range MaxAttempts {
		c, err := g.candidate()
		if err != nil {
			return "", err
		}
		candidate = c

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check code %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}

	ms := g.now().UnixMilli()
	return fmt.Sprintf("%s%0*d", candidate, suffixDigits, ms%10000), nil
}

func (g *Generator) candidate() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	var b strings.Builder
	b.Grow(Length)
	for range Length {
		n, err := rand.Int(g.source, max)
		if err != nil {
			return "", fmt.Errorf("draw code symbol: %w", err)
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Sequential formats the index-th code of a batch as <prefix><3-digit index>.
// index must lie in 1..MaxSequence.
func Sequential(prefix string, index int) string {
	return fmt.Sprintf("%s%03d", prefix, index)
}
