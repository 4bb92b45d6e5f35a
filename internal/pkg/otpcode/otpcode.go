package otpcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// DefaultLength is the code width used when no length is configured.
	DefaultLength = 4

	minLength = 4
	maxLength = 10
)

// Generator produces one-time codes.
type Generator interface {
	// Generate returns a new code.
	Generate() (string, error)
	// Length returns the fixed code width in digits.
	Length() int
}

// Numeric implements Generator with uniformly distributed digit strings.
type Numeric struct {
	length int
	max    *big.Int
}

// NewNumeric constructs a Numeric generator with the given code width.
//
// Widths outside the supported range fall back to DefaultLength.
func NewNumeric(length int) *Numeric {
	if length < minLength || length > maxLength {
		length = DefaultLength
	}

	max := big.NewInt(10)
	max.Exp(max, big.NewInt(int64(length)), nil)

	return &Numeric{length: length, max: max}
}

// Generate returns a fixed-width numeric code drawn from crypto/rand.
//
// The result keeps leading zeros: with length 4 the value 92 renders "0092".
func (g *Numeric) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.max)
	if err != nil {
		return "", fmt.Errorf("otpcode: read random: %w", err)
	}

	return fmt.Sprintf("%0*d", g.length, n), nil
}

// Length returns the fixed code width in digits.
func (g *Numeric) Length() int {
	return g.length
}
