package otpcode

import (
	"strings"
	"testing"
)

func TestNewNumeric(t *testing.T) {

	t.Run("ClampsUnsupportedWidths", func(t *testing.T) {

		// Arrange
		cases := []int{-1, 0, 3, 11}

		// Act & Assert
		for _, length := range cases {
			if got := NewNumeric(length).Length(); got != DefaultLength {
				t.Fatalf("length %d: expected fallback %d, got %d", length, DefaultLength, got)
			}
		}
	})

	t.Run("KeepsSupportedWidths", func(t *testing.T) {

		// Arrange
		cases := []int{4, 6, 10}

		// Act & Assert
		for _, length := range cases {
			if got := NewNumeric(length).Length(); got != length {
				t.Fatalf("expected length %d, got %d", length, got)
			}
		}
	})
}

func TestNumericGenerate(t *testing.T) {

	t.Run("FixedWidthDigitsOnly", func(t *testing.T) {

		// Arrange
		gen := NewNumeric(4)

		// Act & Assert
		for range 200 {
			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(code) != 4 {
				t.Fatalf("expected 4 characters, got %q", code)
			}
			if strings.Trim(code, "0123456789") != "" {
				t.Fatalf("expected digits only, got %q", code)
			}
		}
	})

	t.Run("NotConstant", func(t *testing.T) {

		// Arrange
		gen := NewNumeric(6)
		seen := map[string]struct{}{}

		// Act
		for range 50 {
			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			seen[code] = struct{}{}
		}

		// Assert
		if len(seen) < 2 {
			t.Fatalf("expected varied codes, got %d distinct value(s)", len(seen))
		}
	})
}
