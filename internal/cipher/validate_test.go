package cipher

import (
	"errors"
	"testing"
)

func TestIsPrintableASCII(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "", want: true},
		{in: "hello world!", want: true},
		{in: "tab\tand\r\nbreaks\v\f", want: true},
		{in: "a1b2c3d4e5f60708a1b2c3d4e5f60708", want: true},
		{in: "bell\a", want: false},
		{in: "null\x00", want: false},
		{in: "café", want: false},
	}

	for _, tt := range tests {
		if got := IsPrintableASCII(tt.in); got != tt.want {
			t.Fatalf("IsPrintableASCII(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsHexDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "", want: false},
		{in: "00ff", want: true},
		{in: "DEADbeef", want: true},
		{in: "0x10", want: false},
		{in: "12 34", want: false},
		{in: "g0", want: false},
	}

	for _, tt := range tests {
		if got := IsHexDigits(tt.in); got != tt.want {
			t.Fatalf("IsHexDigits(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidatePlaintext(t *testing.T) {
	if err := ValidatePlaintext("exactly16chars!!"); err != nil {
		t.Fatalf("expected valid plaintext, got %v", err)
	}

	for _, msg := range []string{"", "short", "this one is far too long"} {
		err := ValidatePlaintext(msg)
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("ValidatePlaintext(%q): expected ErrValidation, got %v", msg, err)
		}
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Op != OpEncrypt {
			t.Fatalf("expected encrypt validation error, got %#v", err)
		}
	}
}

func TestValidateCiphertext(t *testing.T) {
	if err := ValidateCiphertext("8EA2B7CA516745BFEAFC49904B496089"); err != nil {
		t.Fatalf("expected valid ciphertext, got %v", err)
	}

	tests := []string{
		"8ea2b7ca516745bfeafc49904b4960",
		"8ea2b7ca516745bfeafc49904b49608900",
		"zzzzb7ca516745bfeafc49904b496089",
	}
	for _, msg := range tests {
		err := ValidateCiphertext(msg)
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Op != OpDecrypt {
			t.Fatalf("ValidateCiphertext(%q): expected decrypt validation error, got %v", msg, err)
		}
	}
}
