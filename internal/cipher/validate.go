package cipher

import (
	"strings"
	"unicode/utf8"
)

// printableASCII mirrors the classic "printable" set: digits, letters,
// punctuation and whitespace (space, \t, \n, \r, \v, \f).
const printableASCII = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~" +
	" \t\n\r\v\f"

// IsPrintableASCII reports whether every character of s is printable ASCII.
// The empty string is printable.
func IsPrintableASCII(s string) bool {
	for _, r := range s {
		if r >= utf8.RuneSelf || !strings.ContainsRune(printableASCII, r) {
			return false
		}
	}

	return true
}

// IsHexDigits reports whether s is non-empty and made only of hex digits, in either case.
func IsHexDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}

	return true
}

// ValidatePlaintext accepts exactly 16 characters.
func ValidatePlaintext(msg string) error {
	if n := utf8.RuneCountInString(msg); n != PlaintextLen {
		return newValidationError(OpEncrypt, n, "The message must be exactly %d characters long.", PlaintextLen)
	}

	return nil
}

// ValidateCiphertext accepts exactly 32 hex characters (16 bytes).
func ValidateCiphertext(msg string) error {
	n := utf8.RuneCountInString(msg)
	if n != CiphertextLen {
		return newValidationError(OpDecrypt, n, "The message must be exactly %d characters long in HEX format.", CiphertextLen)
	}
	if !IsHexDigits(msg) {
		return newValidationError(OpDecrypt, n, "The message must contain only HEX digits (0-9, a-f).")
	}

	return nil
}
