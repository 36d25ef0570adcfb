package cipher

import (
	"encoding/hex"
	"strings"

	"github.com/skobkin/cipherbridge/internal/bridge"
)

type OutputKind int

const (
	OutputText OutputKind = iota
	OutputHex
)

// Output is one result line ready to be shown to the user.
type Output struct {
	Kind  OutputKind
	Value string
}

// InterpretEncrypted shows printable lines as they are and everything else as hex.
// Lines the bridge already decoded as raw hex keep their value and are labelled
// OutputHex. Valid UTF-8 that is not printable ASCII (accented letters, control
// characters) is hex-encoded from its UTF-8 bytes, so "é" becomes "c3a9".
func InterpretEncrypted(lines []bridge.ReplyLine) []Output {
	out := make([]Output, 0, len(lines))
	for _, line := range lines {
		switch {
		case line.Kind == bridge.KindRawHex:
			out = append(out, Output{Kind: OutputHex, Value: line.Value})
		case IsPrintableASCII(line.Value):
			out = append(out, Output{Kind: OutputText, Value: line.Value})
		default:
			out = append(out, Output{Kind: OutputHex, Value: hex.EncodeToString([]byte(line.Value))})
		}
	}

	return out
}

// InterpretDecrypted splits every line on embedded line breaks and turns
// hex-looking segments back into ASCII. Other segments pass through.
func InterpretDecrypted(lines []bridge.ReplyLine) []Output {
	out := make([]Output, 0, len(lines))
	for _, line := range lines {
		for _, segment := range splitLineBreaks(line.Value) {
			if looksLikeHex(segment) {
				segment = HexToASCII(segment)
			}
			out = append(out, Output{Kind: OutputText, Value: segment})
		}
	}

	return out
}

// HexToASCII decodes pairs of hex digits and keeps only the bytes that are
// ASCII. Malformed pairs and a dangling digit are skipped.
func HexToASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s) / 2)
	for i := 0; i+1 < len(s); i += 2 {
		decoded, err := hex.DecodeString(s[i : i+2])
		if err != nil || decoded[0] >= 0x80 {
			continue
		}
		b.WriteByte(decoded[0])
	}

	return b.String()
}

func looksLikeHex(s string) bool {
	return len(s)%2 == 0 && IsHexDigits(s)
}

func splitLineBreaks(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == '\r'
	})
}
