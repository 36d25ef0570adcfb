package bridge

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// ReplyKind tells how a reply line was decoded.
type ReplyKind int

const (
	// KindText is a line that was valid UTF-8, whitespace-trimmed.
	KindText ReplyKind = iota
	// KindRawHex is a line that was not valid UTF-8, kept as lowercase hex of its raw bytes.
	KindRawHex
)

func (k ReplyKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRawHex:
		return "raw_hex"
	default:
		return "unknown"
	}
}

// ReplyLine is one decoded line received from the device.
type ReplyLine struct {
	Kind  ReplyKind
	Value string
}

func Text(s string) ReplyLine {
	return ReplyLine{Kind: KindText, Value: s}
}

func RawHex(s string) ReplyLine {
	return ReplyLine{Kind: KindRawHex, Value: s}
}

func (l ReplyLine) String() string {
	return l.Value
}

// DecodeLine never fails: bytes that are not valid UTF-8 become a hex dump of
// the whole line, terminator included.
func DecodeLine(raw []byte) ReplyLine {
	if utf8.Valid(raw) {
		return Text(strings.TrimSpace(string(raw)))
	}

	return RawHex(hex.EncodeToString(raw))
}

// Values returns the plain string of every line, in order.
func Values(lines []ReplyLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Value)
	}

	return out
}
