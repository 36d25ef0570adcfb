package cipher

import (
	"reflect"
	"testing"

	"github.com/skobkin/cipherbridge/internal/bridge"
)

func TestInterpretEncrypted(t *testing.T) {
	lines := []bridge.ReplyLine{
		bridge.Text("a1b2c3d4e5f60708a1b2c3d4e5f60708"),
		bridge.Text("é"),
		bridge.Text("OK\x07"),
		bridge.RawHex("8ea20a"),
	}

	got := InterpretEncrypted(lines)
	want := []Output{
		{Kind: OutputText, Value: "a1b2c3d4e5f60708a1b2c3d4e5f60708"},
		{Kind: OutputHex, Value: "c3a9"},
		{Kind: OutputHex, Value: "4f4b07"},
		{Kind: OutputHex, Value: "8ea20a"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestInterpretDecryptedHexBecomesASCII(t *testing.T) {
	got := InterpretDecrypted([]bridge.ReplyLine{bridge.Text("68656c6c6f20776f726c6421202020")})
	want := []Output{{Kind: OutputText, Value: "hello world!   "}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestInterpretDecryptedSplitsAndPassesThrough(t *testing.T) {
	got := InterpretDecrypted([]bridge.ReplyLine{
		bridge.Text("OK\r4869"),
		bridge.Text("abc"),
	})
	want := []Output{
		{Kind: OutputText, Value: "OK"},
		{Kind: OutputText, Value: "Hi"},
		{Kind: OutputText, Value: "abc"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestHexToASCIISkipsNonASCIIBytes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "414243", want: "ABC"},
		{in: "41ff42", want: "AB"},
		{in: "41zz42", want: "AB"},
		{in: "414", want: "A"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := HexToASCII(tt.in); got != tt.want {
			t.Fatalf("HexToASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
