package codec

import "testing"

func TestEncodeKnownAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello, World!", "SGVsbG8sIFdvcmxkIQ=="},
		{"length % 3 == 0", "bGVuZ3RoICUgMyA9PSAw"},
	}
	for _, tt := range tests {
		if got := Encode([]byte(tt.input)); got != tt.want {
			t.Errorf("Encode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"", "a", "ab", "abc", "abcd", "The quick brown fox jumps over the lazy dog"}
	for _, in := range inputs {
		enc := Encode([]byte(in))
		if got, want := len(enc), EncodedLen(len(in)); got != want {
			t.Errorf("EncodedLen(%d) = %d, len(Encode) = %d", len(in), want, got)
		}
		dec, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%q) returned error: %v", enc, err)
		}
		if string(dec) != in {
			t.Errorf("round trip of %q produced %q", in, dec)
		}
	}
}

func TestDecodeRejectsBadLength(t *testing.T) {
	if _, err := Decode("abcde"); err == nil {
		t.Error("expected error decoding a non-multiple-of-4 length string")
	}
}

func TestDecodeRejectsInvalidCharacter(t *testing.T) {
	if _, err := Decode("ab!="); err == nil {
		t.Error("expected error decoding a string with an invalid character")
	}
}
