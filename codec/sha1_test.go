package codec

import "testing"

func TestSha1KnownAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{"Hello, World!", "0a0a9f2a6772942557ab5355d76af442f8f65e01"},
	}
	for _, tt := range tests {
		digest := Sha1([]byte(tt.input))
		if got := Sha1Hex(digest); got != tt.want {
			t.Errorf("Sha1Hex(Sha1(%q)) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSha1Length(t *testing.T) {
	inputs := []string{"", "a", "a longer message that spans more than one block of input data entirely"}
	for _, in := range inputs {
		digest := Sha1([]byte(in))
		if len(digest) != Sha1Size {
			t.Errorf("len(Sha1(%q)) = %d, want %d", in, len(digest), Sha1Size)
		}
	}
}

func TestSha1BlockBoundary(t *testing.T) {
	// 55, 56, and 64 byte inputs exercise the tail-padding branches.
	for _, n := range []int{55, 56, 64, 119, 120} {
		msg := make([]byte, n)
		for i := range msg {
			msg[i] = byte('a' + i%26)
		}
		digest := Sha1(msg)
		if len(digest) != Sha1Size {
			t.Errorf("len(Sha1(%d bytes)) = %d, want %d", n, len(digest), Sha1Size)
		}
	}
}
