package ws

import (
	"bytes"
	"context"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/agata-borkowska-clark/reactorhttp/httpcore"
	"github.com/agata-borkowska-clark/reactorhttp/netio"
	"github.com/agata-borkowska-clark/reactorhttp/reactor"
)

func TestAcceptKeyKnownAnswer(t *testing.T) {
	// spec §8 scenario 6.
	const key = "dGhlIHNhbXBsZSBub25jZQ=="
	const want = "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got := AcceptKey(key); got != want {
		t.Errorf("AcceptKey(%q) = %q, want %q", key, got, want)
	}
}

func TestUpgradeValidationRejectsMissingKey(t *testing.T) {
	h := httpcore.Headers{}
	h.Set("Connection", "Upgrade")
	h.Set("Upgrade", "websocket")
	h.Set("Sec-WebSocket-Version", "13")
	if _, ok := valid(httpcore.MethodGet, h); ok {
		t.Error("expected validation to fail without Sec-WebSocket-Key")
	}
}

func TestUpgradeValidationAcceptsWellFormedRequest(t *testing.T) {
	h := httpcore.Headers{}
	h.Set("Connection", "keep-alive, Upgrade")
	h.Set("Upgrade", "websocket")
	h.Set("Sec-WebSocket-Version", "13")
	h.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	key, ok := valid(httpcore.MethodGet, h)
	if !ok {
		t.Fatal("expected validation to succeed")
	}
	if key != "dGhlIHNhbXBsZSBub25jZQ==" {
		t.Errorf("key = %q", key)
	}
}

// TestFrameRoundTrip exercises spec §8's framing invariant end to end over
// a real socket pair driven through the reactor: receive(send(T, P)) =
// (T, P), where the sender doesn't mask and the receiver expects masking,
// so the test masks the frame in between (spec §8's own caveat).
func TestFrameRoundTrip(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatal(err)
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		t.Fatal(err)
	}

	loop := reactor.NewEventLoop()
	err = loop.Run(context.Background(), func(ctx context.Context) error {
		serverSocket, err := netio.NewSocket(loop, fds[0])
		if err != nil {
			return err
		}
		serverStream := netio.NewStream(serverSocket)
		defer serverStream.Close()

		payload := []byte("ping")
		frame := encodeUnmaskedThenMask(t, Message{Type: FrameText, Payload: payload})
		if _, err := unix.Write(fds[1], frame); err != nil {
			return err
		}

		buf := make([]byte, 64)
		got, err := ReceiveMessage(ctx, serverStream, buf)
		if err != nil {
			return err
		}
		if got.Type != FrameText {
			t.Errorf("type = %v, want text", got.Type)
		}
		if !bytes.Equal(got.Payload, payload) {
			t.Errorf("payload = %q, want %q", got.Payload, payload)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	_ = unix.Close(fds[1])
}

// encodeUnmaskedThenMask builds the wire bytes SendMessage would produce,
// then applies a client-style mask on top — SendMessage itself always
// sends mask=0, but ReceiveMessage (server-side) requires mask=1, so the
// test plays the role of a masking client.
func encodeUnmaskedThenMask(t *testing.T, msg Message) []byte {
	t.Helper()
	var header [2]byte
	header[0] = 0x80 | byte(msg.Type)
	n := len(msg.Payload)
	if n >= 126 {
		t.Fatalf("test payload too large for the embedded-length fast path")
	}
	key := [4]byte{0x12, 0x34, 0x56, 0x78}
	header[1] = 0x80 | byte(n)

	masked := make([]byte, n)
	for i, b := range msg.Payload {
		masked[i] = b ^ key[i%4]
	}

	out := make([]byte, 0, 2+4+n)
	out = append(out, header[:]...)
	out = append(out, key[:]...)
	out = append(out, masked...)
	return out
}
