package ws

import (
	"context"
	"errors"
	"strings"

	"github.com/agata-borkowska-clark/reactorhttp/codec"
	"github.com/agata-borkowska-clark/reactorhttp/httpcore"
	"github.com/agata-borkowska-clark/reactorhttp/netio"
)

// guid is the RFC 6455 accept-key salt (spec §4.7/§6).
const guid = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// ErrBadUpgrade is returned by Upgrade when the request fails the
// handshake checks; the caller's connection is expected to close after
// the 400 response Upgrade has already written.
var ErrBadUpgrade = errors.New("ws: bad websocket upgrade request")

// valid checks the four conditions spec §4.7 lists, mirroring the
// original's websocket_handler.header() accumulation plus its run()
// validity check — generalized here into one pass over the already-parsed
// case-insensitive header map instead of a per-header callback, since
// httpcore parses the whole request up front rather than streaming headers
// to a virtual handler.
func valid(method httpcore.Method, h httpcore.Headers) (key string, ok bool) {
	if method != httpcore.MethodGet {
		return "", false
	}
	if !h.ContainsToken("Connection", "Upgrade") {
		return "", false
	}
	upgrade, hasUpgrade := h.Get("Upgrade")
	if !hasUpgrade || !strings.EqualFold(upgrade, "websocket") {
		return "", false
	}
	if !h.ContainsToken("Sec-WebSocket-Version", "13") {
		return "", false
	}
	key, hasKey := h.Get("Sec-WebSocket-Key")
	if !hasKey || key == "" {
		return "", false
	}
	return key, true
}

// AcceptKey computes base64(sha1(key + guid)), the value sent back in
// Sec-WebSocket-Accept.
func AcceptKey(key string) string {
	digest := codec.Sha1([]byte(key + guid))
	return codec.Encode(digest[:])
}

// Upgrade validates req as a websocket upgrade request and, on success,
// writes the 101 Switching Protocols response. On failure it writes the
// 400 Bad Upgrade response itself and returns ErrBadUpgrade, after which
// the caller closes the connection; on success the connection stays open
// for websocket framing (spec §4.7: "if any check fails, respond 400
// ... connection closes").
func Upgrade(ctx context.Context, stream *netio.Stream, method httpcore.Method, headers httpcore.Headers) error {
	key, ok := valid(method, headers)
	if !ok {
		body := []byte("Bad WebSocket Upgrade")
		resp := "HTTP/1.1 400 Bad Upgrade\r\n" +
			"Content-Type: text/plain\r\n" +
			"Content-Length: 21\r\n\r\n"
		if err := stream.Write(ctx, []byte(resp)); err != nil {
			return err
		}
		if err := stream.Write(ctx, body); err != nil {
			return err
		}
		return ErrBadUpgrade
	}

	accept := AcceptKey(key)
	resp := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n\r\n"
	return stream.Write(ctx, []byte(resp))
}
