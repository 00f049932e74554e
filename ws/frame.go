// Package ws implements the RFC 6455 upgrade handshake and the
// unfragmented-subset frame codec of spec §4.7. Grounded on
// original_source/src/util/websocket.h/.cc for exact bit-level field order,
// cross-checked against momentics-hioload-ws's frame_codec.go/handshake.go
// for Go bit-manipulation idiom.
package ws

import (
	"context"
	"encoding/binary"

	"github.com/agata-borkowska-clark/reactorhttp/netio"
	"github.com/agata-borkowska-clark/reactorhttp/status"
)

// FrameType is the websocket.frame_type enum of the original, limited to
// the unfragmented subset spec §4.7 actually specifies.
type FrameType byte

const (
	FrameContinuation FrameType = 0
	FrameText         FrameType = 1
	FrameBinary       FrameType = 2
	FrameClose        FrameType = 8
	FramePing         FrameType = 9
	FramePong         FrameType = 10
)

func (t FrameType) String() string {
	switch t {
	case FrameContinuation:
		return "continuation"
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FrameClose:
		return "close"
	case FramePing:
		return "ping"
	case FramePong:
		return "pong"
	default:
		return "<unknown>"
	}
}

// Message is a single received/sent websocket frame's logical payload.
type Message struct {
	Type    FrameType
	Payload []byte
}

type frameHeader struct {
	fin           bool
	rsv           byte
	opcode        FrameType
	mask          bool
	payloadLength uint64
	maskingKey    [4]byte
}

// readFrameHeader reads the 2-byte prefix plus whichever extended-length
// and masking-key fields it implies, exactly matching the original's
// read_frame_header two-stage length extension.
func readFrameHeader(ctx context.Context, stream *netio.Stream) (frameHeader, error) {
	prefix, st, err := stream.ReadExact(ctx, 2)
	if err != nil {
		return frameHeader{}, err
	}
	if st.Failure() {
		return frameHeader{}, status.ExhaustedStatus
	}

	var h frameHeader
	h.fin = prefix[0]&0x80 != 0
	h.rsv = (prefix[0] >> 4) & 0x7
	h.opcode = FrameType(prefix[0] & 0xF)
	h.mask = prefix[1]&0x80 != 0
	h.payloadLength = uint64(prefix[1] & 0x7F)

	switch h.payloadLength {
	case 126:
		ext, st, err := stream.ReadExact(ctx, 2)
		if err != nil {
			return frameHeader{}, err
		}
		if st.Failure() {
			return frameHeader{}, status.ExhaustedStatus
		}
		h.payloadLength = uint64(binary.BigEndian.Uint16(ext))
	case 127:
		ext, st, err := stream.ReadExact(ctx, 8)
		if err != nil {
			return frameHeader{}, err
		}
		if st.Failure() {
			return frameHeader{}, status.ExhaustedStatus
		}
		h.payloadLength = binary.BigEndian.Uint64(ext)
	}

	if h.mask {
		key, st, err := stream.ReadExact(ctx, 4)
		if err != nil {
			return frameHeader{}, err
		}
		if st.Failure() {
			return frameHeader{}, status.ExhaustedStatus
		}
		copy(h.maskingKey[:], key)
	}

	return h, nil
}

// ReceiveMessage reads one frame into buf, unmasking in place. Client
// frames must be masked; rsv must be zero; a payload larger than buf is
// exhausted rather than a short read (spec §4.7 Receive).
func ReceiveMessage(ctx context.Context, stream *netio.Stream, buf []byte) (Message, error) {
	header, err := readFrameHeader(ctx, stream)
	if err != nil {
		return Message{}, err
	}
	if header.rsv != 0 {
		return Message{}, status.ClientErrorf("rsv is nonzero")
	}
	if !header.mask {
		return Message{}, status.ClientErrorf("client frames must be masked")
	}
	if header.payloadLength > uint64(len(buf)) {
		return Message{}, status.ExhaustedStatus
	}

	payload := buf[:header.payloadLength]
	read, st, err := stream.ReadExact(ctx, int(header.payloadLength))
	if err != nil {
		return Message{}, err
	}
	if st.Failure() {
		return Message{}, status.ExhaustedStatus
	}
	copy(payload, read)

	for i := range payload {
		payload[i] ^= header.maskingKey[i%4]
	}

	return Message{Type: header.opcode, Payload: payload}, nil
}

// SendMessage writes msg unmasked (fin=1, rsv=0, mask=0), choosing the
// shortest length encoding that fits (spec §4.7 Send).
func SendMessage(ctx context.Context, stream *netio.Stream, msg Message) error {
	var header [10]byte
	header[0] = 0x80 | byte(msg.Type)

	var headerLen int
	n := len(msg.Payload)
	switch {
	case n < 126:
		header[1] = byte(n)
		headerLen = 2
	case n < 65536:
		header[1] = 126
		binary.BigEndian.PutUint16(header[2:4], uint16(n))
		headerLen = 4
	default:
		header[1] = 127
		binary.BigEndian.PutUint64(header[2:10], uint64(n))
		headerLen = 10
	}

	if err := stream.Write(ctx, header[:headerLen]); err != nil {
		return err
	}
	return stream.Write(ctx, msg.Payload)
}
