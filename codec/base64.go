// Package codec implements the byte-exact codecs the WebSocket upgrade
// handshake depends on: a standard-alphabet base64 and a from-scratch
// SHA-1. Neither wraps encoding/base64 or crypto/sha1 — the wire contract
// in play here is small and fixed, and the handshake accept-key algorithm
// is part of the core being built rather than an external collaborator.
package codec

import "fmt"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var decodeTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = 0xFF
	}
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = byte(i)
	}
	return t
}()

// EncodedLen returns the number of bytes required to base64-encode n bytes
// of input, i.e. ceil(n/3)*4.
func EncodedLen(n int) int {
	return (n + 2) / 3 * 4
}

// DecodedLen returns the maximum number of bytes produced by decoding a
// base64 string of length n.
func DecodedLen(n int) int {
	return (n + 3) / 4 * 3
}

// Encode returns the base64 encoding of data using the standard alphabet
// and '=' padding.
func Encode(data []byte) string {
	buf := make([]byte, EncodedLen(len(data)))
	n := len(data)
	i, o := 0, 0
	for i+3 <= n {
		a, b, c := data[i], data[i+1], data[i+2]
		buf[o+0] = alphabet[0x3F&(a>>2)]
		buf[o+1] = alphabet[0x3F&(a<<4|b>>4)]
		buf[o+2] = alphabet[0x3F&(b<<2|c>>6)]
		buf[o+3] = alphabet[0x3F&c]
		i += 3
		o += 4
	}
	switch n - i {
	case 1:
		a := data[i]
		buf[o+0] = alphabet[0x3F&(a>>2)]
		buf[o+1] = alphabet[0x3F&(a<<4)]
		buf[o+2] = '='
		buf[o+3] = '='
		o += 4
	case 2:
		a, b := data[i], data[i+1]
		buf[o+0] = alphabet[0x3F&(a>>2)]
		buf[o+1] = alphabet[0x3F&(a<<4|b>>4)]
		buf[o+2] = alphabet[0x3F&(b<<2)]
		buf[o+3] = '='
		o += 4
	}
	return string(buf[:o])
}

// Decode decodes a base64 string using the standard alphabet. It rejects
// inputs whose length is not a multiple of 4.
func Decode(data string) ([]byte, error) {
	n := len(data)
	if n%4 != 0 {
		return nil, fmt.Errorf("codec: base64 input length %d is not a multiple of 4", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, DecodedLen(n))
	padding := 0
	if data[n-1] == '=' {
		padding = 1
		if data[n-2] == '=' {
			padding = 2
		}
	}
	lastFull := n
	if padding > 0 {
		lastFull = n - 4
	}
	i, o := 0, 0
	for i+4 <= lastFull {
		a, b, c, d := decodeTable[data[i]], decodeTable[data[i+1]], decodeTable[data[i+2]], decodeTable[data[i+3]]
		if a == 0xFF || b == 0xFF || c == 0xFF || d == 0xFF {
			return nil, fmt.Errorf("codec: invalid base64 character near offset %d", i)
		}
		buf[o+0] = a<<2 | b>>4
		buf[o+1] = b<<4 | c>>2
		buf[o+2] = c<<6 | d
		i += 4
		o += 3
	}
	switch padding {
	case 1:
		a, b, c := decodeTable[data[i]], decodeTable[data[i+1]], decodeTable[data[i+2]]
		if a == 0xFF || b == 0xFF || c == 0xFF {
			return nil, fmt.Errorf("codec: invalid base64 character near offset %d", i)
		}
		buf[o+0] = a<<2 | b>>4
		buf[o+1] = b<<4 | c>>2
		o += 2
	case 2:
		a, b := decodeTable[data[i]], decodeTable[data[i+1]]
		if a == 0xFF || b == 0xFF {
			return nil, fmt.Errorf("codec: invalid base64 character near offset %d", i)
		}
		buf[o+0] = a<<2 | b>>4
		o += 1
	}
	return buf[:o], nil
}
