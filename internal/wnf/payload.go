package wnf

import (
	"fmt"
	"strconv"
	"strings"
)

// PayloadSize is the byte length of a quiet moment mode payload.
const PayloadSize = 4

// Payload is the raw data written to QuietMomentShellModeChanged. Its
// bit-level meaning is not known.
type Payload [PayloadSize]byte

// The two payloads with confirmed effect.
var (
	PayloadDisable = Payload{0x00, 0x00, 0x00, 0x00}
	PayloadEnable  = Payload{0xFF, 0xFF, 0xFF, 0xFF}
)

// NewPayload builds a payload from exactly four integers in 0..255.
func NewPayload(values []int) (Payload, error) {
	var p Payload
	if len(values) != PayloadSize {
		return p, fmt.Errorf("%w: want %d elements, got %d", ErrInvalidPayload, PayloadSize, len(values))
	}
	for i, v := range values {
		if v < 0 || v > 0xFF {
			return p, fmt.Errorf("%w: element %d out of byte range: %d", ErrInvalidPayload, i, v)
		}
		p[i] = byte(v)
	}
	return p, nil
}

// ParsePayload parses a comma separated list such as "255,255,255,255" or
// "0xff,0,0,0".
func ParsePayload(s string) (Payload, error) {
	fields := strings.Split(s, ",")
	values := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 0, 64)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: %q: %v", ErrInvalidPayload, f, err)
		}
		values = append(values, int(v))
	}
	return NewPayload(values)
}

// Bytes returns the payload as a slice backed by a fresh array.
func (p Payload) Bytes() []byte {
	b := p
	return b[:]
}

// String returns the payload in the form accepted by ParsePayload.
func (p Payload) String() string {
	parts := make([]string, len(p))
	for i, b := range p {
		parts[i] = strconv.Itoa(int(b))
	}
	return strings.Join(parts, ",")
}
