// Package svb16 implements a group-varint byte packing for signed 16-bit
// samples with a delta + zigzag pre-transform.
//
// The encoded layout is a block of key bytes followed by the packed data
// bytes. Each key byte holds 2-bit length codes for four values (value i
// occupies bits 2*(i%4), low bits first): code 0 means the value fits in one
// data byte, code 1 means two data bytes (low byte first). Codes 2 and 3 are
// never produced for 16-bit input and are rejected on decode.
//
// Before packing, each sample is replaced by the difference from its
// predecessor (previous = 0 for the first sample) and the signed delta is
// zigzag-mapped to an unsigned value, so slowly varying traces pack into
// single bytes.
package svb16

import "errors"

var (
	// ErrShortBuffer reports an encoded buffer with fewer bytes than the
	// key block and length codes require.
	ErrShortBuffer = errors.New("svb16: encoded buffer too short")

	// ErrBadKeyCode reports a key byte carrying a length code that cannot
	// occur for 16-bit values.
	ErrBadKeyCode = errors.New("svb16: invalid length code in key byte")
)

// MaxEncodedLength returns the largest possible encoded size for count
// samples: one key byte per four samples plus up to two data bytes per
// sample. Callers use this for upfront buffer sizing; the actual encoded
// size is usually smaller.
func MaxEncodedLength(count int) int {
	return keyLength(count) + 2*count
}

func keyLength(count int) int {
	return (count + 3) / 4
}

func zigzag(delta int16) uint16 {
	return uint16((delta << 1) ^ (delta >> 15))
}

func unzigzag(value uint16) int16 {
	return int16((value >> 1) ^ -(value & 1))
}
