// Package signal implements the two-stage signal codec: samples are packed
// with the svb16 transform, then the intermediate bytes are compressed with
// zstd. Decoding requires the original sample count; the compressed frame
// only records the size of the intermediate buffer, never the sample count.
package signal

import (
	"errors"
	"fmt"

	"github.com/sashajenner/pod5-file-format/compression"
	"github.com/sashajenner/pod5-file-format/svb16"
)

// DefaultCompressionLevel is the fixed zstd level used for signal payloads.
const DefaultCompressionLevel = 1

var (
	// ErrCompressionFailed reports an internal compressor error. It does
	// not occur for valid inputs and indicates an upstream contract
	// violation.
	ErrCompressionFailed = errors.New("signal: compression failed")

	// ErrUnknownFrameSize reports compressed bytes whose frame does not
	// record the intermediate buffer size, typically malformed or
	// foreign-format input.
	ErrUnknownFrameSize = errors.New("signal: unknown compressed frame size")

	// ErrDecompressionFailed reports a compressor error while expanding
	// the frame, typically corrupted input.
	ErrDecompressionFailed = errors.New("signal: decompression failed")

	// ErrTrailingData reports intermediate bytes left over after the
	// transform decoder consumed everything the sample count implies.
	ErrTrailingData = errors.New("signal: trailing data after decoded samples")
)

// Compressor is the capability contract for the entropy stage. Any
// conforming zstd-like implementation is substitutable; the algorithm
// itself is opaque to this package.
type Compressor interface {
	// Bound returns an upper bound on the compressed size of srcLen bytes.
	Bound(srcLen int) int
	// Compress appends the compressed form of src to dst[:0].
	Compress(dst, src []byte, level int) ([]byte, error)
	// Decompress appends the decompressed form of src to dst[:0].
	Decompress(dst, src []byte) ([]byte, error)
	// FrameContentSize reports the decompressed size recorded in the
	// frame header of src, without decompressing.
	FrameContentSize(src []byte) (int, error)
}

// zstdCompressor delegates to the compression package, which selects the
// cgo or pure-Go zstd backend at build time.
type zstdCompressor struct{}

var _ Compressor = zstdCompressor{}

func (zstdCompressor) Bound(srcLen int) int {
	return compression.ZstdCompressBound(srcLen)
}

func (zstdCompressor) Compress(dst, src []byte, level int) ([]byte, error) {
	return compression.ZstdCompressLevel(dst, src, level)
}

func (zstdCompressor) Decompress(dst, src []byte) ([]byte, error) {
	return compression.ZstdDecompress(dst, src)
}

func (zstdCompressor) FrameContentSize(src []byte) (int, error) {
	return compression.ZstdFrameContentSize(src)
}

// Codec compresses and decompresses signal sample buffers. It is stateless
// beyond its configuration and safe for concurrent use on independent
// inputs.
type Codec struct {
	comp  Compressor
	level int
}

// NewCodec returns a codec using the built-in zstd backend at
// DefaultCompressionLevel.
func NewCodec() *Codec {
	return NewCodecWith(zstdCompressor{}, DefaultCompressionLevel)
}

// NewCodecWith returns a codec using the given compressor and level.
func NewCodecWith(comp Compressor, level int) *Codec {
	return &Codec{comp: comp, level: level}
}

// MaxCompressedSize returns an upper bound on the size of Compress output
// for sampleCount samples. Never a precise size; callers preallocating
// destination buffers rely on it as a hard upper bound.
func (c *Codec) MaxCompressedSize(sampleCount int) int {
	return c.comp.Bound(svb16.MaxEncodedLength(sampleCount))
}

// Compress encodes samples with the svb16 transform and compresses the
// intermediate bytes. On any error no output is returned.
func (c *Codec) Compress(samples []int16) ([]byte, error) {
	intermediate := svb16.Encode(samples)

	dst := make([]byte, 0, c.comp.Bound(len(intermediate)))
	compressed, err := c.comp.Compress(dst, intermediate, c.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	return compressed, nil
}

// Decompress expands compressed and decodes sampleCount samples from the
// intermediate bytes. The sample count must come from the caller (the
// paired sample_count column); it is not recoverable from the compressed
// bytes alone. The transform decoder must consume the intermediate buffer
// exactly, guarding against truncated or corrupted payloads that still
// parse as valid frames.
func (c *Codec) Decompress(compressed []byte, sampleCount int) ([]int16, error) {
	intermediateLen, err := c.comp.FrameContentSize(compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownFrameSize, err)
	}

	// The frame header is untrusted input. sampleCount bounds the
	// intermediate size, so reject absurd claims before allocating.
	if maxLen := svb16.MaxEncodedLength(sampleCount); intermediateLen < 0 || intermediateLen > maxLen {
		return nil, fmt.Errorf("%w: frame claims %d intermediate bytes, at most %d possible for %d samples",
			ErrDecompressionFailed, intermediateLen, maxLen, sampleCount)
	}

	dst := make([]byte, 0, intermediateLen)
	intermediate, err := c.comp.Decompress(dst, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}

	samples, consumed, err := svb16.DecodeConsumed(intermediate, sampleCount)
	if err != nil {
		return nil, fmt.Errorf("decode transform: %w", err)
	}
	if consumed != len(intermediate) {
		return nil, fmt.Errorf("%w: %d of %d intermediate bytes consumed",
			ErrTrailingData, consumed, len(intermediate))
	}
	return samples, nil
}
