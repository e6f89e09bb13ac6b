//go:build !cgo
// +build !cgo

package compression

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// decoderPool provides thread-safe access to zstd decoders
var decoderPool = sync.Pool{
	New: func() interface{} {
		d, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return d
	},
}

func getDecoder() *zstd.Decoder {
	return decoderPool.Get().(*zstd.Decoder)
}

func putDecoder(d *zstd.Decoder) {
	decoderPool.Put(d)
}

func ZstdCompressLevel(dst, src []byte, level int) ([]byte, error) {
	// The frame header must always record the content size: single-segment
	// frames carry it for short inputs (the encoder omits it below 256
	// bytes otherwise), and zero frames carry it for empty inputs.
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithSingleSegment(true),
		zstd.WithZeroFrames(true))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, dst[:0]), nil
}

func ZstdDecompress(dst, src []byte) ([]byte, error) {
	dec := getDecoder()
	defer putDecoder(dec)
	return dec.DecodeAll(src, dst[:0])
}

// ZstdCompressBound mirrors the ZSTD_COMPRESSBOUND macro: the worst-case
// compressed size for srcLen input bytes.
func ZstdCompressBound(srcLen int) int {
	margin := 0
	if srcLen < 128<<10 {
		margin = ((128 << 10) - srcLen) >> 11
	}
	return srcLen + (srcLen >> 8) + margin
}
