package compression

import (
	"bytes"
	"errors"
	"testing"
)

func TestZstdRoundTrip(t *testing.T) {
	original := []byte("signal trace payload for zstd round trip testing")

	compressed, err := ZstdCompressLevel(nil, original, 3)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	decompressed, err := ZstdDecompress(nil, compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}

	if !bytes.Equal(original, decompressed) {
		t.Fatalf("round trip failed: got %q, want %q", decompressed, original)
	}
}

func TestZstdCompressLevels(t *testing.T) {
	original := bytes.Repeat([]byte("0123456789abcdef"), 256)

	for _, level := range []int{1, 3, 5} {
		compressed, err := ZstdCompressLevel(nil, original, level)
		if err != nil {
			t.Fatalf("CompressLevel(%d) failed: %v", level, err)
		}

		if len(compressed) > ZstdCompressBound(len(original)) {
			t.Fatalf("level %d: compressed size %d exceeds bound %d",
				level, len(compressed), ZstdCompressBound(len(original)))
		}

		decompressed, err := ZstdDecompress(nil, compressed)
		if err != nil {
			t.Fatalf("Decompress (level %d) failed: %v", level, err)
		}
		if !bytes.Equal(original, decompressed) {
			t.Fatalf("round trip (level %d) failed", level)
		}
	}
}

func TestZstdCompressBound(t *testing.T) {
	for _, srcLen := range []int{0, 1, 100, 64 << 10, 128 << 10, 1 << 20} {
		if bound := ZstdCompressBound(srcLen); bound < srcLen {
			t.Errorf("ZstdCompressBound(%d) = %d, smaller than input", srcLen, bound)
		}
	}
}

func TestZstdFrameContentSize(t *testing.T) {
	original := bytes.Repeat([]byte{0x42}, 1000)
	compressed, err := ZstdCompressLevel(nil, original, 1)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	size, err := ZstdFrameContentSize(compressed)
	if err != nil {
		t.Fatalf("FrameContentSize failed: %v", err)
	}
	if size != len(original) {
		t.Fatalf("frame content size = %d, want %d", size, len(original))
	}
}

func TestZstdSmallInputFrameContentSize(t *testing.T) {
	// Short payloads must still carry a content size in the frame header.
	// The pure-Go encoder drops it for sub-256-byte inputs unless forced
	// into single-segment frames.
	for _, srcLen := range []int{1, 2, 7, 16, 255} {
		original := bytes.Repeat([]byte{0x42}, srcLen)
		compressed, err := ZstdCompressLevel(nil, original, 1)
		if err != nil {
			t.Fatalf("Compress(%d bytes) failed: %v", srcLen, err)
		}

		size, err := ZstdFrameContentSize(compressed)
		if err != nil {
			t.Fatalf("FrameContentSize(%d bytes) failed: %v", srcLen, err)
		}
		if size != srcLen {
			t.Fatalf("frame content size = %d, want %d", size, srcLen)
		}

		decompressed, err := ZstdDecompress(nil, compressed)
		if err != nil {
			t.Fatalf("Decompress(%d bytes) failed: %v", srcLen, err)
		}
		if !bytes.Equal(original, decompressed) {
			t.Fatalf("round trip (%d bytes) failed", srcLen)
		}
	}
}

func TestZstdEmptyInput(t *testing.T) {
	compressed, err := ZstdCompressLevel(nil, nil, 1)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(compressed) == 0 {
		t.Fatal("compressing empty input must still emit a frame")
	}

	size, err := ZstdFrameContentSize(compressed)
	if err != nil {
		t.Fatalf("FrameContentSize failed: %v", err)
	}
	if size != 0 {
		t.Fatalf("frame content size = %d, want 0", size)
	}

	decompressed, err := ZstdDecompress(nil, compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if len(decompressed) != 0 {
		t.Fatalf("decompressed %d bytes, want 0", len(decompressed))
	}
}

func TestZstdFrameContentSizeForeignInput(t *testing.T) {
	_, err := ZstdFrameContentSize([]byte("this is not a zstd frame"))
	if !errors.Is(err, ErrNoFrameContentSize) {
		t.Fatalf("expected ErrNoFrameContentSize, got %v", err)
	}
}

func TestZstdDecompressCorrupt(t *testing.T) {
	if _, err := ZstdDecompress(nil, []byte{0x01, 0x02, 0x03}); err == nil {
		t.Fatal("expected error for corrupt input")
	}
}
