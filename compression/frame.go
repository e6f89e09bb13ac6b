package compression

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ErrNoFrameContentSize reports a zstd frame whose header does not record
// the decompressed size, or bytes that are not a zstd frame at all.
var ErrNoFrameContentSize = errors.New("zstd frame does not carry a content size")

// ZstdFrameContentSize reads the decompressed size recorded in the frame
// header of src without decompressing. Frame parsing is pure Go and shared
// by both build paths.
func ZstdFrameContentSize(src []byte) (int, error) {
	var header zstd.Header
	if err := header.Decode(src); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoFrameContentSize, err)
	}
	if !header.HasFCS {
		return 0, ErrNoFrameContentSize
	}
	return int(header.FrameContentSize), nil
}
