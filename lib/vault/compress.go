// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/costscope/costscope/lib/secret"
)

// CompressionTag identifies the compression algorithm recorded in a
// bundle header (1 byte). These values are container format
// constants — changing them breaks every sealed bundle.
type CompressionTag uint8

const (
	// CompressionNone stores the plaintext uncompressed. Used when
	// the content does not shrink (already-compressed model blobs).
	CompressionNone CompressionTag = 0

	// CompressionLZ4 is LZ4 block compression. Fast decode for large
	// binary rule sets when startup latency matters more than size.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd is zstd at the default level. The usual choice:
	// heuristic bundles are mostly JSON-like text and compress well.
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseCompressionTag parses a compression tag from its string form.
func ParseCompressionTag(name string) (CompressionTag, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// valid reports whether the tag is one a version-1 container may carry.
func (tag CompressionTag) valid() bool {
	return tag == CompressionNone || tag == CompressionLZ4 || tag == CompressionZstd
}

// zstdEncoder and zstdDecoder are shared across calls. Both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("vault: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("vault: zstd decoder initialization failed: " + err.Error())
	}
}

// errIncompressible is returned by compress when the output would not
// be smaller than the input. The caller falls back to CompressionNone.
var errIncompressible = fmt.Errorf("data is incompressible")

// IsIncompressible reports whether err indicates that data could not
// be compressed smaller than its original size.
func IsIncompressible(err error) bool {
	return err == errIncompressible
}

// compress compresses data with the given algorithm. For
// CompressionNone the input is returned unchanged, no copy.
func compress(data []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return data, nil

	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written == 0 || written >= len(data) {
			return nil, errIncompressible
		}
		return destination[:written], nil

	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(data, nil)
		if len(compressed) >= len(data) {
			return nil, errIncompressible
		}
		return compressed, nil

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// decompress reverses compress. The uncompressedSize must match the
// original length exactly; a mismatch is an error, never a partial
// result.
func decompress(compressed []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed bundle: size %d does not match declared %d",
				len(compressed), uncompressedSize)
		}
		return compressed, nil

	case CompressionLZ4, CompressionZstd:
		destination := make([]byte, uncompressedSize)
		if err := decompressInto(compressed, tag, destination); err != nil {
			return nil, err
		}
		return destination, nil

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

// decompressInto decodes compressed into destination, whose length must
// equal the declared uncompressed size. On failure destination is
// zeroed before the error returns: a decode that fails partway has
// already written plaintext into it.
func decompressInto(compressed []byte, tag CompressionTag, destination []byte) error {
	switch tag {
	case CompressionLZ4:
		read, err := lz4.UncompressBlock(compressed, destination)
		if err != nil {
			secret.Zero(destination)
			return fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != len(destination) {
			secret.Zero(destination)
			return fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, len(destination))
		}
		return nil

	case CompressionZstd:
		// DecodeAll appends in place while destination's capacity
		// holds; it reallocates only when the frame decodes to more
		// bytes than declared, so both slices need scrubbing.
		result, err := zstdDecoder.DecodeAll(compressed, destination[:0])
		if err != nil {
			secret.Zero(result)
			secret.Zero(destination)
			return fmt.Errorf("zstd decompress: %w", err)
		}
		if len(result) != len(destination) {
			secret.Zero(result)
			secret.Zero(destination)
			return fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), len(destination))
		}
		return nil

	default:
		return fmt.Errorf("unsupported compression tag: %d", tag)
	}
}
