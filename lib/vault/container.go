// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/costscope/costscope/lib/codec"
)

// Container format constants. All are version-1 protocol values;
// changing any of them invalidates every sealed bundle.
const (
	// containerVersion is the current container format version.
	containerVersion byte = 1

	// prefixSize is the fixed-size region before the header: 4-byte
	// magic + version byte + 4-byte header length.
	prefixSize = 9

	// maxHeaderLength bounds the declared header length before any
	// allocation. A real header holds a key id, a nonce, a name, and
	// three integers; 4 KiB is generous.
	maxHeaderLength = 4096

	// maxUncompressedSize bounds the declared plaintext size before
	// the decompression buffer is allocated.
	maxUncompressedSize = 256 << 20 // 256 MiB

	// keySize is the XChaCha20-Poly1305 key length derived from the
	// license.
	keySize = 32
)

// containerMagic is the 4-byte container file signature.
var containerMagic = [4]byte{'C', 'S', 'B', 'V'}

// header is the CBOR-encoded bundle header. Field numbers are
// container format constants — renumbering breaks every sealed bundle.
type header struct {
	// KeyID names the bundle-signing key in the trust table.
	KeyID string `cbor:"1,keyasint"`

	// Nonce is the 24-byte XChaCha20-Poly1305 nonce.
	Nonce []byte `cbor:"2,keyasint"`

	// Compression is the CompressionTag for the plaintext.
	Compression uint8 `cbor:"3,keyasint"`

	// UncompressedSize is the exact plaintext length.
	UncompressedSize uint64 `cbor:"4,keyasint"`

	// BundleName labels the bundle ("heuristics-2026.08").
	BundleName string `cbor:"5,keyasint"`

	// CreatedAt is the sealing time, Unix seconds.
	CreatedAt int64 `cbor:"6,keyasint"`
}

// container is a structurally parsed bundle. Nothing in it is
// authenticated until the signature check passes.
type container struct {
	header     header
	signedPart []byte // magic ‖ version ‖ header length ‖ header ‖ ciphertext
	aad        []byte // magic ‖ version ‖ header length ‖ header
	signature  []byte
	ciphertext []byte
}

// parseContainer performs the structural stage of Open: fixed prefix,
// declared lengths bounded before allocation, header decode, field
// sanity. It reads nothing it has not first bounds-checked, so
// adversarial inputs fail cleanly instead of panicking or allocating
// by attacker-declared sizes.
func parseContainer(bundle []byte) (*container, error) {
	if len(bundle) < prefixSize {
		return nil, fmt.Errorf("container is %d bytes, shorter than the %d-byte prefix", len(bundle), prefixSize)
	}
	if !bytes.Equal(bundle[0:4], containerMagic[:]) {
		return nil, fmt.Errorf("bad container magic")
	}
	if bundle[4] != containerVersion {
		return nil, fmt.Errorf("container version %d is not supported (expected %d)", bundle[4], containerVersion)
	}

	headerLength := binary.LittleEndian.Uint32(bundle[5:9])
	if headerLength == 0 || headerLength > maxHeaderLength {
		return nil, fmt.Errorf("declared header length %d is outside (0, %d]", headerLength, maxHeaderLength)
	}
	headerEnd := prefixSize + int(headerLength)
	minimumSize := headerEnd + ed25519.SignatureSize + chacha20poly1305.Overhead
	if len(bundle) < minimumSize {
		return nil, fmt.Errorf("container is %d bytes, shorter than the %d-byte minimum for its header", len(bundle), minimumSize)
	}

	var parsed header
	if err := codec.Unmarshal(bundle[prefixSize:headerEnd], &parsed); err != nil {
		return nil, fmt.Errorf("decoding container header: %w", err)
	}
	if len(parsed.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("header nonce is %d bytes, want %d", len(parsed.Nonce), chacha20poly1305.NonceSizeX)
	}
	if !CompressionTag(parsed.Compression).valid() {
		return nil, fmt.Errorf("header names unknown compression tag %d", parsed.Compression)
	}
	if parsed.UncompressedSize > maxUncompressedSize {
		return nil, fmt.Errorf("header declares %d-byte plaintext, limit is %d", parsed.UncompressedSize, maxUncompressedSize)
	}

	signature := bundle[headerEnd : headerEnd+ed25519.SignatureSize]
	ciphertext := bundle[headerEnd+ed25519.SignatureSize:]

	// The signature covers everything except itself.
	signedPart := make([]byte, 0, headerEnd+len(ciphertext))
	signedPart = append(signedPart, bundle[:headerEnd]...)
	signedPart = append(signedPart, ciphertext...)

	return &container{
		header:     parsed,
		signedPart: signedPart,
		aad:        bundle[:headerEnd],
		signature:  signature,
		ciphertext: ciphertext,
	}, nil
}

// Info describes a bundle container's unauthenticated metadata, for
// display by inspection tooling. Nothing in it has been verified —
// trust requires opening the bundle.
type Info struct {
	// KeyID is the bundle-signing key id the header claims.
	KeyID string

	// BundleName is the label the header claims.
	BundleName string

	// Compression is the compression algorithm recorded in the header.
	Compression CompressionTag

	// UncompressedSize is the declared plaintext length.
	UncompressedSize uint64

	// CreatedAt is the declared sealing time, Unix seconds.
	CreatedAt int64

	// CiphertextSize is the stored ciphertext length including the
	// AEAD tag.
	CiphertextSize int

	// HeaderBytes is the raw CBOR header. Inspection tooling renders
	// it through codec.Diagnose for byte-level debugging.
	HeaderBytes codec.RawMessage
}

// Inspect structurally parses a bundle container and returns its
// header metadata without verifying anything. For display only.
func Inspect(bundle []byte) (*Info, error) {
	parsed, err := parseContainer(bundle)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	headerBytes := make([]byte, len(parsed.aad)-prefixSize)
	copy(headerBytes, parsed.aad[prefixSize:])
	return &Info{
		KeyID:            parsed.header.KeyID,
		BundleName:       parsed.header.BundleName,
		Compression:      CompressionTag(parsed.header.Compression),
		UncompressedSize: parsed.header.UncompressedSize,
		CreatedAt:        parsed.header.CreatedAt,
		CiphertextSize:   len(parsed.ciphertext),
		HeaderBytes:      headerBytes,
	}, nil
}
