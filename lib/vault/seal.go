// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/costscope/costscope/lib/codec"
	"github.com/costscope/costscope/lib/issuer"
	"github.com/costscope/costscope/lib/license"
	"github.com/costscope/costscope/lib/secret"
)

// hkdfInfoBundle is the HKDF info string for bundle key derivation.
// Changing it invalidates every sealed bundle.
var hkdfInfoBundle = []byte("costscope.bundle.v1")

// SealOptions configures Seal.
type SealOptions struct {
	// BundleName labels the bundle in its header.
	BundleName string

	// Compression selects the algorithm. The zero value stores the
	// plaintext uncompressed; the sealer tool defaults to zstd.
	Compression CompressionTag

	// CreatedAt is the sealing time recorded in the header. Zero
	// means the current wall-clock time.
	CreatedAt int64
}

// Seal encrypts plaintext into a version-1 bundle container for the
// licensee holding the given license document. Vendor-side: the
// release pipeline seals one bundle per issued license, and key signs
// the result so the product can establish integrity before touching
// the ciphertext.
//
// The derived encryption key and the compressed intermediate are
// zeroed before returning, on success and on error. The caller's
// plaintext is borrowed and never modified.
func Seal(plaintext []byte, document *license.License, key *issuer.SigningKey, options SealOptions) ([]byte, error) {
	if document == nil {
		return nil, fmt.Errorf("vault: seal requires a license document")
	}
	if len(document.Signature) == 0 {
		return nil, fmt.Errorf("vault: seal requires a signed license document")
	}
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("vault: refusing to seal an empty bundle")
	}
	if len(plaintext) > maxUncompressedSize {
		return nil, fmt.Errorf("vault: bundle is %d bytes, limit is %d", len(plaintext), maxUncompressedSize)
	}
	if options.BundleName == "" {
		return nil, fmt.Errorf("vault: bundle name is required")
	}
	if !options.Compression.valid() {
		return nil, fmt.Errorf("vault: unknown compression tag %d", options.Compression)
	}

	compressionTag := options.Compression
	compressed, err := compress(plaintext, compressionTag)
	if IsIncompressible(err) {
		compressed, compressionTag = plaintext, CompressionNone
	} else if err != nil {
		return nil, fmt.Errorf("vault: compressing bundle: %w", err)
	}
	ownsCompressed := compressionTag != CompressionNone
	scrubCompressed := func() {
		if ownsCompressed {
			secret.Zero(compressed)
		}
	}

	encryptionKey, err := deriveBundleKey(document)
	if err != nil {
		scrubCompressed()
		return nil, fmt.Errorf("vault: deriving bundle key: %w", err)
	}
	defer encryptionKey.Close()

	createdAt := options.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		scrubCompressed()
		return nil, fmt.Errorf("vault: generating nonce: %w", err)
	}

	headerBytes, err := codec.Marshal(header{
		KeyID:            key.KeyID,
		Nonce:            nonce,
		Compression:      uint8(compressionTag),
		UncompressedSize: uint64(len(plaintext)),
		BundleName:       options.BundleName,
		CreatedAt:        createdAt,
	})
	if err != nil {
		scrubCompressed()
		return nil, fmt.Errorf("vault: encoding header: %w", err)
	}

	// Assemble the authenticated prefix: magic, version, header
	// length, header. It doubles as the AEAD's additional data.
	prefix := make([]byte, 0, prefixSize+len(headerBytes))
	prefix = append(prefix, containerMagic[:]...)
	prefix = append(prefix, containerVersion)
	prefix = binary.LittleEndian.AppendUint32(prefix, uint32(len(headerBytes)))
	prefix = append(prefix, headerBytes...)

	aead, err := chacha20poly1305.NewX(encryptionKey.Bytes())
	if err != nil {
		scrubCompressed()
		return nil, fmt.Errorf("vault: creating cipher: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, compressed, prefix)
	scrubCompressed()

	signedPart := make([]byte, 0, len(prefix)+len(ciphertext))
	signedPart = append(signedPart, prefix...)
	signedPart = append(signedPart, ciphertext...)
	signature := key.Sign(signedPart)

	bundle := make([]byte, 0, len(prefix)+len(signature)+len(ciphertext))
	bundle = append(bundle, prefix...)
	bundle = append(bundle, signature...)
	bundle = append(bundle, ciphertext...)
	return bundle, nil
}

// deriveBundleKey derives the 32-byte bundle encryption key from a
// signed license document:
//
//	ikm = SigningBytes() ‖ Signature
//	key = HKDF-SHA256(ikm, salt=nil, info="costscope.bundle.v1")
//
// Including the signature in the input key material means only the
// holder of the actual issued document can derive the key — the
// signing bytes alone are reconstructible from public fields.
//
// The returned buffer must be closed by the caller.
func deriveBundleKey(document *license.License) (*secret.Buffer, error) {
	signingBytes, err := document.SigningBytes()
	if err != nil {
		return nil, err
	}

	inputKeyMaterial := make([]byte, 0, len(signingBytes)+len(document.Signature))
	inputKeyMaterial = append(inputKeyMaterial, signingBytes...)
	inputKeyMaterial = append(inputKeyMaterial, document.Signature...)

	reader := hkdf.New(sha256.New, inputKeyMaterial, nil, hkdfInfoBundle)
	derived := make([]byte, keySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		secret.Zero(derived)
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	// NewFromBytes copies into mmap and zeros the heap slice.
	return secret.NewFromBytes(derived)
}
