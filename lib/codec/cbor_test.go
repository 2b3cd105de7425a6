// Copyright 2026 The Costscope Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// signedRegion mirrors the shape of the canonical structures that
// signatures cover: integer keys, mixed field types.
type signedRegion struct {
	Subject string `cbor:"1,keyasint"`
	Serial  string `cbor:"2,keyasint"`
	Expires int64  `cbor:"3,keyasint"`
	Flags   uint8  `cbor:"4,keyasint,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := signedRegion{
		Subject: "ops@example.com",
		Serial:  "CS-1A2B-3C4D",
		Expires: 1798761600,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded signedRegion
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	region := signedRegion{Subject: "a@b.c", Serial: "CS-0001", Expires: 1767225600}

	first, err := Marshal(region)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := Marshal(region)
		if err != nil {
			t.Fatalf("Marshal %d: %v", i, err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated on iteration %d: %x != %x", i, first, again)
		}
	}
}

func TestMarshalDeterministic_MapKeyOrder(t *testing.T) {
	// Go map iteration order is random; Core Deterministic Encoding
	// must mask it.
	value := map[string]int{"zstd": 2, "lz4": 1, "none": 0}

	first, err := Marshal(value)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		again, err := Marshal(value)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("map encoding varies with iteration order: %x != %x", first, again)
		}
	}
}

func TestUnmarshalRejectsDuplicateKeys(t *testing.T) {
	// {"a": 1, "a": 2} — only constructible by hand, and exactly the
	// shape of a header trying to smuggle two values under one key.
	duplicate := []byte{0xA2, 0x61, 0x61, 0x01, 0x61, 0x61, 0x02}

	var target struct {
		A int `cbor:"a"`
	}
	if err := Unmarshal(duplicate, &target); err == nil {
		t.Error("Unmarshal accepted a duplicate map key")
	}
}

func TestUnmarshalIgnoresUnknownFields(t *testing.T) {
	// A future signer may add field 5; today's reader skips it.
	extended := struct {
		Subject string `cbor:"1,keyasint"`
		Serial  string `cbor:"2,keyasint"`
		Expires int64  `cbor:"3,keyasint"`
		Extra   string `cbor:"5,keyasint"`
	}{"a@b.c", "CS-0002", 1767225600, "later addition"}

	data, err := Marshal(extended)
	if err != nil {
		t.Fatal(err)
	}

	var decoded signedRegion
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal with unknown field: %v", err)
	}
	if decoded.Serial != "CS-0002" {
		t.Errorf("Serial = %q, want CS-0002", decoded.Serial)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var region signedRegion
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &region); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	// []byte fields must encode as CBOR byte strings (major type 2):
	// nonces and signatures travel through these structures.
	type envelope struct {
		Nonce []byte `cbor:"1,keyasint"`
	}

	original := envelope{Nonce: []byte{0xDE, 0xAD, 0xBE, 0xEF}}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !bytes.Equal(decoded.Nonce, original.Nonce) {
		t.Errorf("byte string roundtrip: got %x, want %x", decoded.Nonce, original.Nonce)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"edition": "pro"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"edition"`) || !strings.Contains(notation, `"pro"`) {
		t.Errorf("notation %q missing expected content", notation)
	}
}

func BenchmarkMarshal(b *testing.B) {
	region := signedRegion{
		Subject: "ops@example.com",
		Serial:  "CS-1A2B-3C4D",
		Expires: 1798761600,
	}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(region)
	}
}
