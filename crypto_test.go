// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcrack

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

var millionA = strings.Repeat("a", 1000000)

func TestDigestVectors(t *testing.T) {
	tests := []struct {
		name string
		fn   func([]byte) []byte
		in   string
		want string
	}{
		{"md5 empty", md5Sum, "", "d41d8cd98f00b204e9800998ecf8427e"},
		{"md5 abc", md5Sum, "abc", "900150983cd24fb0d6963f7d28e17f72"},
		{"md5 million a", md5Sum, millionA, "7707d6ae4e027c70eea2a935c2296f21"},
		{"sha256 empty", sha256Sum, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"sha256 abc", sha256Sum, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"sha256 million a", sha256Sum, millionA, "cdc76e5c9914fb9281a1c7e284d73e67f1809a48a497200e046d39ccc7112cd0"},
		{"sha384 empty", sha384Sum, "", "38b060a751ac96384cd9327eb1b1e36a21fdb71114be07434c0cc7bf63f6e1da274edebfe76f65fbd51ad2f14898b95b"},
		{"sha384 abc", sha384Sum, "abc", "cb00753f45a35e8bb5a03d699ac65007272c32ab0eded1631a8b605a43ff5bed8086072ba1e7cc2358baeca134c825a7"},
		{"sha384 million a", sha384Sum, millionA, "9d0e1809716474cb086e834e310a4a1ced149e9c00f248527972cec5704c2a5b07b8b3dc38ecc4ebae97ddd87f3d8985"},
		{"sha512 empty", sha512Sum, "", "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"},
		{"sha512 abc", sha512Sum, "abc", "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
		{"sha512 million a", sha512Sum, millionA, "e718483d0ce769644e2e42c7bc15b4638e1f98b13b2044285632a803afa973ebde0ff244877ea60a4cb0432ce577c31beb009c5c2c49aa2e4eadb217ad8cc09b"},
	}
	for _, tt := range tests {
		got := hex.EncodeToString(tt.fn([]byte(tt.in)))
		if got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestSHA2SumWidths(t *testing.T) {
	data := []byte("abc")
	if got := sha2Sum(data, 256); !bytes.Equal(got, sha256Sum(data)) {
		t.Error("sha2Sum(256) mismatch")
	}
	if got := sha2Sum(data, 384); !bytes.Equal(got, sha384Sum(data)) {
		t.Error("sha2Sum(384) mismatch")
	}
	if got := sha2Sum(data, 512); !bytes.Equal(got, sha512Sum(data)) {
		t.Error("sha2Sum(512) mismatch")
	}
	if got := sha2Sum(data, 128); got != nil {
		t.Errorf("sha2Sum(128) = %x, want nil", got)
	}
}

func TestRC4KnownVector(t *testing.T) {
	// Classic test vector: key "Key", plaintext "Plaintext".
	c, err := newRC4Cipher([]byte("Key"))
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 9)
	c.crypt(out, []byte("Plaintext"))
	want := "bbf316e8d940af0ad3"
	if got := hex.EncodeToString(out); got != want {
		t.Errorf("RC4 output = %s, want %s", got, want)
	}
}

func TestRC4RoundTrip(t *testing.T) {
	key := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	plain := []byte("stream round trip with stateful handle")

	c, err := newRC4Cipher(key)
	if err != nil {
		t.Fatal(err)
	}
	enc := make([]byte, len(plain))
	c.crypt(enc, plain)
	if bytes.Equal(enc, plain) {
		t.Fatal("ciphertext equals plaintext")
	}

	if err := c.resetKey(key); err != nil {
		t.Fatal(err)
	}
	dec := make([]byte, len(enc))
	c.crypt(dec, enc)
	if !bytes.Equal(dec, plain) {
		t.Errorf("round trip failed: %x", dec)
	}
}

func TestRC4StatefulKeystream(t *testing.T) {
	// Two crypt calls on one handle must continue the keystream, not
	// restart it.
	key := []byte("secret")
	c, _ := newRC4Cipher(key)
	whole := make([]byte, 16)
	c.crypt(whole, make([]byte, 16))

	c2, _ := newRC4Cipher(key)
	split := make([]byte, 16)
	c2.crypt(split[:7], make([]byte, 7))
	c2.crypt(split[7:], make([]byte, 9))
	if !bytes.Equal(whole, split) {
		t.Error("split keystream diverges from whole keystream")
	}
}

func TestRC4BadKey(t *testing.T) {
	if _, err := newRC4Cipher(nil); !errors.Is(err, ErrCryptoShapeViolation) {
		t.Errorf("empty key: got %v", err)
	}
}

func TestAES128CBCEncrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 16)
	iv := bytes.Repeat([]byte{0x22}, 16)
	plain := bytes.Repeat([]byte{0x33}, 48)

	out, err := aes128CBCEncrypt(key, iv, plain)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(plain) {
		t.Fatalf("ciphertext length %d, want %d", len(out), len(plain))
	}

	for _, bad := range [][3][]byte{
		{key[:15], iv, plain},          // short key
		{key, iv[:8], plain},           // short iv
		{key, iv, plain[:20]},          // not block-aligned
		{key, iv, nil},                 // empty plaintext
		{bytes.Repeat(key, 2), iv, plain}, // AES-256 key for the 128 primitive
	} {
		if _, err := aes128CBCEncrypt(bad[0], bad[1], bad[2]); !errors.Is(err, ErrCryptoShapeViolation) {
			t.Errorf("malformed input %x/%x/%d: got %v", bad[0], bad[1], len(bad[2]), err)
		}
	}
}

func TestAES256CBCRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	iv := bytes.Repeat([]byte{0x07}, 16)
	plain := []byte("0123456789abcdef0123456789abcdef")

	enc := encryptCBC(t, key, iv, plain)
	dec, err := aes256CBCDecrypt(key, iv, enc, false)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, plain) {
		t.Errorf("round trip failed: %x", dec)
	}
}

func TestAES256CBCPadding(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	var iv [16]byte

	// One full block of data plus a valid pad block.
	padded := append([]byte("sixteen byte msg"), bytes.Repeat([]byte{16}, 16)...)
	enc := encryptCBC(t, key, iv[:], padded)

	dec, err := aes256CBCDecrypt(key, iv[:], enc, true)
	if err != nil {
		t.Fatal(err)
	}
	if string(dec) != "sixteen byte msg" {
		t.Errorf("stripped plaintext = %q", dec)
	}

	// Corrupt the final pad byte: strip must fail, raw must not.
	broken := append([]byte("sixteen byte msg"), bytes.Repeat([]byte{16}, 15)...)
	broken = append(broken, 17)
	encBroken := encryptCBC(t, key, iv[:], broken)
	if _, err := aes256CBCDecrypt(key, iv[:], encBroken, true); !errors.Is(err, ErrCryptoShapeViolation) {
		t.Errorf("invalid padding: got %v", err)
	}
	if _, err := aes256CBCDecrypt(key, iv[:], encBroken, false); err != nil {
		t.Errorf("raw decrypt of bad padding: got %v", err)
	}
}

func TestAES256CBCShapeErrors(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	var iv [16]byte
	ct := make([]byte, 32)

	if _, err := aes256CBCDecrypt(key[:16], iv[:], ct, false); !errors.Is(err, ErrCryptoShapeViolation) {
		t.Errorf("short key: got %v", err)
	}
	if _, err := aes256CBCDecrypt(key, iv[:8], ct, false); !errors.Is(err, ErrCryptoShapeViolation) {
		t.Errorf("short iv: got %v", err)
	}
	if _, err := aes256CBCDecrypt(key, iv[:], ct[:17], false); !errors.Is(err, ErrCryptoShapeViolation) {
		t.Errorf("ragged ciphertext: got %v", err)
	}
	if _, err := aes256CBCDecrypt(key, iv[:], nil, false); !errors.Is(err, ErrCryptoShapeViolation) {
		t.Errorf("empty ciphertext: got %v", err)
	}
}

func encryptCBC(t *testing.T, key, iv, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)
	return out
}
