// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcrack

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
)

// passwordPad is the fixed 32-byte padding string from the PDF
// specification (ISO 32000-1, Algorithm 2). Passwords shorter than
// 32 bytes are extended with a prefix of this sequence.
var passwordPad = [32]byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// md5Sum returns the MD5 digest of data as a fresh slice.
func md5Sum(data []byte) []byte {
	sum := md5.Sum(data)
	return sum[:]
}

// sha256Sum returns the SHA-256 digest of data as a fresh slice.
func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// sha384Sum returns the SHA-384 digest of data as a fresh slice.
func sha384Sum(data []byte) []byte {
	sum := sha512.Sum384(data)
	return sum[:]
}

// sha512Sum returns the SHA-512 digest of data as a fresh slice.
func sha512Sum(data []byte) []byte {
	sum := sha512.Sum512(data)
	return sum[:]
}

// sha2Sum dispatches to SHA-256, SHA-384 or SHA-512 by digest width.
// Unknown widths return nil; callers treat that as a non-match.
func sha2Sum(data []byte, bits int) []byte {
	switch bits {
	case 256:
		return sha256Sum(data)
	case 384:
		return sha384Sum(data)
	case 512:
		return sha512Sum(data)
	}
	return nil
}

// rc4Cipher is a stateful RC4 handle. The keystream position survives
// across crypt calls until the key is reset, which the revision 3+
// 20-round scramble relies on.
type rc4Cipher struct {
	c *rc4.Cipher
}

// newRC4Cipher creates an RC4 handle keyed with key.
func newRC4Cipher(key []byte) (*rc4Cipher, error) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("rc4 key: %w", ErrCryptoShapeViolation)
	}
	return &rc4Cipher{c: c}, nil
}

// resetKey re-keys the handle, restarting the keystream.
func (r *rc4Cipher) resetKey(key []byte) error {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return fmt.Errorf("rc4 key: %w", ErrCryptoShapeViolation)
	}
	r.c = c
	return nil
}

// crypt XORs src with the keystream into dst. dst and src may overlap
// entirely (in-place operation).
func (r *rc4Cipher) crypt(dst, src []byte) {
	r.c.XORKeyStream(dst, src)
}

// aes128CBCEncrypt encrypts plaintext with AES-128 in CBC mode. No
// padding is applied; plaintext must be a non-empty multiple of the
// block size.
func aes128CBCEncrypt(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != 16 || len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("aes-128-cbc encrypt: %w", ErrCryptoShapeViolation)
	}
	if len(plaintext) == 0 || len(plaintext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("aes-128-cbc encrypt: plaintext length %d: %w", len(plaintext), ErrCryptoShapeViolation)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes-128-cbc encrypt: %w", err)
	}
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, plaintext)
	return ciphertext, nil
}

// aes256CBCDecrypt decrypts ciphertext with AES-256 in CBC mode. When
// stripPadding is true the trailing PKCS#7 padding is validated and
// removed; otherwise all blocks are returned as-is.
func aes256CBCDecrypt(key, iv, ciphertext []byte, stripPadding bool) ([]byte, error) {
	if len(key) != 32 || len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("aes-256-cbc decrypt: %w", ErrCryptoShapeViolation)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("aes-256-cbc decrypt: ciphertext length %d: %w", len(ciphertext), ErrCryptoShapeViolation)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes-256-cbc decrypt: %w", err)
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)
	if !stripPadding {
		return plaintext, nil
	}
	return unpadPKCS7(plaintext)
}

// unpadPKCS7 validates and removes PKCS#7 padding. The pad byte must be
// 1..16 and every padding byte must carry the same value.
func unpadPKCS7(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("unpad: empty data: %w", ErrCryptoShapeViolation)
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(data) {
		return nil, fmt.Errorf("unpad: invalid padding %d: %w", padding, ErrCryptoShapeViolation)
	}
	for i := len(data) - padding; i < len(data); i++ {
		if data[i] != byte(padding) {
			return nil, fmt.Errorf("unpad: invalid padding: %w", ErrCryptoShapeViolation)
		}
	}
	return data[:len(data)-padding], nil
}
