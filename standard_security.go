// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Key derivation and password checks for the Standard Security Handler
// revisions 2 through 4 (ISO 32000-1, Algorithms 2, 4, 5 and 7).

package pdfcrack

import (
	"bytes"
	"encoding/binary"
)

// padPassword pads a password to exactly 32 bytes: the first
// min(len, 32) bytes of the password, then a prefix of the fixed
// padding string.
func padPassword(password string) [32]byte {
	var padded [32]byte
	n := copy(padded[:], password)
	copy(padded[n:], passwordPad[:32-n])
	return padded
}

// unpadPassword strips the trailing portion of a decrypted 32-byte
// owner entry that matches the padding string. When no suffix matches,
// the full input is returned as the password.
func unpadPassword(padded []byte) string {
	if len(padded) == 0 {
		return ""
	}
	max := len(padded)
	if max > len(passwordPad) {
		max = len(passwordPad)
	}
	for n := 0; n <= max; n++ {
		if bytes.Equal(padded[n:max], passwordPad[:max-n]) {
			return string(padded[:n])
		}
	}
	return string(padded[:max])
}

// computeEncryptionKey derives the file encryption key for a user
// password (Algorithm 2). keyBits is the nominal key length; the
// derived key is its first keyBits/8 bytes.
func computeEncryptionKey(password string, info *EncryptInfo, revision, keyBits int) []byte {
	if keyBits <= 0 {
		return nil
	}
	keyBytes := keyBits / 8

	scratch := getByteBuffer()
	defer putByteBuffer(scratch)
	data := *scratch
	padded := padPassword(password)
	data = append(data, padded[:]...)
	data = append(data, info.O...)
	data = binary.LittleEndian.AppendUint32(data, uint32(info.Permissions))
	data = append(data, info.ID...)
	if revision >= 4 && !info.EncryptMetadata {
		data = append(data, 0xFF, 0xFF, 0xFF, 0xFF)
	}
	*scratch = data

	h := md5Sum(data)
	if revision >= 3 {
		for i := 0; i < 50; i++ {
			n := keyBytes
			if n > len(h) {
				n = len(h)
			}
			h = md5Sum(h[:n])
		}
	}
	// An oversized nominal length (e.g. a hostile /Length 256 on a
	// revision 3 dictionary) cannot be satisfied by an MD5-derived key.
	if len(h) < keyBytes {
		return nil
	}
	return h[:keyBytes]
}

// checkUserPassword reports whether password is the document's user
// password under the given revision and key length (Algorithms 4/5).
func checkUserPassword(password string, info *EncryptInfo, revision, keyBits int) bool {
	if len(info.U) == 0 {
		return false
	}
	key := computeEncryptionKey(password, info, revision, keyBits)
	if key == nil {
		return false
	}
	rc4, err := newRC4Cipher(key)
	if err != nil {
		return false
	}

	if revision <= 2 {
		if len(info.U) < 32 {
			return false
		}
		var buf [32]byte
		rc4.crypt(buf[:], passwordPad[:])
		return bytes.Equal(buf[:], info.U[:32])
	}

	seed := padPassword("")
	digest := md5Sum(append(seed[:], info.ID...))
	buf := make([]byte, 16)
	rc4.crypt(buf, digest[:16])

	iterKey := make([]byte, len(key))
	for i := byte(1); i <= 19; i++ {
		for j := range key {
			iterKey[j] = key[j] ^ i
		}
		if rc4.resetKey(iterKey) != nil {
			return false
		}
		rc4.crypt(buf, buf)
	}
	if len(info.U) < 16 {
		return false
	}
	return bytes.Equal(buf, info.U[:16])
}

// checkOwnerPassword reports whether password is the document's owner
// password (Algorithm 7). It decrypts the owner entry back into the
// padded user password and re-runs the user check on the result. When
// the padding suffix does not appear in the decrypted entry, the full
// 32 bytes are treated as the user password; documents whose user
// password is exactly 32 bytes long can defeat this recovery.
func checkOwnerPassword(password string, info *EncryptInfo, revision, keyBits int) bool {
	if len(info.O) == 0 || keyBits <= 0 {
		return false
	}
	keyBytes := keyBits / 8

	padded := padPassword(password)
	digest := md5Sum(padded[:])
	if revision >= 3 {
		for i := 0; i < 50; i++ {
			digest = md5Sum(digest)
		}
	}
	if len(digest) < keyBytes {
		return false
	}
	key := digest[:keyBytes]

	rc4, err := newRC4Cipher(key)
	if err != nil {
		return false
	}
	data := make([]byte, len(info.O))
	rc4.crypt(data, info.O)

	if revision >= 3 {
		iterKey := make([]byte, len(key))
		for i := byte(19); i >= 1; i-- {
			for j := range key {
				iterKey[j] = key[j] ^ i
			}
			if rc4.resetKey(iterKey) != nil {
				return false
			}
			rc4.crypt(data, data)
		}
	}

	userPassword := unpadPassword(data)
	if userPassword == "" && len(data) > 0 {
		userPassword = string(data)
	}
	return checkUserPassword(userPassword, info, revision, keyBits)
}
