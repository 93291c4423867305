// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Key derivation and password checks for revisions 5 and 6
// (ISO 32000-2, Algorithm 2.B).

package pdfcrack

import "bytes"

// EnableR5FallbackForR6 controls a compatibility quirk: documents that
// declare revision 6 but were produced with plain revision 5 logic are
// also tested against the non-iterative derivation. ISO 32000-2 does
// not sanction the dual test; some real-world writers require it.
var EnableR5FallbackForR6 = true

// maxPasswordV5 is the UTF-8 byte limit applied to revision 5/6
// passwords before hashing.
const maxPasswordV5 = 127

// hashV5 implements the revision 5/6 password hash. For revision 5 it
// is a single SHA-256 over password || salt || extra; for revision 6
// the iterative AES-driven refinement follows, with the SHA-2 width of
// each round selected by the first 16 bytes of the AES output mod 3.
// Returns at least 32 bytes, or nil when a primitive rejects its
// input.
func hashV5(password, salt, extra []byte, revision int) []byte {
	input := make([]byte, 0, len(password)+len(salt)+len(extra))
	input = append(input, password...)
	input = append(input, salt...)
	input = append(input, extra...)

	h := sha256Sum(input)
	if revision < 6 {
		return h
	}

	scratch := getByteBuffer()
	defer putByteBuffer(scratch)

	round := 0
	for {
		round++
		if len(h) < 32 {
			return nil
		}

		// k1 repeated 64 times; the length is a multiple of 16 by
		// construction (password <= 127, h in {32,48,64}, extra <= 48,
		// all times 64).
		repeated := (*scratch)[:0]
		for i := 0; i < 64; i++ {
			repeated = append(repeated, password...)
			repeated = append(repeated, h...)
			repeated = append(repeated, extra...)
		}
		*scratch = repeated

		encrypted, err := aes128CBCEncrypt(h[:16], h[16:32], repeated)
		if err != nil {
			return nil
		}

		sum := 0
		for _, b := range encrypted[:16] {
			sum += int(b)
		}
		switch sum % 3 {
		case 0:
			h = sha2Sum(encrypted, 256)
		case 1:
			h = sha2Sum(encrypted, 384)
		case 2:
			h = sha2Sum(encrypted, 512)
		}
		if h == nil {
			return nil
		}

		if round >= 64 && encrypted[len(encrypted)-1] <= byte(round-32) {
			break
		}
	}
	return h[:32]
}

// checkUserPasswordV5 validates password against the user entry of a
// revision 5/6 document and confirms the file encryption key can be
// recovered from /UE.
func checkUserPasswordV5(password string, info *EncryptInfo, revision int) bool {
	if len(info.U) < 48 || len(info.UE) < 32 {
		return false
	}
	pw := truncatePasswordV5(password)

	validationSalt := info.U[32:40]
	keySalt := info.U[40:48]

	hash := hashV5(pw, validationSalt, nil, revision)
	if len(hash) < 32 || !bytes.Equal(hash[:32], info.U[:32]) {
		return false
	}

	key := hashV5(pw, keySalt, nil, revision)
	if len(key) < 32 {
		return false
	}
	var iv [16]byte
	fileKey, err := aes256CBCDecrypt(key[:32], iv[:], info.UE, false)
	return err == nil && len(fileKey) >= 32
}

// checkOwnerPasswordV5 validates password against the owner entry of a
// revision 5/6 document. The owner derivation additionally mixes in
// the first 48 bytes of the user entry.
func checkOwnerPasswordV5(password string, info *EncryptInfo, revision int) bool {
	if len(info.O) < 48 || len(info.OE) < 32 || len(info.U) < 48 {
		return false
	}
	pw := truncatePasswordV5(password)

	validationSalt := info.O[32:40]
	keySalt := info.O[40:48]
	userEntry := info.U[:48]

	hash := hashV5(pw, validationSalt, userEntry, revision)
	if len(hash) < 32 || !bytes.Equal(hash[:32], info.O[:32]) {
		return false
	}

	key := hashV5(pw, keySalt, userEntry, revision)
	if len(key) < 32 {
		return false
	}
	var iv [16]byte
	fileKey, err := aes256CBCDecrypt(key[:32], iv[:], info.OE, false)
	return err == nil && len(fileKey) >= 32
}

func truncatePasswordV5(password string) []byte {
	pw := []byte(password)
	if len(pw) > maxPasswordV5 {
		pw = pw[:maxPasswordV5]
	}
	return pw
}
