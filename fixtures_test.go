// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Forward construction of encrypted-document fixtures: the inverse of
// the password checks, used to exercise them without shipping binary
// test PDFs.

package pdfcrack

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"fmt"
	"testing"
)

func versionFor(revision int) int {
	switch revision {
	case 2:
		return 1
	case 3:
		return 2
	default:
		return 4
	}
}

// buildStandardInfo generates a revision 2-4 EncryptInfo whose /O and
// /U entries are derived forward from the given passwords.
func buildStandardInfo(t *testing.T, userPassword, ownerPassword string, revision, keyBits int) EncryptInfo {
	t.Helper()
	info := EncryptInfo{
		Encrypted:       true,
		Filter:          "Standard",
		Version:         versionFor(revision),
		Revision:        revision,
		Length:          keyBits,
		Permissions:     -1028,
		ID:              []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x23, 0x45, 0x67},
		EncryptMetadata: true,
	}
	info.O = makeOwnerEntry(t, userPassword, ownerPassword, revision, keyBits)
	info.U = makeUserEntry(t, userPassword, &info, revision, keyBits)
	return info
}

// makeOwnerEntry implements Algorithm 3: RC4-encrypt the padded user
// password under a key derived from the owner password.
func makeOwnerEntry(t *testing.T, userPassword, ownerPassword string, revision, keyBits int) []byte {
	t.Helper()
	padded := padPassword(ownerPassword)
	digest := md5Sum(padded[:])
	if revision >= 3 {
		for i := 0; i < 50; i++ {
			digest = md5Sum(digest)
		}
	}
	key := digest[:keyBits/8]

	userPadded := padPassword(userPassword)
	entry := make([]byte, 32)
	c, err := newRC4Cipher(key)
	if err != nil {
		t.Fatal(err)
	}
	c.crypt(entry, userPadded[:])
	if revision >= 3 {
		iter := make([]byte, len(key))
		for i := byte(1); i <= 19; i++ {
			for j := range key {
				iter[j] = key[j] ^ i
			}
			if err := c.resetKey(iter); err != nil {
				t.Fatal(err)
			}
			c.crypt(entry, entry)
		}
	}
	return entry
}

// makeUserEntry implements Algorithms 4/5. The info's O, P and ID
// fields must already be populated.
func makeUserEntry(t *testing.T, userPassword string, info *EncryptInfo, revision, keyBits int) []byte {
	t.Helper()
	key := computeEncryptionKey(userPassword, info, revision, keyBits)
	if key == nil {
		t.Fatal("computeEncryptionKey returned nil")
	}
	c, err := newRC4Cipher(key)
	if err != nil {
		t.Fatal(err)
	}

	if revision <= 2 {
		entry := make([]byte, 32)
		c.crypt(entry, passwordPad[:])
		return entry
	}

	seed := padPassword("")
	digest := md5Sum(append(seed[:], info.ID...))
	buf := make([]byte, 16)
	c.crypt(buf, digest[:16])
	iter := make([]byte, len(key))
	for i := byte(1); i <= 19; i++ {
		for j := range key {
			iter[j] = key[j] ^ i
		}
		if err := c.resetKey(iter); err != nil {
			t.Fatal(err)
		}
		c.crypt(buf, buf)
	}
	entry := make([]byte, 32)
	copy(entry, buf)
	return entry
}

// buildV5Info generates a revision 5/6 EncryptInfo with /U, /O, /UE
// and /OE derived forward from the given passwords.
func buildV5Info(t *testing.T, userPassword, ownerPassword string, revision int) EncryptInfo {
	t.Helper()
	fileKey := bytes.Repeat([]byte{0xA5}, 32)

	userValSalt := []byte("01234567")
	userKeySalt := []byte("89abcdef")
	userHash := hashV5([]byte(userPassword), userValSalt, nil, revision)
	if len(userHash) < 32 {
		t.Fatal("short user hash")
	}
	u := make([]byte, 0, 48)
	u = append(u, userHash[:32]...)
	u = append(u, userValSalt...)
	u = append(u, userKeySalt...)
	userKey := hashV5([]byte(userPassword), userKeySalt, nil, revision)
	ue := cbcEncrypt256(t, userKey[:32], fileKey)

	ownerValSalt := []byte("fedcba98")
	ownerKeySalt := []byte("76543210")
	ownerHash := hashV5([]byte(ownerPassword), ownerValSalt, u[:48], revision)
	if len(ownerHash) < 32 {
		t.Fatal("short owner hash")
	}
	o := make([]byte, 0, 48)
	o = append(o, ownerHash[:32]...)
	o = append(o, ownerValSalt...)
	o = append(o, ownerKeySalt...)
	ownerKey := hashV5([]byte(ownerPassword), ownerKeySalt, u[:48], revision)
	oe := cbcEncrypt256(t, ownerKey[:32], fileKey)

	return EncryptInfo{
		Encrypted:       true,
		Filter:          "Standard",
		Version:         5,
		Revision:        revision,
		Length:          256,
		Permissions:     -1028,
		EncryptMetadata: true,
		U:               u,
		O:               o,
		UE:              ue,
		OE:              oe,
	}
}

func cbcEncrypt256(t *testing.T, key, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	var iv [16]byte
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(out, plaintext)
	return out
}

// buildPDF serializes an EncryptInfo back into a minimal PDF byte
// buffer with the encryption dictionary as object 1 and the ID pair in
// the trailer. extra is spliced verbatim into the dictionary body.
func buildPDF(t *testing.T, info EncryptInfo, extra string) []byte {
	t.Helper()
	var b bytes.Buffer
	b.WriteString("%PDF-1.7\n")
	b.WriteString("1 0 obj\n<<\n")
	if info.Filter != "" {
		fmt.Fprintf(&b, "/Filter /%s\n", info.Filter)
	}
	if info.SubFilter != "" {
		fmt.Fprintf(&b, "/SubFilter /%s\n", info.SubFilter)
	}
	fmt.Fprintf(&b, "/V %d\n/R %d\n/Length %d\n/P %d\n", info.Version, info.Revision, info.Length, info.Permissions)
	writeHexEntry(&b, "U", info.U)
	writeHexEntry(&b, "O", info.O)
	writeHexEntry(&b, "UE", info.UE)
	writeHexEntry(&b, "OE", info.OE)
	writeHexEntry(&b, "Perms", info.Perms)
	if !info.EncryptMetadata {
		b.WriteString("/EncryptMetadata false\n")
	}
	if info.HasRecipients {
		b.WriteString("/Recipients [(payload)]\n")
	}
	if extra != "" {
		b.WriteString(extra)
		b.WriteString("\n")
	}
	b.WriteString(">>\nendobj\n")
	b.WriteString("trailer\n<< /Size 2 /Root 2 0 R /Encrypt 1 0 R")
	if len(info.ID) > 0 {
		id := hex.EncodeToString(info.ID)
		fmt.Fprintf(&b, " /ID [<%s> <%s>]", id, id)
	}
	b.WriteString(" >>\nstartxref\n0\n%%EOF\n")
	return b.Bytes()
}

func writeHexEntry(b *bytes.Buffer, key string, val []byte) {
	if len(val) > 0 {
		fmt.Fprintf(b, "/%s <%s>\n", key, hex.EncodeToString(val))
	}
}

// discardOptions silences dispatcher output in tests.
func discardOptions(threads int) *CrackOptions {
	return &CrackOptions{
		Threads:  threads,
		Progress: nopWriter{},
		Status:   nopWriter{},
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
