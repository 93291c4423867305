// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Extraction of the encryption dictionary and trailer ID from a raw
// PDF byte buffer. Only the /Encrypt object and the /ID array are ever
// tokenized; the rest of the document is never walked.

package pdfcrack

import (
	"bytes"
	"fmt"
	"sort"
)

// EncryptInfo is the parsed encryption-relevant subset of a PDF's
// trailer and encryption dictionary. It is immutable after parse and
// shared read-only across workers.
type EncryptInfo struct {
	Version     int   // /V, 0..5
	Revision    int   // /R, 0..6
	Length      int   // /Length, nominal key length in bits
	Permissions int32 // /P

	ID []byte // first element of the trailer /ID array, may be empty

	U     []byte // /U: 32 bytes for R<=4; 48 for R>=5 (hash + validation salt + key salt)
	O     []byte // /O: same shape as U
	UE    []byte // /UE, R>=5 only, 32 bytes
	OE    []byte // /OE, R>=5 only, 32 bytes
	Perms []byte // /Perms, R>=5 only, 16 bytes

	Filter    string // /Filter, e.g. "Standard", "Adobe.PubSec"
	SubFilter string // /SubFilter

	StreamFilter string // /StmF
	StringFilter string // /StrF
	EFFilter     string // /EFF

	CryptFilter       string // selected /CF entry name
	CryptFilterMethod string // its /CFM: V2, AESV2, AESV3, Identity, None

	EncryptMetadata bool // /EncryptMetadata, default true
	HasRecipients   bool // /Recipients present
	Encrypted       bool // false iff the document has no /Encrypt
}

var pdfHeader = []byte("%PDF-")

// ParseEncryptInfo extracts the encryption dictionary and trailer ID
// from a complete PDF byte buffer. A document without /Encrypt yields
// Encrypted == false and a nil error. Apart from a missing %PDF-
// header (ErrNotAPDF), only a malformed encryption dictionary is an
// error; absent optional fields are not.
func ParseEncryptInfo(data []byte) (EncryptInfo, error) {
	info := EncryptInfo{EncryptMetadata: true}
	if len(data) < len(pdfHeader) || !bytes.Equal(data[:len(pdfHeader)], pdfHeader) {
		return EncryptInfo{}, wrapError("check header", ErrNotAPDF)
	}

	refPos := indexToken(data, "/Encrypt")
	if refPos < 0 {
		return info, nil
	}
	info.Encrypted = true

	num, gen, err := parseIndirectRef(data, refPos+len("/Encrypt"))
	if err != nil {
		return EncryptInfo{}, err
	}

	objPos := findObjMarker(data, num, gen)
	if objPos < 0 {
		return EncryptInfo{}, wrapError("locate encrypt object", ErrMalformedEncryptDict)
	}

	dictStart := bytes.Index(data[objPos:], []byte("<<"))
	if dictStart < 0 {
		return EncryptInfo{}, wrapError("locate encrypt dictionary", ErrMalformedEncryptDict)
	}
	dictStart += objPos
	dictEnd := findDictEnd(data, dictStart)
	if dictEnd < 0 {
		return EncryptInfo{}, wrapError("scan encrypt dictionary", ErrMalformedEncryptDict)
	}

	d, err := readEncryptDict(data[dictStart:dictEnd])
	if err != nil {
		return EncryptInfo{}, err
	}

	cfMethods, err := info.applyDict(d)
	if err != nil {
		return EncryptInfo{}, err
	}
	info.selectCryptFilter(cfMethods)

	if info.Revision >= 5 && info.Length == 0 {
		info.Length = 256
	}

	info.ID = extractDocumentID(data)
	return info, nil
}

// indexToken finds the first occurrence of tok in data that is
// followed by whitespace or a delimiter, so that "/Encrypt" does not
// match inside "/EncryptMetadata".
func indexToken(data []byte, tok string) int {
	start := 0
	for {
		i := bytes.Index(data[start:], []byte(tok))
		if i < 0 {
			return -1
		}
		pos := start + i
		end := pos + len(tok)
		if end >= len(data) || isSpace(data[end]) || isDelim(data[end]) {
			return pos
		}
		start = pos + 1
	}
}

// parseIndirectRef reads the "N G R" reference following /Encrypt.
// Whitespace and comments are tolerated; a missing generation number
// defaults to zero.
func parseIndirectRef(data []byte, pos int) (num, gen int, err error) {
	b := newBuffer(bytes.NewReader(data[pos:]), 0)
	defer putLexBuffer(b)
	b.allowEOF = true

	t1, ok := b.readToken().(int64)
	if !ok {
		return 0, 0, wrapError("parse encrypt reference", ErrMalformedEncryptDict)
	}
	gen64 := int64(0)
	if t2, ok := b.readToken().(int64); ok {
		gen64 = t2
	}
	return int(t1), int(gen64), nil
}

// findObjMarker locates the "N G obj" definition in the buffer,
// rejecting matches whose object number is a suffix of a longer one.
func findObjMarker(data []byte, num, gen int) int {
	marker := []byte(fmt.Sprintf("%d %d obj", num, gen))
	start := 0
	for {
		i := bytes.Index(data[start:], marker)
		if i < 0 {
			return -1
		}
		pos := start + i
		if pos == 0 || !isDigit(data[pos-1]) {
			return pos
		}
		start = pos + 1
	}
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// findDictEnd scans from the opening "<<" at start to its matching
// ">>" with depth counting, skipping literal strings (with escapes),
// hex strings and comments. Returns the offset just past the closing
// ">>", or -1 if the dictionary is unbalanced.
func findDictEnd(data []byte, start int) int {
	depth := 0
	i := start
	for i < len(data) {
		c := data[i]
		switch {
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			depth++
			i += 2
		case c == '>' && i+1 < len(data) && data[i+1] == '>':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		case c == '(':
			i++
			nest := 1
			for i < len(data) && nest > 0 {
				switch data[i] {
				case '\\':
					i++ // skip escaped byte
				case '(':
					nest++
				case ')':
					nest--
				}
				i++
			}
		case c == '%':
			for i < len(data) && data[i] != '\r' && data[i] != '\n' {
				i++
			}
		case c == '<':
			i++
			for i < len(data) && data[i] != '>' {
				i++
			}
			if i < len(data) {
				i++
			}
		default:
			i++
		}
	}
	return -1
}

// readEncryptDict tokenizes the balanced "<< ... >>" region into a
// generic dict.
func readEncryptDict(region []byte) (dict, error) {
	b := newBuffer(bytes.NewReader(region), 0)
	defer putLexBuffer(b)
	b.allowEOF = true
	b.allowObjptr = true

	obj := b.readObject()
	d, ok := obj.(dict)
	if !ok {
		return nil, wrapError("parse encrypt dictionary", ErrMalformedEncryptDict)
	}
	return d, nil
}

// applyDict decodes the recognized keys of the encryption dictionary
// into info. Unrecognized keys were already consumed by the tokenizer
// and are simply not looked at. Returns the /CF filter-name to method
// map for selectCryptFilter.
func (info *EncryptInfo) applyDict(d dict) (map[string]string, error) {
	var cfMethods map[string]string

	getInt := func(key name, dst *int) error {
		v, present := d[key]
		if !present {
			return nil
		}
		x, ok := v.(int64)
		if !ok {
			return wrapError(fmt.Sprintf("parse /%s", key), ErrMalformedEncryptDict)
		}
		*dst = int(x)
		return nil
	}
	getBytes := func(key name, dst *[]byte) {
		if s, ok := d[key].(string); ok {
			*dst = []byte(s)
		}
	}
	getName := func(key name, dst *string) {
		if n, ok := d[key].(name); ok {
			*dst = string(n)
		}
	}

	if err := getInt("V", &info.Version); err != nil {
		return nil, err
	}
	if err := getInt("R", &info.Revision); err != nil {
		return nil, err
	}
	if err := getInt("Length", &info.Length); err != nil {
		return nil, err
	}
	var perms int
	if err := getInt("P", &perms); err != nil {
		return nil, err
	}
	info.Permissions = int32(perms)

	getBytes("U", &info.U)
	getBytes("O", &info.O)
	getBytes("UE", &info.UE)
	getBytes("OE", &info.OE)
	getBytes("Perms", &info.Perms)

	getName("Filter", &info.Filter)
	getName("SubFilter", &info.SubFilter)
	getName("StmF", &info.StreamFilter)
	getName("StrF", &info.StringFilter)
	getName("EFF", &info.EFFilter)

	if v, ok := d["EncryptMetadata"].(bool); ok {
		info.EncryptMetadata = v
	}
	if _, present := d["Recipients"]; present {
		info.HasRecipients = true
	}

	if cf, ok := d["CF"].(dict); ok {
		cfMethods = make(map[string]string, len(cf))
		for filterName, sub := range cf {
			subDict, ok := sub.(dict)
			if !ok {
				continue
			}
			if method, ok := subDict["CFM"].(name); ok {
				cfMethods[string(filterName)] = string(method)
			}
		}
	}
	return cfMethods, nil
}

// selectCryptFilter picks the effective crypt filter: the one named by
// /StmF, then /StrF, then /EFF, then "StdCF", then any entry.
func (info *EncryptInfo) selectCryptFilter(methods map[string]string) {
	if len(methods) == 0 {
		return
	}
	pick := func(filterName string) bool {
		if filterName == "" {
			return false
		}
		method, ok := methods[filterName]
		if !ok {
			return false
		}
		info.CryptFilter = filterName
		info.CryptFilterMethod = method
		return true
	}
	if pick(info.StreamFilter) || pick(info.StringFilter) || pick(info.EFFilter) || pick("StdCF") {
		return
	}
	names := make([]string, 0, len(methods))
	for filterName := range methods {
		names = append(names, filterName)
	}
	sort.Strings(names)
	pick(names[0])
}

// extractDocumentID finds the trailer /ID array and returns its first
// string element. Anything unexpected yields an empty ID, never an
// error.
func extractDocumentID(data []byte) []byte {
	pos := indexToken(data, "/ID")
	if pos < 0 {
		return nil
	}
	b := newBuffer(bytes.NewReader(data[pos+len("/ID"):]), 0)
	defer putLexBuffer(b)
	b.allowEOF = true

	if b.readToken() != keyword("[") {
		return nil
	}
	if s, ok := b.readObject().(string); ok {
		return []byte(s)
	}
	return nil
}
