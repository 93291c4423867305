// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcrack

import (
	"fmt"
	"strings"
)

// A Handler recognizes one family of PDF protections. Handlers are
// stateless; Check must be pure and safe to call from many goroutines
// at once.
type Handler interface {
	// Name is the human label for this protection family.
	Name() string

	// Applies reports whether this handler understands the document's
	// encryption parameters.
	Applies(info *EncryptInfo) bool

	// RequiresPassword is false for handlers that can resolve a
	// document without searching (unencrypted, public-key, X.509).
	RequiresPassword() bool

	// Check tests one candidate password. On a match it returns the
	// variant label identifying the handler and role that accepted.
	Check(password string, info *EncryptInfo) (variant string, ok bool)

	// ResolveWithoutPassword resolves non-password protections. The
	// second return is false when this handler cannot resolve the
	// document on its own.
	ResolveWithoutPassword(info *EncryptInfo) (Resolution, bool)
}

// Resolution is the outcome of a no-password handler: either the
// document opens freely (Success true) or its protection is detected
// but cannot be searched (Success false).
type Resolution struct {
	Success  bool
	Variant  string
	Password string
}

// DefaultHandlers returns the fixed, ordered handler registry. The
// dispatcher tries no-password resolution in slice order; then, with
// candidates spread across the worker pool, each candidate is tried
// against the applicable password handlers in slice order until one
// matches.
func DefaultHandlers() []Handler {
	return []Handler{
		openHandler{},
		pkiHandler{},
		x509Handler{},
		aes256Handler{},
		&stdHandler{
			label: "AES-128 (Revision 4)",
			rev:   4,
			bits:  128,
			match: func(info *EncryptInfo) bool { return info.Revision == 4 },
		},
		&stdHandler{
			label: "Standard Encryption (Revision 3)",
			rev:   3,
			bits:  128,
			match: func(info *EncryptInfo) bool {
				return info.Revision == 3 && info.StringFilter != "V2"
			},
		},
		&stdHandler{
			label: "RC4 (128-bit)",
			rev:   3,
			bits:  128,
			match: func(info *EncryptInfo) bool {
				if info.Revision != 3 {
					return false
				}
				if info.StringFilter != "" && info.StringFilter != "V2" {
					return false
				}
				return effectiveBits(info, 128) >= 40
			},
		},
		&stdHandler{
			label: "RC4 (40-bit)",
			rev:   2,
			bits:  40,
			match: func(info *EncryptInfo) bool { return info.Revision <= 2 },
		},
		genericHandler{},
		ownerOnlyHandler{},
	}
}

// standardFilter reports whether the document uses the Standard
// Security Handler (or omits /Filter entirely).
func standardFilter(info *EncryptInfo) bool {
	return info.Filter == "" || info.Filter == "Standard"
}

func effectiveBits(info *EncryptInfo, fallback int) int {
	if info.Length > 0 {
		return info.Length
	}
	return fallback
}

// noResolution is embedded by password handlers.
type noResolution struct{}

func (noResolution) RequiresPassword() bool { return true }
func (noResolution) ResolveWithoutPassword(*EncryptInfo) (Resolution, bool) {
	return Resolution{}, false
}

// openHandler resolves documents that carry no encryption at all.
type openHandler struct{}

func (openHandler) Name() string { return "Open Password Protection (No encryption)" }

func (openHandler) Applies(info *EncryptInfo) bool { return !info.Encrypted }

func (openHandler) RequiresPassword() bool { return false }
func (openHandler) Check(string, *EncryptInfo) (string, bool) {
	return "", false
}
func (h openHandler) ResolveWithoutPassword(*EncryptInfo) (Resolution, bool) {
	return Resolution{Success: true, Variant: h.Name()}, true
}

// pkiHandler detects certificate-recipient (public-key) protection,
// which cannot be searched by password.
type pkiHandler struct{}

func (pkiHandler) Name() string { return "PKI-based Encryption" }

func (pkiHandler) Applies(info *EncryptInfo) bool {
	if !info.Encrypted {
		return false
	}
	if info.Filter == "Adobe.PubSec" || info.HasRecipients {
		return true
	}
	sub := strings.ToLower(info.SubFilter)
	return strings.Contains(sub, "pkcs7") || strings.Contains(sub, "pubsec") || strings.Contains(sub, "x509")
}

func (pkiHandler) RequiresPassword() bool { return false }
func (pkiHandler) Check(string, *EncryptInfo) (string, bool) {
	return "", false
}
func (h pkiHandler) ResolveWithoutPassword(*EncryptInfo) (Resolution, bool) {
	return Resolution{Success: false, Variant: h.Name()}, true
}

// x509Handler detects X.509 signature protection.
type x509Handler struct{}

func (x509Handler) Name() string { return "X.509 Digital Signatures" }

func (x509Handler) Applies(info *EncryptInfo) bool {
	if !info.Encrypted {
		return false
	}
	return strings.Contains(strings.ToLower(info.Filter), "x509") ||
		strings.Contains(strings.ToLower(info.SubFilter), "x509")
}

func (x509Handler) RequiresPassword() bool { return false }
func (x509Handler) Check(string, *EncryptInfo) (string, bool) {
	return "", false
}
func (h x509Handler) ResolveWithoutPassword(*EncryptInfo) (Resolution, bool) {
	return Resolution{Success: false, Variant: h.Name()}, true
}

// aes256Handler covers revisions 5 and 6. For documents declaring
// revision 6 the plain revision 5 derivation is also tested when
// EnableR5FallbackForR6 is set.
type aes256Handler struct {
	noResolution
}

func (aes256Handler) Name() string { return "AES-256 (Revision 5/6)" }

func (aes256Handler) Applies(info *EncryptInfo) bool {
	return info.Encrypted && standardFilter(info) && info.Revision >= 5
}

func (h aes256Handler) Check(password string, info *EncryptInfo) (string, bool) {
	revisions := []int{5}
	if info.Revision >= 6 {
		revisions = []int{6}
		if EnableR5FallbackForR6 {
			revisions = append(revisions, 5)
		}
	}
	for _, rev := range revisions {
		if checkUserPasswordV5(password, info, rev) {
			return h.Name() + " Password-Based Encryption", true
		}
		if checkOwnerPasswordV5(password, info, rev) {
			return h.Name() + " Owner Password", true
		}
	}
	return "", false
}

// stdHandler is one fixed-revision instance of the Standard Security
// Handler check (revisions 2 through 4). The instances in
// DefaultHandlers differ only in revision selection, default key width
// and label.
type stdHandler struct {
	noResolution
	label string
	rev   int
	bits  int
	match func(info *EncryptInfo) bool
}

func (h *stdHandler) Name() string { return h.label }

func (h *stdHandler) Applies(info *EncryptInfo) bool {
	return info.Encrypted && standardFilter(info) && h.match(info)
}

func (h *stdHandler) Check(password string, info *EncryptInfo) (string, bool) {
	bits := effectiveBits(info, h.bits)
	if checkUserPassword(password, info, h.rev, bits) {
		return h.label + " Password-Based Encryption", true
	}
	if checkOwnerPassword(password, info, h.rev, bits) {
		return h.label + " Owner Password", true
	}
	return "", false
}

// genericHandler is the password-based user-password fallback. It
// tests the revision the document declares; only when /R is absent
// (zero) does it try revisions 2, 3 and 4 in turn. Other revisions are
// not tried for a document that declares one.
type genericHandler struct {
	noResolution
}

func (genericHandler) Name() string { return "Password-Based Encryption" }

func (genericHandler) Applies(info *EncryptInfo) bool {
	return info.Encrypted && standardFilter(info) && info.Revision <= 4
}

func (genericHandler) Check(password string, info *EncryptInfo) (string, bool) {
	for _, rev := range []int{2, 3, 4} {
		if info.Revision != 0 && info.Revision != rev {
			continue
		}
		bits := effectiveBits(info, defaultBitsFor(rev))
		if checkUserPassword(password, info, rev, bits) {
			return fmt.Sprintf("Password-Based Encryption (Revision %d)", rev), true
		}
	}
	return "", false
}

// ownerOnlyHandler tries only the owner-password derivation, for
// documents of revision 2 through 4. It tests the declared revision;
// only when /R is zero does it try revisions 2, 3 and 4 in turn.
type ownerOnlyHandler struct {
	noResolution
}

func (ownerOnlyHandler) Name() string { return "Owner Password" }

func (ownerOnlyHandler) Applies(info *EncryptInfo) bool {
	return info.Encrypted && standardFilter(info) && info.Revision >= 2 && info.Revision <= 4
}

func (ownerOnlyHandler) Check(password string, info *EncryptInfo) (string, bool) {
	for _, rev := range []int{2, 3, 4} {
		if info.Revision != 0 && info.Revision != rev {
			continue
		}
		bits := effectiveBits(info, defaultBitsFor(rev))
		if checkOwnerPassword(password, info, rev, bits) {
			return fmt.Sprintf("Owner Password (Revision %d)", rev), true
		}
	}
	return "", false
}

func defaultBitsFor(rev int) int {
	if rev == 2 {
		return 40
	}
	return 128
}
