//go:build amd64
// +build amd64

package pdfcrack

import "golang.org/x/sys/cpu"

// HasHardwareAES reports whether the CPU provides AES instructions.
// Purely informational; the derivations use the standard library
// cipher implementations either way.
func HasHardwareAES() bool {
	return cpu.X86.HasAES
}
