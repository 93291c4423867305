//go:build !amd64
// +build !amd64

package pdfcrack

// HasHardwareAES reports whether the CPU provides AES instructions.
func HasHardwareAES() bool {
	return false
}
