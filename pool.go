// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcrack

import "sync"

// Pool for byte buffers used as per-candidate scratch space in the
// key derivations.
var byteBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 4096) // 4KB initial capacity
		return &buf
	},
}

// getByteBuffer retrieves a byte buffer from the pool
func getByteBuffer() *[]byte {
	return byteBufferPool.Get().(*[]byte)
}

// putByteBuffer returns a byte buffer to the pool
func putByteBuffer(buf *[]byte) {
	*buf = (*buf)[:0]
	byteBufferPool.Put(buf)
}

// Pool for lexer buffers (used when tokenizing the encryption
// dictionary and the trailer /ID array)
var lexBufferPool = sync.Pool{
	New: func() interface{} {
		return &buffer{
			buf:    make([]byte, 0, 65536), // 64KB capacity
			tmp:    make([]byte, 0, 256),   // 256B for tokens
			unread: make([]token, 0, 16),   // capacity for unread tokens
		}
	},
}

// getLexBuffer retrieves a lexer buffer from the pool
func getLexBuffer() *buffer {
	return lexBufferPool.Get().(*buffer)
}

// putLexBuffer returns a lexer buffer to the pool after resetting
func putLexBuffer(b *buffer) {
	b.r = nil
	b.buf = b.buf[:0]
	b.pos = 0
	b.offset = 0
	b.tmp = b.tmp[:0]
	b.unread = b.unread[:0]
	b.allowEOF = false
	b.allowObjptr = false
	b.eof = false
	b.readErr = nil
	lexBufferPool.Put(b)
}
