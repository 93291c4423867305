// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfcrack

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// A CandidateSource produces password candidates in order. Next is the
// single serialization point; it must be safe to call from many
// goroutines at once.
type CandidateSource interface {
	// Next returns the next candidate, or ok == false when the source
	// is exhausted.
	Next() (password string, ok bool)

	// Total returns the number of candidates when it is known up
	// front (in-memory sources). Streaming and brute-force sources
	// report known == false.
	Total() (total uint64, known bool)
}

// SliceSource feeds an in-memory ordered list of candidates.
type SliceSource struct {
	passwords []string
	index     atomic.Uint64
}

// NewSliceSource returns a source over the given passwords. The slice
// is not copied; it must not be mutated during a search.
func NewSliceSource(passwords []string) *SliceSource {
	return &SliceSource{passwords: passwords}
}

func (s *SliceSource) Next() (string, bool) {
	i := s.index.Add(1) - 1
	if i >= uint64(len(s.passwords)) {
		return "", false
	}
	return s.passwords[i], true
}

func (s *SliceSource) Total() (uint64, bool) {
	return uint64(len(s.passwords)), true
}

// FileSource streams candidates line by line from a wordlist file.
// The encoding is detected from the first bytes: FF FE is UTF-16LE,
// FE FF is UTF-16BE, EF BB BF is UTF-8 with BOM, anything else plain
// UTF-8. Blank lines are skipped and a trailing CR is trimmed.
type FileSource struct {
	path    string
	f       *os.File
	scanner *bufio.Scanner

	mu   sync.Mutex
	done bool
	err  error
}

// NewFileSource opens a wordlist. The file handle is held for the
// lifetime of the search; call Close when done.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapPathError("open wordlist", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapPathError("open wordlist", path, err)
	}
	if st.Size() == 0 {
		f.Close()
		return nil, wrapPathError("open wordlist", path, ErrEmptyCandidateSource)
	}

	var bom [3]byte
	n, err := io.ReadFull(f, bom[:])
	if err != nil && err != io.ErrUnexpectedEOF {
		f.Close()
		return nil, wrapPathError("read wordlist", path, err)
	}

	var (
		skip    int64
		decoder transform.Transformer
	)
	switch {
	case n >= 2 && bom[0] == 0xFF && bom[1] == 0xFE:
		skip = 2
		decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	case n >= 2 && bom[0] == 0xFE && bom[1] == 0xFF:
		skip = 2
		decoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	case n >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF:
		skip = 3
	}
	if _, err := f.Seek(skip, io.SeekStart); err != nil {
		f.Close()
		return nil, wrapPathError("read wordlist", path, err)
	}

	var r io.Reader = f
	if decoder != nil {
		r = transform.NewReader(f, decoder)
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &FileSource{path: path, f: f, scanner: scanner}, nil
}

func (s *FileSource) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return "", false
	}
	for s.scanner.Scan() {
		line := strings.TrimSuffix(s.scanner.Text(), "\r")
		if line == "" {
			continue
		}
		return line, true
	}
	s.done = true
	s.err = s.scanner.Err()
	return "", false
}

func (s *FileSource) Total() (uint64, bool) {
	return 0, false
}

// Err returns the read error that ended the stream, if any.
func (s *FileSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return wrapPathError("read wordlist", s.path, s.err)
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.f.Close()
}

// bruteTask fixes a short lexicographic prefix; a worker enumerates
// the remaining positions locally so the shared state is just the
// task index.
type bruteTask struct {
	prefix string
	length int
}

// BruteForceSource enumerates every string over an alphabet with
// lengths in [minLen, maxLen], each length in lexicographic order of
// the alphabet.
type BruteForceSource struct {
	alphabet string
	tasks    []bruteTask
	task     atomic.Uint64

	// state for the generic serialized Next path
	mu      sync.Mutex
	started bool
	cur     bruteTask
	suffix  []int
}

// NewBruteForceSource builds the task list for the given alphabet and
// inclusive length range.
func NewBruteForceSource(alphabet string, minLen, maxLen int) (*BruteForceSource, error) {
	if alphabet == "" || minLen < 1 || maxLen < minLen {
		return nil, wrapError("brute force", ErrInvalidBruteForceRange)
	}

	basePrefixLen := minLen
	if basePrefixLen > 2 {
		basePrefixLen = 2
	}

	s := &BruteForceSource{alphabet: alphabet}
	for length := minLen; length <= maxLen; length++ {
		prefixLen := basePrefixLen
		if prefixLen > length {
			prefixLen = length
		}
		s.appendPrefixTasks(prefixLen, length)
	}
	return s, nil
}

func (s *BruteForceSource) appendPrefixTasks(prefixLen, length int) {
	indices := make([]int, prefixLen)
	buf := make([]byte, prefixLen)
	for {
		for i, idx := range indices {
			buf[i] = s.alphabet[idx]
		}
		s.tasks = append(s.tasks, bruteTask{prefix: string(buf), length: length})
		if !advanceIndices(indices, len(s.alphabet)) {
			return
		}
	}
}

// advanceIndices steps an odometer one position in lexicographic
// order; false means the odometer wrapped around.
func advanceIndices(indices []int, base int) bool {
	pos := len(indices)
	for pos > 0 {
		pos--
		indices[pos]++
		if indices[pos] < base {
			return true
		}
		indices[pos] = 0
	}
	return false
}

// nextTask dispenses the next unclaimed prefix task.
func (s *BruteForceSource) nextTask() (bruteTask, bool) {
	i := s.task.Add(1) - 1
	if i >= uint64(len(s.tasks)) {
		return bruteTask{}, false
	}
	return s.tasks[i], true
}

// enumerate walks every candidate of task in lexicographic order.
// It stops when stop reports true between candidates or try returns
// true.
func (s *BruteForceSource) enumerate(task bruteTask, stop func() bool, try func(string) bool) {
	positions := task.length - len(task.prefix)
	if positions <= 0 {
		try(task.prefix)
		return
	}
	indices := make([]int, positions)
	buf := make([]byte, task.length)
	copy(buf, task.prefix)
	for !stop() {
		for i, idx := range indices {
			buf[len(task.prefix)+i] = s.alphabet[idx]
		}
		if try(string(buf)) {
			return
		}
		if !advanceIndices(indices, len(s.alphabet)) {
			return
		}
	}
}

// Next enumerates candidates one at a time behind a mutex. The
// dispatcher prefers the task-based path; Next exists for generic
// consumers and single-threaded use.
func (s *BruteForceSource) Next() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if !s.started {
			task, ok := s.nextTask()
			if !ok {
				return "", false
			}
			s.cur = task
			s.suffix = make([]int, task.length-len(task.prefix))
			s.started = true
			return s.currentCandidate(), true
		}
		if len(s.suffix) > 0 && advanceIndices(s.suffix, len(s.alphabet)) {
			return s.currentCandidate(), true
		}
		s.started = false
	}
}

func (s *BruteForceSource) currentCandidate() string {
	buf := make([]byte, s.cur.length)
	copy(buf, s.cur.prefix)
	for i, idx := range s.suffix {
		buf[len(s.cur.prefix)+i] = s.alphabet[idx]
	}
	return string(buf)
}

// Total is unknown for brute force; the space can be enormous.
func (s *BruteForceSource) Total() (uint64, bool) {
	return 0, false
}
