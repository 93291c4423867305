// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The dispatcher feeds candidates from a source to the applicable
// password handlers across a worker pool, terminating on the first
// match.

package pdfcrack

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
)

// CrackResult is the outcome of a search. TotalPasswords is the source
// size when it is known up front; for streaming wordlists it is set to
// the number of candidates tried when the search ends, and for brute
// force it stays zero.
type CrackResult struct {
	Success        bool
	Password       string
	Variant        string
	PasswordsTried uint64
	TotalPasswords uint64
}

// Progress update cadence, in candidates.
const (
	progressStepStream = 100
	progressStepBrute  = 1000
)

// CrackOptions tune a search. The zero value (or nil) uses the default
// handler registry, one worker per CPU, progress on stderr and status
// on stdout.
type CrackOptions struct {
	Handlers []Handler
	Threads  int
	Progress io.Writer // transient single-line updates (CR, no LF)
	Status   io.Writer // final status lines
}

func (o *CrackOptions) fill() CrackOptions {
	var opts CrackOptions
	if o != nil {
		opts = *o
	}
	if opts.Handlers == nil {
		opts.Handlers = DefaultHandlers()
	}
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}
	if opts.Status == nil {
		opts.Status = os.Stdout
	}
	return opts
}

// Crack parses the encryption parameters out of data and searches the
// candidate source for a password that unlocks the document. Handlers
// that resolve without a password short-circuit the search entirely.
func Crack(data []byte, source CandidateSource, opts *CrackOptions) (CrackResult, error) {
	o := opts.fill()

	info, err := ParseEncryptInfo(data)
	if err != nil {
		return CrackResult{}, err
	}

	for _, h := range o.Handlers {
		if !h.Applies(&info) || h.RequiresPassword() {
			continue
		}
		res, ok := h.ResolveWithoutPassword(&info)
		if !ok {
			continue
		}
		result := CrackResult{Success: res.Success, Password: res.Password, Variant: res.Variant}
		if res.Success {
			fmt.Fprintf(o.Status, "PASSWORD FOUND [%s]: %s\n", res.Variant, res.Password)
		} else {
			fmt.Fprintf(o.Status, "Detected %s. Password search is not applicable for this protection.\n", res.Variant)
		}
		return result, nil
	}

	var active []Handler
	for _, h := range o.Handlers {
		if h.Applies(&info) && h.RequiresPassword() {
			active = append(active, h)
		}
	}
	if len(active) == 0 {
		return CrackResult{}, wrapError("select handler", ErrUnsupportedProtection)
	}

	threads := o.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if threads < 1 {
		threads = 1
	}
	var result CrackResult
	if total, known := source.Total(); known {
		result.TotalPasswords = total
		if total > 0 && uint64(threads) > total {
			threads = int(total)
		}
	}

	fmt.Fprintf(o.Status, "Starting password search with %d threads\n", threads)

	if bf, ok := source.(*BruteForceSource); ok {
		return crackBruteForce(&info, bf, active, threads, o)
	}
	return crackStream(&info, source, active, threads, result, o)
}

// checkAll runs every active handler over one candidate; the first
// match wins.
func checkAll(password string, info *EncryptInfo, handlers []Handler) (string, bool) {
	for _, h := range handlers {
		if variant, ok := h.Check(password, info); ok {
			return variant, true
		}
	}
	return "", false
}

// winner holds the published result. The found flag is the
// release-acquire cancellation signal; the mutex guards the one write
// that publishes the winning password.
type winner struct {
	found    atomic.Bool
	mu       sync.Mutex
	password string
	variant  string
}

func (w *winner) publish(password, variant string, status io.Writer) {
	w.mu.Lock()
	if !w.found.Load() {
		w.password = password
		w.variant = variant
		w.found.Store(true)
		fmt.Fprintf(status, "\nPASSWORD FOUND [%s]: %s\n", variant, password)
	}
	w.mu.Unlock()
}

func crackStream(info *EncryptInfo, source CandidateSource, active []Handler, threads int, result CrackResult, o CrackOptions) (CrackResult, error) {
	var (
		win   winner
		tried atomic.Uint64
	)

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if win.found.Load() {
					return
				}
				password, ok := source.Next()
				if !ok {
					return
				}
				attempt := tried.Add(1)
				if win.found.Load() {
					return
				}
				if variant, ok := checkAll(password, info, active); ok {
					win.publish(password, variant, o.Status)
					return
				}
				if attempt%progressStepStream == 0 {
					printProgress(o.Progress, attempt, result.TotalPasswords)
				}
			}
		}()
	}
	wg.Wait()
	fmt.Fprintln(o.Progress)

	result.PasswordsTried = tried.Load()
	if result.TotalPasswords == 0 || result.TotalPasswords < result.PasswordsTried {
		result.TotalPasswords = result.PasswordsTried
	}
	result.Success = win.found.Load()
	if result.Success {
		result.Password = win.password
		result.Variant = win.variant
		fmt.Fprintf(o.Status, "Password found: %s\n", result.Password)
	} else {
		if es, ok := source.(interface{ Err() error }); ok {
			if err := es.Err(); err != nil {
				return CrackResult{}, err
			}
		}
		fmt.Fprintln(o.Status, "Password not found in the provided list")
	}
	return result, nil
}

func crackBruteForce(info *EncryptInfo, source *BruteForceSource, active []Handler, threads int, o CrackOptions) (CrackResult, error) {
	var (
		win   winner
		tried atomic.Uint64
	)

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !win.found.Load() {
				task, ok := source.nextTask()
				if !ok {
					return
				}
				source.enumerate(task, win.found.Load, func(candidate string) bool {
					attempt := tried.Add(1)
					if variant, ok := checkAll(candidate, info, active); ok {
						win.publish(candidate, variant, o.Status)
						return true
					}
					if attempt%progressStepBrute == 0 {
						printProgress(o.Progress, attempt, 0)
					}
					return false
				})
			}
		}()
	}
	wg.Wait()
	fmt.Fprintln(o.Progress)

	result := CrackResult{PasswordsTried: tried.Load(), Success: win.found.Load()}
	if result.Success {
		result.Password = win.password
		result.Variant = win.variant
		fmt.Fprintf(o.Status, "Password found: %s\n", result.Password)
	} else {
		fmt.Fprintln(o.Status, "Password not found with brute-force search")
	}
	return result, nil
}

// printProgress emits a transient single-line update, CR-terminated so
// successive updates overwrite each other.
func printProgress(w io.Writer, tried, total uint64) {
	if total == 0 {
		fmt.Fprintf(w, "\rPasswords tried: %d", tried)
		return
	}
	pct := float64(tried) / float64(total) * 100
	fmt.Fprintf(w, "\rTrying passwords... %.2f%% (%d/%d)", pct, tried, total)
}
