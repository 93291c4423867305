package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/Geek0x0/pdfcrack"
)

func main() {
	wordlist := flag.String("wordlist", "", "Path to a wordlist file (UTF-8 or UTF-16 with BOM)")
	bruteforce := flag.Bool("bruteforce", false, "Enumerate candidates over -alphabet and -min-len/-max-len")
	alphabet := flag.String("alphabet", "abcdefghijklmnopqrstuvwxyz0123456789", "Brute-force alphabet")
	minLen := flag.Int("min-len", 1, "Minimum brute-force candidate length")
	maxLen := flag.Int("max-len", 8, "Maximum brute-force candidate length")
	threads := flag.Int("threads", 0, "Worker threads (0 = one per CPU)")
	flag.Parse()

	log.SetFlags(0)

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pdfcrack [options] file.pdf")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if (*wordlist != "") == *bruteforce {
		log.Fatal("specify exactly one of -wordlist or -bruteforce")
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	var (
		source  pdfcrack.CandidateSource
		cleanup func()
	)
	if *wordlist != "" {
		fs, err := pdfcrack.NewFileSource(*wordlist)
		if err != nil {
			log.Fatal(err)
		}
		source = fs
		cleanup = func() { fs.Close() }
	} else {
		bf, err := pdfcrack.NewBruteForceSource(*alphabet, *minLen, *maxLen)
		if err != nil {
			log.Fatal(err)
		}
		source = bf
	}

	// Transient progress updates only make sense on a terminal.
	progress := io.Discard
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = os.Stderr
	}
	fmt.Fprintf(os.Stderr, "hardware AES acceleration: %v\n", pdfcrack.HasHardwareAES())

	result, err := pdfcrack.Crack(data, source, &pdfcrack.CrackOptions{
		Threads:  *threads,
		Progress: progress,
	})
	if cleanup != nil {
		cleanup()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if result.Success {
		os.Exit(0)
	}
	os.Exit(2)
}
