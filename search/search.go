// Package search finds every occurrence of a byte pattern in a memory buffer.
//
// All searchers report overlapping occurrences: after a full match the
// alignment advances by one byte, so "ABA" in "ABABA" is found at 0 and 2.
package search

import (
	"fmt"

	"memedit/process"
)

// Searcher finds a pattern in a buffer holding memory that starts at base
type Searcher interface {
	// Search returns the absolute address of every occurrence of pattern in buf,
	// in ascending order. An empty pattern or one longer than buf yields nothing.
	Search(buf []byte, base process.ProcessMemoryAddress, pattern []byte) []process.ProcessMemoryAddress
}

// Algorithm names accepted by ByName and the configuration file
const (
	NameBruteForce           = "brute"
	NameBoyerMoore           = "bm"
	NameBoyerMooreGoodSuffix = "bm-gs"
)

// Default returns the searcher used when none is configured
func Default() Searcher {
	return BoyerMooreGoodSuffix{}
}

// ByName resolves a configured algorithm name
func ByName(name string) (Searcher, error) {
	switch name {
	case NameBruteForce:
		return BruteForce{}, nil
	case NameBoyerMoore:
		return BoyerMoore{}, nil
	case NameBoyerMooreGoodSuffix, "":
		return BoyerMooreGoodSuffix{}, nil
	}
	return nil, fmt.Errorf("unknown search algorithm %q", name)
}

func degenerate(buf, pattern []byte) bool {
	return len(pattern) == 0 || len(pattern) > len(buf)
}

// BruteForce compares the pattern at every alignment, O(n*m)
type BruteForce struct{}

func (BruteForce) Search(buf []byte, base process.ProcessMemoryAddress, pattern []byte) []process.ProcessMemoryAddress {
	if degenerate(buf, pattern) {
		return nil
	}

	var results []process.ProcessMemoryAddress
	for i := 0; i <= len(buf)-len(pattern); i++ {
		matched := true
		for j := 0; j < len(pattern); j++ {
			if buf[i+j] != pattern[j] {
				matched = false
				break
			}
		}
		if matched {
			results = append(results, base+process.ProcessMemoryAddress(i))
		}
	}
	return results
}
