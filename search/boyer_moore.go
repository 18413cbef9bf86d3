package search

import "memedit/process"

// BoyerMoore uses only the bad-character rule: on a mismatch at j the
// mismatched byte is aligned with its last occurrence in the pattern.
type BoyerMoore struct{}

func (BoyerMoore) Search(buf []byte, base process.ProcessMemoryAddress, pattern []byte) []process.ProcessMemoryAddress {
	if degenerate(buf, pattern) {
		return nil
	}

	m := len(pattern)

	var last [256]int
	for i := range last {
		last[i] = -1
	}
	for i, b := range pattern {
		last[b] = i
	}

	var results []process.ProcessMemoryAddress
	for pos := 0; pos <= len(buf)-m; {
		j := m - 1
		for j >= 0 && buf[pos+j] == pattern[j] {
			j--
		}

		if j < 0 {
			results = append(results, base+process.ProcessMemoryAddress(pos))
			pos++
			continue
		}

		pos += max(1, j-last[buf[pos+j]])
	}
	return results
}

// BoyerMooreGoodSuffix combines a 256-entry bad-character table with the
// strong good-suffix rule.
//
// The bad-character table is built over pattern[:m-1] and is indexed by the
// byte under the last pattern position, so every entry is at least 1.
type BoyerMooreGoodSuffix struct{}

func (BoyerMooreGoodSuffix) Search(buf []byte, base process.ProcessMemoryAddress, pattern []byte) []process.ProcessMemoryAddress {
	if degenerate(buf, pattern) {
		return nil
	}

	m := len(pattern)
	badChar := badCharacterTable(pattern)
	goodSuffix := goodSuffixTable(pattern)

	var results []process.ProcessMemoryAddress
	for pos := 0; pos <= len(buf)-m; {
		j := m - 1
		for j >= 0 && buf[pos+j] == pattern[j] {
			j--
		}

		if j < 0 {
			results = append(results, base+process.ProcessMemoryAddress(pos))
			pos++
			continue
		}

		pos += max(badChar[buf[pos+m-1]], goodSuffix[j+1])
	}
	return results
}

// badCharacterTable maps each byte to the distance from its right-most
// occurrence in pattern[:m-1] to the end of the pattern, or m if absent.
func badCharacterTable(pattern []byte) [256]int {
	m := len(pattern)

	var table [256]int
	for i := range table {
		table[i] = m
	}
	for i := 0; i < m-1; i++ {
		table[pattern[i]] = m - 1 - i
	}
	return table
}

// goodSuffixTable returns shift[j+1] for a mismatch at j, computed from the
// border positions of every pattern suffix. All entries are >= 1.
func goodSuffixTable(pattern []byte) []int {
	m := len(pattern)
	shift := make([]int, m+1)
	border := make([]int, m+1)

	// suffixes whose border is followed by a different byte
	i, b := m, m+1
	border[i] = b
	for i > 0 {
		for b <= m && pattern[i-1] != pattern[b-1] {
			if shift[b] == 0 {
				shift[b] = b - i
			}
			b = border[b]
		}
		i--
		b--
		border[i] = b
	}

	// remaining entries fall back to the widest border of the whole pattern
	b = border[0]
	for i := 0; i <= m; i++ {
		if shift[i] == 0 {
			shift[i] = b
		}
		if i == b {
			b = border[b]
		}
	}
	return shift
}
