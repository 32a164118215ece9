// Package genome holds the sequence representation shared by the whole
// simulator: haploid genomes over the four-letter nucleotide alphabet.
package genome

import "fmt"

// Bases is the nucleotide alphabet. Site values are always one of these four
// bytes; ambiguity codes are not supported.
const Bases = "ACGT"

// BaseA is the founder base every initial genome is filled with. Which base
// is used is irrelevant to the dynamics as long as all founders are identical.
const BaseA = 'A'

// Genome is an immutable fixed-length nucleotide sequence. The string
// representation gives value semantics for free: assigning a Genome to an
// offspring slot never aliases mutable state with the parent.
type Genome string

// Len returns the number of sites.
func (g Genome) Len() int {
	return len(g)
}

// Founder returns an all-adenine genome of the given length.
func Founder(length int) Genome {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = BaseA
	}
	return Genome(buf)
}

// FounderPopulation returns n identical founder genomes of the given length.
func FounderPopulation(n, length int) []Genome {
	pop := make([]Genome, n)
	founder := Founder(length)
	for i := range pop {
		pop[i] = founder
	}
	return pop
}

// Validate reports whether every site holds a known base.
func (g Genome) Validate() error {
	for i := 0; i < len(g); i++ {
		if baseIndex(g[i]) < 0 {
			return fmt.Errorf("invalid base %q at site %d", g[i], i)
		}
	}
	return nil
}

func baseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	default:
		return -1
	}
}
