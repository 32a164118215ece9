package evo

import "allopatry/internal/genome"

// Split partitions a population into the two descendant populations of a
// speciation event. The first ceil(M/2) individuals in the current ordering
// form the first half; the remainder form the second. Together the two
// halves carry exactly the input individuals, none duplicated or dropped,
// and the first half is never smaller than the second.
func Split(pop []genome.Genome) ([]genome.Genome, []genome.Genome) {
	half := (len(pop) + 1) / 2
	a := append([]genome.Genome(nil), pop[:half]...)
	b := append([]genome.Genome(nil), pop[half:]...)
	return a, b
}
