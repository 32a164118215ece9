package evo

import "allopatry/internal/genome"

// Hamming counts the sites at which two equal-length genomes differ.
func Hamming(a, b genome.Genome) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// MeanPairwiseDistance is the average genetic distance within a population:
// the mean Hamming distance over all M(M-1)/2 unordered pairs of distinct
// individuals, in raw site counts (not divided by sequence length). A
// population of one or zero genomes has no pairs and distance 0.
func MeanPairwiseDistance(pop []genome.Genome) float64 {
	m := len(pop)
	if m <= 1 {
		return 0
	}
	total := 0
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			total += Hamming(pop[i], pop[j])
		}
	}
	pairs := m * (m - 1) / 2
	return float64(total) / float64(pairs)
}

// MeanPairwiseDistancePerSite normalizes MeanPairwiseDistance by sequence
// length, giving the average proportion of differing sites per pair.
func MeanPairwiseDistancePerSite(pop []genome.Genome) float64 {
	if len(pop) == 0 || len(pop[0]) == 0 {
		return 0
	}
	return MeanPairwiseDistance(pop) / float64(len(pop[0]))
}

// SegregatingSites counts the sites that are polymorphic within the
// population, i.e. hold more than one base across individuals.
func SegregatingSites(pop []genome.Genome) int {
	if len(pop) == 0 {
		return 0
	}
	count := 0
	first := pop[0]
	for site := 0; site < len(first); site++ {
		for i := 1; i < len(pop); i++ {
			if pop[i][site] != first[site] {
				count++
				break
			}
		}
	}
	return count
}

// DistinctGenomes counts the unique sequences present in the population.
func DistinctGenomes(pop []genome.Genome) int {
	seen := make(map[genome.Genome]struct{}, len(pop))
	for _, g := range pop {
		seen[g] = struct{}{}
	}
	return len(seen)
}
