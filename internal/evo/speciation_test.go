package evo

import (
	"testing"

	"allopatry/internal/genome"
)

func TestSplitSizes(t *testing.T) {
	cases := []struct {
		size, wantA, wantB int
	}{
		{4, 2, 2},
		{5, 3, 2},
		{2, 1, 1},
		{1, 1, 0},
		{0, 0, 0},
	}
	for _, tc := range cases {
		pop := genome.FounderPopulation(tc.size, 3)
		a, b := Split(pop)
		if len(a) != tc.wantA || len(b) != tc.wantB {
			t.Errorf("Split(size %d) = %d/%d, want %d/%d", tc.size, len(a), len(b), tc.wantA, tc.wantB)
		}
		if len(a) < len(b) {
			t.Errorf("Split(size %d): first half smaller than second", tc.size)
		}
		if len(a)+len(b) != tc.size {
			t.Errorf("Split(size %d): individuals lost or duplicated", tc.size)
		}
	}
}

func TestSplitPreservesOrderAndContent(t *testing.T) {
	pop := []genome.Genome{"AAAA", "CCCC", "GGGG", "TTTT", "ACGT"}
	a, b := Split(pop)

	joined := append(append([]genome.Genome(nil), a...), b...)
	for i, g := range joined {
		if g != pop[i] {
			t.Fatalf("individual %d changed across split: %s vs %s", i, g, pop[i])
		}
	}
}

func TestSplitHalvesDoNotAliasInput(t *testing.T) {
	pop := []genome.Genome{"AAAA", "CCCC", "GGGG", "TTTT"}
	a, _ := Split(pop)
	a[0] = "TTTT"
	if pop[0] != "AAAA" {
		t.Fatalf("mutating a split half leaked into the source population")
	}
}
