package evo

import (
	"math/rand"
	"sync"

	"allopatry/internal/genome"
)

// DriftSampler produces the next generation from the current one by
// Wright-Fisher resampling: every offspring slot draws its parent uniformly
// with replacement, copies the parent's genome and passes it through the
// mutator. Because the draw is uniform and with replacement, offspring
// counts per parent are multinomial and allele frequencies perform an
// unbiased random walk bounded only by fixation.
type DriftSampler struct {
	Mutator genome.Mutator
	// Workers caps the goroutines filling offspring slots. Zero or one
	// keeps reproduction on the calling goroutine.
	Workers int
}

// Reproduce returns the offspring population. Its size always equals the
// input size. Parent indices and one RNG seed per offspring slot are drawn
// sequentially from rng before any work is dispatched, and results land by
// slot index, so the output is identical for a fixed seed no matter how
// many workers run.
func (s DriftSampler) Reproduce(rng *rand.Rand, pop []genome.Genome) []genome.Genome {
	if len(pop) == 0 {
		return nil
	}

	parents := make([]int, len(pop))
	seeds := make([]int64, len(pop))
	for i := range pop {
		parents[i] = rng.Intn(len(pop))
		seeds[i] = rng.Int63()
	}

	next := make([]genome.Genome, len(pop))

	workers := s.Workers
	if workers > len(pop) {
		workers = len(pop)
	}
	if workers <= 1 {
		for i := range pop {
			next[i] = s.Mutator.Mutate(rand.New(rand.NewSource(seeds[i])), pop[parents[i]])
		}
		return next
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				next[i] = s.Mutator.Mutate(rand.New(rand.NewSource(seeds[i])), pop[parents[i]])
			}
		}()
	}
	for i := range pop {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return next
}
