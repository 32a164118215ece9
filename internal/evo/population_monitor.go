package evo

import (
	"context"
	"math/rand"

	"allopatry/internal/genome"
	"allopatry/internal/model"
)

// Population labels used in generation records. Before the split a single
// population exists; the split replaces it with two descendant populations.
const (
	LabelSingle = "population"
	LabelFirst  = "population-1"
	LabelSecond = "population-2"
)

type MonitorConfig struct {
	Params model.SimulationParameters
	Seed   int64
	// Workers caps the goroutines used to fill offspring slots within one
	// generation. The generation loop itself is sequential.
	Workers int
	// KeepSnapshots includes every generation's genomes in the trace.
	// Distances and diversity diagnostics are recorded either way.
	KeepSnapshots bool
	Logger        Logger
	// OnGeneration, when set, receives each generation record as soon as
	// it is complete. Called on the driver goroutine.
	OnGeneration func(model.GenerationRecord)
}

type RunResult struct {
	Records          []model.GenerationRecord
	DistanceHistory  []model.DistanceSample
	SplitOccurred    bool
	FinalPopulations []model.PopulationSnapshot
}

// PopulationMonitor owns the generation loop: resampling, mutation, the
// one-shot speciation split and per-generation distance bookkeeping.
type PopulationMonitor struct {
	cfg     MonitorConfig
	rng     *rand.Rand
	sampler DriftSampler
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if err := ValidateParameters(cfg.Params); err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = NoOpLogger{}
	}

	return &PopulationMonitor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		sampler: DriftSampler{
			Mutator: genome.Mutator{Rate: cfg.Params.MutationRate},
			Workers: cfg.Workers,
		},
	}, nil
}

// Run executes the full simulation and returns the trace. The loop cannot
// fail once parameters are validated; only context cancellation stops it
// early.
func (m *PopulationMonitor) Run(ctx context.Context) (RunResult, error) {
	p := m.cfg.Params

	pops := [][]genome.Genome{genome.FounderPopulation(p.PopulationSize, p.SequenceLength)}
	labels := []string{LabelSingle}
	rngs := []*rand.Rand{m.rng}

	willSplit := p.SplitGeneration <= p.TotalGenerations
	splitDone := false

	result := RunResult{
		Records:         make([]model.GenerationRecord, 0, p.TotalGenerations),
		DistanceHistory: make([]model.DistanceSample, 0, p.TotalGenerations*2),
	}

	split := func() {
		a, b := Split(pops[0])
		pops = [][]genome.Genome{a, b}
		labels = []string{LabelFirst, LabelSecond}
		rngs = []*rand.Rand{
			rand.New(rand.NewSource(m.rng.Int63())),
			rand.New(rand.NewSource(m.rng.Int63())),
		}
		splitDone = true
		result.SplitOccurred = true
		m.cfg.Logger.Infof("speciation split after generation %d: %d/%d individuals", p.SplitGeneration, len(a), len(b))
	}

	// A split generation of zero divides the founders before generation 1.
	if willSplit && p.SplitGeneration == 0 {
		split()
	}

	for gen := 1; gen <= p.TotalGenerations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		for i := range pops {
			pops[i] = m.sampler.Reproduce(rngs[i], pops[i])
		}

		record := m.buildRecord(gen, labels, pops, m.cfg.KeepSnapshots)
		result.Records = append(result.Records, record)
		for _, snap := range record.Populations {
			result.DistanceHistory = append(result.DistanceHistory, model.DistanceSample{
				Generation: gen,
				Population: snap.Label,
				Mean:       snap.MeanDistance,
			})
			m.cfg.Logger.Debugf("generation %d %s: mean distance %.4f", gen, snap.Label, snap.MeanDistance)
		}
		if m.cfg.OnGeneration != nil {
			m.cfg.OnGeneration(record)
		}

		// The split consumes no generation step: generation g is recorded
		// as a single population, generations g+1..G as two.
		if willSplit && !splitDone && gen == p.SplitGeneration {
			split()
		}
	}

	final := m.buildRecord(p.TotalGenerations, labels, pops, true)
	result.FinalPopulations = final.Populations
	return result, nil
}

func (m *PopulationMonitor) buildRecord(gen int, labels []string, pops [][]genome.Genome, keepGenomes bool) model.GenerationRecord {
	record := model.GenerationRecord{
		Generation:  gen,
		Populations: make([]model.PopulationSnapshot, 0, len(pops)),
	}
	for i, pop := range pops {
		snap := model.PopulationSnapshot{
			Label:            labels[i],
			Size:             len(pop),
			MeanDistance:     MeanPairwiseDistance(pop),
			DistinctGenomes:  DistinctGenomes(pop),
			SegregatingSites: SegregatingSites(pop),
		}
		if keepGenomes {
			snap.Genomes = make([]string, len(pop))
			for j, g := range pop {
				snap.Genomes[j] = string(g)
			}
		}
		record.Populations = append(record.Populations, snap)
	}
	return record
}
