package evo

import (
	"errors"
	"fmt"

	"allopatry/internal/model"
)

var (
	ErrInvalidPopulationSize  = errors.New("invalid population size")
	ErrInvalidSequenceLength  = errors.New("invalid sequence length")
	ErrInvalidMutationRate    = errors.New("invalid mutation rate")
	ErrInvalidGenerationBound = errors.New("invalid generation bound")
)

// ValidateParameters checks the five run inputs before any state is built.
//
// Population size must be positive; it must additionally be even when the
// split will actually fire (split generation within the run), since only
// then are two equal halves required. A split generation beyond the total
// generation count is a normal no-split run, not an error.
func ValidateParameters(p model.SimulationParameters) error {
	if p.PopulationSize <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidPopulationSize, p.PopulationSize)
	}
	if p.SequenceLength <= 0 {
		return fmt.Errorf("%w: must be positive, got %d", ErrInvalidSequenceLength, p.SequenceLength)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("%w: must be in [0, 1], got %g", ErrInvalidMutationRate, p.MutationRate)
	}
	if p.SplitGeneration < 0 {
		return fmt.Errorf("%w: split generation must be >= 0, got %d", ErrInvalidGenerationBound, p.SplitGeneration)
	}
	if p.TotalGenerations <= 0 {
		return fmt.Errorf("%w: total generations must be positive, got %d", ErrInvalidGenerationBound, p.TotalGenerations)
	}
	if p.SplitGeneration <= p.TotalGenerations && p.PopulationSize%2 != 0 {
		return fmt.Errorf("%w: must be even when a split occurs, got %d", ErrInvalidPopulationSize, p.PopulationSize)
	}
	return nil
}
