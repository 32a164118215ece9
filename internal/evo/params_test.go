package evo

import (
	"errors"
	"testing"

	"allopatry/internal/model"
)

func validParams() model.SimulationParameters {
	return model.SimulationParameters{
		PopulationSize:   4,
		SequenceLength:   3,
		MutationRate:     0.1,
		SplitGeneration:  2,
		TotalGenerations: 3,
	}
}

func TestValidateParameters(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.SimulationParameters)
		want   error
	}{
		{"valid", func(p *model.SimulationParameters) {}, nil},
		{"zero population", func(p *model.SimulationParameters) { p.PopulationSize = 0 }, ErrInvalidPopulationSize},
		{"negative population", func(p *model.SimulationParameters) { p.PopulationSize = -2 }, ErrInvalidPopulationSize},
		{"odd population with split", func(p *model.SimulationParameters) { p.PopulationSize = 5 }, ErrInvalidPopulationSize},
		{"odd population without split", func(p *model.SimulationParameters) {
			p.PopulationSize = 5
			p.SplitGeneration = 10
		}, nil},
		{"zero length", func(p *model.SimulationParameters) { p.SequenceLength = 0 }, ErrInvalidSequenceLength},
		{"negative rate", func(p *model.SimulationParameters) { p.MutationRate = -0.01 }, ErrInvalidMutationRate},
		{"rate above one", func(p *model.SimulationParameters) { p.MutationRate = 1.01 }, ErrInvalidMutationRate},
		{"negative split generation", func(p *model.SimulationParameters) { p.SplitGeneration = -1 }, ErrInvalidGenerationBound},
		{"zero total generations", func(p *model.SimulationParameters) { p.TotalGenerations = 0 }, ErrInvalidGenerationBound},
		{"boundary rates", func(p *model.SimulationParameters) { p.MutationRate = 1 }, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			err := ValidateParameters(p)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}
