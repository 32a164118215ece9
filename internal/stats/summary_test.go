package stats

import (
	"testing"

	"allopatry/internal/model"
)

func sampleHistory() []model.DistanceSample {
	return []model.DistanceSample{
		{Generation: 1, Population: "population", Mean: 0},
		{Generation: 2, Population: "population", Mean: 1.5},
		{Generation: 3, Population: "population-1", Mean: 2.0},
		{Generation: 3, Population: "population-2", Mean: 0.5},
		{Generation: 4, Population: "population-1", Mean: 1.0},
		{Generation: 4, Population: "population-2", Mean: 2.5},
	}
}

func TestBySeriesGroupsInFirstSeenOrder(t *testing.T) {
	series := BySeries(sampleHistory())
	if len(series) != 3 {
		t.Fatalf("expected 3 series, got %d", len(series))
	}
	wantLabels := []string{"population", "population-1", "population-2"}
	for i, want := range wantLabels {
		if series[i].Label != want {
			t.Fatalf("series %d label %s, want %s", i, series[i].Label, want)
		}
	}
	first := series[0]
	if len(first.Generations) != 2 || first.Generations[0] != 1 || first.Generations[1] != 2 {
		t.Fatalf("unexpected generations for single population: %v", first.Generations)
	}
}

func TestSeriesAggregates(t *testing.T) {
	series := BySeries(sampleHistory())
	second := series[1]
	if got := second.Final(); got != 1.0 {
		t.Errorf("Final = %f, want 1.0", got)
	}
	if got := second.Max(); got != 2.0 {
		t.Errorf("Max = %f, want 2.0", got)
	}
	if got := second.Mean(); got != 1.5 {
		t.Errorf("Mean = %f, want 1.5", got)
	}

	var empty Series
	if empty.Final() != 0 || empty.Max() != 0 || empty.Mean() != 0 {
		t.Errorf("empty series aggregates should all be zero")
	}
}

func TestFinalDistances(t *testing.T) {
	final := FinalDistances(sampleHistory())
	want := map[string]float64{
		"population":   1.5,
		"population-1": 1.0,
		"population-2": 2.5,
	}
	for label, value := range want {
		if final[label] != value {
			t.Errorf("final[%s] = %f, want %f", label, final[label], value)
		}
	}
}
