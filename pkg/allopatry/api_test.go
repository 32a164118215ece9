package allopatry

import (
	"context"
	"testing"

	"allopatry/internal/evo"
)

func newMemoryClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRunPersistsAndReturnsSummary(t *testing.T) {
	client := newMemoryClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, RunRequest{
		RunID:            "demo",
		PopulationSize:   8,
		SequenceLength:   16,
		MutationRate:     0.05,
		SplitGeneration:  3,
		TotalGenerations: 6,
		Seed:             42,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID != "demo" {
		t.Fatalf("run id: %q", summary.RunID)
	}
	if !summary.SplitOccurred {
		t.Fatalf("expected split at generation 3")
	}
	if len(summary.Records) != 6 {
		t.Fatalf("records: %d, want 6", len(summary.Records))
	}
	if len(summary.FinalPopulations) != 2 {
		t.Fatalf("final populations: %d, want 2", len(summary.FinalPopulations))
	}
	if _, ok := summary.FinalDistances[evo.LabelFirst]; !ok {
		t.Fatalf("final distances missing %s: %v", evo.LabelFirst, summary.FinalDistances)
	}

	runs, err := client.Runs(ctx, 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "demo" {
		t.Fatalf("listed runs: %+v", runs)
	}
	if runs[0].Seed != 42 {
		t.Fatalf("stored seed: %d", runs[0].Seed)
	}

	trace, err := client.Trace(ctx, "demo")
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(trace) != 6 {
		t.Fatalf("trace length: %d", len(trace))
	}
	for _, record := range trace[3:] {
		if len(record.Populations) != 2 {
			t.Fatalf("generation %d populations: %d, want 2",
				record.Generation, len(record.Populations))
		}
	}

	series, err := client.Distances(ctx, "demo")
	if err != nil {
		t.Fatalf("Distances: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("distance series: %d, want 3", len(series))
	}
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	client := newMemoryClient(t)

	_, err := client.Run(context.Background(), RunRequest{
		PopulationSize:   0,
		SequenceLength:   4,
		MutationRate:     0.1,
		SplitGeneration:  1,
		TotalGenerations: 2,
	})
	if err == nil {
		t.Fatalf("expected validation error for empty population")
	}
}

func TestRunGeneratesIDWhenUnset(t *testing.T) {
	client := newMemoryClient(t)

	summary, err := client.Run(context.Background(), RunRequest{
		PopulationSize:   4,
		SequenceLength:   4,
		MutationRate:     0,
		SplitGeneration:  10,
		TotalGenerations: 2,
		Seed:             7,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatalf("expected a generated run id")
	}
	if summary.SplitOccurred {
		t.Fatalf("split generation beyond horizon should not split")
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	req := RunRequest{
		PopulationSize:   6,
		SequenceLength:   12,
		MutationRate:     0.1,
		SplitGeneration:  2,
		TotalGenerations: 5,
		Seed:             99,
		KeepSnapshots:    true,
	}

	first, err := newMemoryClient(t).Run(ctx, func() RunRequest { r := req; r.RunID = "a"; return r }())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := newMemoryClient(t).Run(ctx, func() RunRequest { r := req; r.RunID = "b"; return r }())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(first.Records) != len(second.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(first.Records), len(second.Records))
	}
	for i := range first.Records {
		a, b := first.Records[i], second.Records[i]
		if len(a.Populations) != len(b.Populations) {
			t.Fatalf("generation %d population counts differ", a.Generation)
		}
		for j := range a.Populations {
			pa, pb := a.Populations[j], b.Populations[j]
			if pa.MeanDistance != pb.MeanDistance {
				t.Fatalf("generation %d %s distance differs: %v vs %v",
					a.Generation, pa.Label, pa.MeanDistance, pb.MeanDistance)
			}
			for k := range pa.Genomes {
				if pa.Genomes[k] != pb.Genomes[k] {
					t.Fatalf("generation %d %s genome %d differs", a.Generation, pa.Label, k)
				}
			}
		}
	}
}

func TestTraceUnknownRun(t *testing.T) {
	client := newMemoryClient(t)
	if _, err := client.Trace(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}
