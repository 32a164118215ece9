package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"run_id": "cfg-run",
		"population_size": 24,
		"sequence_length": 40,
		"mutation_rate": 0.002,
		"split_generation": 5,
		"total_generations": 30,
		"seed": 77,
		"workers": 2,
		"keep_snapshots": true
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.RunID != "cfg-run" {
		t.Fatalf("run id: %q", req.RunID)
	}
	if req.PopulationSize != 24 || req.SequenceLength != 40 {
		t.Fatalf("sizes: %d/%d", req.PopulationSize, req.SequenceLength)
	}
	if req.MutationRate != 0.002 {
		t.Fatalf("mutation rate: %v", req.MutationRate)
	}
	if req.SplitGeneration != 5 || req.TotalGenerations != 30 {
		t.Fatalf("generations: %d/%d", req.SplitGeneration, req.TotalGenerations)
	}
	if req.Seed != 77 || req.Workers != 2 || !req.KeepSnapshots {
		t.Fatalf("seed/workers/snapshots: %d/%d/%t", req.Seed, req.Workers, req.KeepSnapshots)
	}
}

func TestLoadRunRequestIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, `{"population_size": 10, "color": "green"}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.PopulationSize != 10 {
		t.Fatalf("population size: %d", req.PopulationSize)
	}
}

func TestLoadRunRequestRejectsBadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOverrideFromFlagsOnlyTouchesSetFlags(t *testing.T) {
	req, err := loadRunRequestFromConfig(writeConfig(t, `{
		"population_size": 24,
		"total_generations": 30,
		"seed": 77
	}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	overrideFromFlags(&req, map[string]bool{"pop": true, "seed": true}, map[string]any{
		"pop":  200,
		"gens": 999,
		"seed": int64(5),
	})

	if req.PopulationSize != 200 {
		t.Fatalf("population size not overridden: %d", req.PopulationSize)
	}
	if req.TotalGenerations != 30 {
		t.Fatalf("unset flag leaked into request: %d", req.TotalGenerations)
	}
	if req.Seed != 5 {
		t.Fatalf("seed not overridden: %d", req.Seed)
	}
}

func TestApplyRunDefaultsBackfillsZeroValues(t *testing.T) {
	req, err := loadRunRequestFromConfig(writeConfig(t, `{"population_size": 24}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	applyRunDefaults(&req, 100, 60, 0.001, 50, 100, 1, 4, false)

	if req.PopulationSize != 24 {
		t.Fatalf("configured value clobbered: %d", req.PopulationSize)
	}
	if req.SequenceLength != 60 || req.TotalGenerations != 100 {
		t.Fatalf("defaults not applied: %d/%d", req.SequenceLength, req.TotalGenerations)
	}
	if req.MutationRate != 0.001 {
		t.Fatalf("mutation default not applied: %v", req.MutationRate)
	}
	if req.RunID != "" {
		t.Fatalf("run id should stay empty, got %q", req.RunID)
	}
}

func TestValueCoercionHelpers(t *testing.T) {
	if v, ok := asInt(float64(7)); !ok || v != 7 {
		t.Fatalf("asInt(float64): %d %t", v, ok)
	}
	if _, ok := asInt("7"); ok {
		t.Fatalf("asInt should reject strings")
	}
	if v, ok := asInt64(float64(9)); !ok || v != 9 {
		t.Fatalf("asInt64(float64): %d %t", v, ok)
	}
	if v, ok := asFloat64(3); !ok || v != 3.0 {
		t.Fatalf("asFloat64(int): %v %t", v, ok)
	}
	if v, ok := asBool(true); !ok || !v {
		t.Fatalf("asBool: %t %t", v, ok)
	}
	if _, ok := asString(12); ok {
		t.Fatalf("asString should reject numbers")
	}
}
