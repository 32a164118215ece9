package main

import (
	"encoding/json"
	"fmt"
	"os"

	"allopatry/pkg/allopatry"
)

func loadRunRequestFromConfig(path string) (allopatry.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return allopatry.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return allopatry.RunRequest{}, err
	}

	var req allopatry.RunRequest
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asInt(raw["population_size"]); ok {
		req.PopulationSize = v
	}
	if v, ok := asInt(raw["sequence_length"]); ok {
		req.SequenceLength = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		req.MutationRate = v
	}
	if v, ok := asInt(raw["split_generation"]); ok {
		req.SplitGeneration = v
	}
	if v, ok := asInt(raw["total_generations"]); ok {
		req.TotalGenerations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asBool(raw["keep_snapshots"]); ok {
		req.KeepSnapshots = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (allopatry.RunRequest, error) {
	if configPath == "" {
		return allopatry.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return allopatry.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func overrideFromFlags(req *allopatry.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "pop":
			req.PopulationSize = v.(int)
		case "seq-len":
			req.SequenceLength = v.(int)
		case "mu":
			req.MutationRate = v.(float64)
		case "split-gen":
			req.SplitGeneration = v.(int)
		case "gens":
			req.TotalGenerations = v.(int)
		case "seed":
			req.Seed = v.(int64)
		case "workers":
			req.Workers = v.(int)
		case "snapshots":
			req.KeepSnapshots = v.(bool)
		}
	}
}

// applyRunDefaults backfills parameters the config and flags left unset with
// the flag defaults. RunID stays untouched so the API can generate one.
func applyRunDefaults(req *allopatry.RunRequest, popSize, seqLen int, mutationRate float64, splitGen, generations int, seed int64, workers int, snapshots bool) {
	if req.PopulationSize == 0 {
		req.PopulationSize = popSize
	}
	if req.SequenceLength == 0 {
		req.SequenceLength = seqLen
	}
	if req.MutationRate == 0 {
		req.MutationRate = mutationRate
	}
	if req.SplitGeneration == 0 {
		req.SplitGeneration = splitGen
	}
	if req.TotalGenerations == 0 {
		req.TotalGenerations = generations
	}
	if req.Seed == 0 {
		req.Seed = seed
	}
	if req.Workers == 0 {
		req.Workers = workers
	}
	if !req.KeepSnapshots {
		req.KeepSnapshots = snapshots
	}
}

func asString(v any) (string, bool) {
	x, ok := v.(string)
	return x, ok
}

func asBool(v any) (bool, bool) {
	x, ok := v.(bool)
	return x, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
