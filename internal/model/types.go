package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SimulationParameters are the validated inputs of one simulation run.
type SimulationParameters struct {
	PopulationSize   int     `json:"population_size"`
	SequenceLength   int     `json:"sequence_length"`
	MutationRate     float64 `json:"mutation_rate"`
	SplitGeneration  int     `json:"split_generation"`
	TotalGenerations int     `json:"total_generations"`
}

// PopulationSnapshot is the per-population slice of a generation record.
// Genomes are plain nucleotide strings so the record is JSON-stable.
type PopulationSnapshot struct {
	Label            string   `json:"label"`
	Genomes          []string `json:"genomes,omitempty"`
	Size             int      `json:"size"`
	MeanDistance     float64  `json:"mean_distance"`
	DistinctGenomes  int      `json:"distinct_genomes"`
	SegregatingSites int      `json:"segregating_sites"`
}

// GenerationRecord is one entry of the simulation trace: the generation
// index plus one snapshot per population alive at that generation (one
// before the split boundary, two after).
type GenerationRecord struct {
	VersionedRecord
	Generation  int                  `json:"generation"`
	Populations []PopulationSnapshot `json:"populations"`
}

// DistanceSample is one point of the flattened distance history, keyed by
// generation and population label.
type DistanceSample struct {
	Generation int     `json:"generation"`
	Population string  `json:"population"`
	Mean       float64 `json:"mean"`
}

// RunRecord is the persisted registry entry of a completed run.
type RunRecord struct {
	VersionedRecord
	RunID          string               `json:"run_id"`
	CreatedAtUTC   string               `json:"created_at_utc"`
	Seed           int64                `json:"seed"`
	Params         SimulationParameters `json:"params"`
	SplitOccurred  bool                 `json:"split_occurred"`
	FinalDistances map[string]float64   `json:"final_distances"`
}
