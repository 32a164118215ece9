// Package allopatry is the public entry point used by the CLI and server:
// it runs speciation simulations and persists their traces through a
// configurable store backend.
package allopatry

import (
	"context"
	"fmt"
	"time"

	"allopatry/internal/evo"
	"allopatry/internal/model"
	"allopatry/internal/stats"
	"allopatry/internal/storage"
)

const defaultDBPath = "allopatry.db"

type Options struct {
	StoreKind   string
	DBPath      string
	PostgresDSN string
	Logger      evo.Logger
}

type Client struct {
	store  storage.Store
	logger evo.Logger

	initialized bool
}

type RunRequest struct {
	RunID            string
	PopulationSize   int
	SequenceLength   int
	MutationRate     float64
	SplitGeneration  int
	TotalGenerations int
	Seed             int64
	Workers          int
	// KeepSnapshots stores every generation's genomes in the trace, not
	// just the final population.
	KeepSnapshots bool
	// OnGeneration, when set, observes each generation record as the
	// simulation produces it.
	OnGeneration func(model.GenerationRecord)
}

type RunSummary struct {
	RunID            string
	Params           model.SimulationParameters
	Seed             int64
	SplitOccurred    bool
	Records          []model.GenerationRecord
	DistanceHistory  []model.DistanceSample
	FinalDistances   map[string]float64
	FinalPopulations []model.PopulationSnapshot
}

type RunItem struct {
	RunID          string
	CreatedAtUTC   string
	Seed           int64
	Params         model.SimulationParameters
	SplitOccurred  bool
	FinalDistances map[string]float64
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = evo.NoOpLogger{}
	}

	store, err := storage.NewStore(storeKind, storage.Config{
		SQLitePath:  dbPath,
		PostgresDSN: opts.PostgresDSN,
	})
	if err != nil {
		return nil, err
	}

	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// Run executes one simulation and persists its registry entry, trace and
// distance history. Parameters are validated before any state is touched.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Workers <= 0 {
		req.Workers = 1
	}

	params := model.SimulationParameters{
		PopulationSize:   req.PopulationSize,
		SequenceLength:   req.SequenceLength,
		MutationRate:     req.MutationRate,
		SplitGeneration:  req.SplitGeneration,
		TotalGenerations: req.TotalGenerations,
	}

	monitor, err := evo.NewPopulationMonitor(evo.MonitorConfig{
		Params:        params,
		Seed:          req.Seed,
		Workers:       req.Workers,
		KeepSnapshots: req.KeepSnapshots,
		Logger:        c.logger,
		OnGeneration:  req.OnGeneration,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}

	now := time.Now().UTC()
	runID := req.RunID
	if runID == "" {
		runID = fmt.Sprintf("drift-%d-%d", req.Seed, now.Unix())
	}

	result, err := monitor.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	finalDistances := stats.FinalDistances(result.DistanceHistory)

	run := model.RunRecord{
		VersionedRecord: versioned(),
		RunID:           runID,
		CreatedAtUTC:    now.Format(time.RFC3339),
		Seed:            req.Seed,
		Params:          params,
		SplitOccurred:   result.SplitOccurred,
		FinalDistances:  finalDistances,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, fmt.Errorf("save run %s: %w", runID, err)
	}

	records := make([]model.GenerationRecord, len(result.Records))
	for i, record := range result.Records {
		record.VersionedRecord = versioned()
		records[i] = record
	}
	if err := c.store.SaveTrace(ctx, runID, records); err != nil {
		return RunSummary{}, fmt.Errorf("save trace %s: %w", runID, err)
	}
	if err := c.store.SaveDistanceHistory(ctx, runID, result.DistanceHistory); err != nil {
		return RunSummary{}, fmt.Errorf("save distance history %s: %w", runID, err)
	}

	return RunSummary{
		RunID:            runID,
		Params:           params,
		Seed:             req.Seed,
		SplitOccurred:    result.SplitOccurred,
		Records:          records,
		DistanceHistory:  result.DistanceHistory,
		FinalDistances:   finalDistances,
		FinalPopulations: result.FinalPopulations,
	}, nil
}

// Runs lists stored runs, newest first. A non-positive limit returns all.
func (c *Client) Runs(ctx context.Context, limit int) ([]RunItem, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	items := make([]RunItem, len(runs))
	for i, run := range runs {
		items[i] = RunItem{
			RunID:          run.RunID,
			CreatedAtUTC:   run.CreatedAtUTC,
			Seed:           run.Seed,
			Params:         run.Params,
			SplitOccurred:  run.SplitOccurred,
			FinalDistances: run.FinalDistances,
		}
	}
	return items, nil
}

// Trace returns the stored generation records of a run.
func (c *Client) Trace(ctx context.Context, runID string) ([]model.GenerationRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	records, ok, err := c.store.GetTrace(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no trace stored for run %s", runID)
	}
	return records, nil
}

// Distances returns the per-generation distance series of a run.
func (c *Client) Distances(ctx context.Context, runID string) ([]stats.Series, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	samples, ok, err := c.store.GetDistanceHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no distance history stored for run %s", runID)
	}
	return stats.BySeries(samples), nil
}

func versioned() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: storage.CurrentSchemaVersion,
		CodecVersion:  storage.CurrentCodecVersion,
	}
}
