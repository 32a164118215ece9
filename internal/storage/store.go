package storage

import (
	"context"

	"allopatry/internal/model"
)

// Store persists completed simulation runs: the run registry entry, the
// generation trace and the flattened distance history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, runID string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveTrace(ctx context.Context, runID string, records []model.GenerationRecord) error
	GetTrace(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SaveDistanceHistory(ctx context.Context, runID string, samples []model.DistanceSample) error
	GetDistanceHistory(ctx context.Context, runID string) ([]model.DistanceSample, bool, error)
}
