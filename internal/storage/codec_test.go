package storage

import (
	"errors"
	"testing"

	"allopatry/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	run := stampedRun("run-1", "2026-08-30T10:00:00Z")
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("EncodeRun: %v", err)
	}
	got, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("DecodeRun: %v", err)
	}
	if got.RunID != run.RunID || got.Params != run.Params || got.Seed != run.Seed {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, run)
	}
}

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := stampedRun("run-1", "2026-08-30T10:00:00Z")
	run.SchemaVersion = CurrentSchemaVersion + 1
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("EncodeRun: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeTraceRejectsVersionMismatch(t *testing.T) {
	records := []model.GenerationRecord{{Generation: 1}}
	data, err := EncodeTrace(records)
	if err != nil {
		t.Fatalf("EncodeTrace: %v", err)
	}
	if _, err := DecodeTrace(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch for unstamped records, got %v", err)
	}
}

func TestDecodeRunRejectsGarbage(t *testing.T) {
	if _, err := DecodeRun([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
