package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRequiresCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "missing command") {
		t.Fatalf("err: %v", err)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("err: %v", err)
	}
}

func TestRunCommandAgainstMemoryStore(t *testing.T) {
	err := run(context.Background(), []string{"run",
		"-store", "memory",
		"-run-id", "cli-run",
		"-pop", "6",
		"-seq-len", "10",
		"-mu", "0.01",
		"-split-gen", "2",
		"-gens", "4",
		"-seed", "9",
	})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestRunCommandRejectsInvalidParameters(t *testing.T) {
	err := run(context.Background(), []string{"run",
		"-store", "memory",
		"-pop", "-3",
		"-seq-len", "10",
		"-mu", "0.01",
		"-split-gen", "2",
		"-gens", "4",
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestTraceCommandRequiresRunID(t *testing.T) {
	err := run(context.Background(), []string{"trace", "-store", "memory"})
	if err == nil || !strings.Contains(err.Error(), "-run-id") {
		t.Fatalf("err: %v", err)
	}
}

func TestInitCommandUnknownStore(t *testing.T) {
	err := run(context.Background(), []string{"init", "-store", "bogus",
		"-db-path", filepath.Join(t.TempDir(), "x.db")})
	if err == nil {
		t.Fatalf("expected error for unknown store kind")
	}
}
