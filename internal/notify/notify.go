// Package notify fans generation events out to registered channels
// (webhooks, websocket clients) while a simulation runs.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"allopatry/internal/model"
)

// Event is one generation's worth of progress for a run.
type Event struct {
	RunID       string                     `json:"run_id"`
	Generation  int                        `json:"generation"`
	Timestamp   int64                      `json:"timestamp"`
	Populations []model.PopulationSnapshot `json:"populations"`
}

// FromRecord builds an event from a generation record. Genome snapshots are
// stripped; subscribers get sizes and distances, not full sequences.
func FromRecord(runID string, record model.GenerationRecord) Event {
	populations := make([]model.PopulationSnapshot, len(record.Populations))
	for i, snap := range record.Populations {
		snap.Genomes = nil
		populations[i] = snap
	}
	return Event{
		RunID:       runID,
		Generation:  record.Generation,
		Timestamp:   time.Now().Unix(),
		Populations: populations,
	}
}

func (e Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is the interface every notification channel implements.
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, event Event) error
	Close() error
}

type job struct {
	event Event
}

// Manager owns the registered notifiers and dispatches events to all of
// them off the simulation goroutine.
type Manager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan job
	closed    bool
	wg        sync.WaitGroup

	logf func(format string, v ...any)
}

func NewManager() *Manager {
	return NewManagerWithLogf(nil)
}

// NewManagerWithLogf lets the caller capture delivery failures; nil
// discards them.
func NewManagerWithLogf(logf func(format string, v ...any)) *Manager {
	m := &Manager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan job, 1024),
		logf:      logf,
	}
	m.wg.Add(1)
	go m.run()
	return m
}

func (m *Manager) Register(n Notifier) error {
	if n == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := n.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	m.notifiers[id] = n
	return nil
}

func (m *Manager) Unregister(id string) error {
	m.mu.Lock()
	n, exists := m.notifiers[id]
	if exists {
		delete(m.notifiers, id)
	}
	m.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	return n.Close()
}

// Publish queues an event for asynchronous delivery to every notifier.
// Events are dropped when the queue is full or the manager is closed.
// The send happens under the read lock so a concurrent Close cannot close
// the channel between the closed-check and the send.
func (m *Manager) Publish(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.jobs <- job{event: event}:
	default:
		if m.logf != nil {
			m.logf("notification queue full, dropping generation %d of run %s", event.Generation, event.RunID)
		}
	}
}

func (m *Manager) run() {
	defer m.wg.Done()
	for j := range m.jobs {
		m.mu.RLock()
		targets := make([]Notifier, 0, len(m.notifiers))
		for _, n := range m.notifiers {
			targets = append(targets, n)
		}
		m.mu.RUnlock()

		for _, n := range targets {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := n.Notify(ctx, j.event); err != nil && m.logf != nil {
				m.logf("notifier %s (%s) failed: %v", n.ID(), n.Type(), err)
			}
			cancel()
		}
	}
}

// Close drains the queue, closes every notifier and stops the dispatcher.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.jobs)
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for id, n := range m.notifiers {
		if err := n.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing notifier %s: %w", id, err)
		}
		delete(m.notifiers, id)
	}
	return firstErr
}
