package state

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is one workspace's applied-policy state.
type Record struct {
	// Workspace is the logical partition key, derived from the policy name.
	Workspace string

	// PolicyName is the display name of the policy applied in this workspace.
	PolicyName string

	// Condition is the policy's condition literal ("FAILURE" or "SUCCESS").
	Condition string

	// Fingerprint is a sha256 hex digest of the rendered resource, used to
	// tell changed applies from no-op reapplies.
	Fingerprint string

	// UpdatedAt is when the record was last written.
	UpdatedAt time.Time
}

// Store persists workspace records. Implementations are safe for
// concurrent use.
type Store interface {
	// Put inserts or replaces the record for rec.Workspace.
	Put(ctx context.Context, rec Record) error

	// Get returns the record for a workspace, reporting whether it exists.
	Get(ctx context.Context, workspace string) (Record, bool, error)

	// List returns all records ordered by workspace name.
	List(ctx context.Context) ([]Record, error)

	Close() error
}

// Memory is an in-memory Store for tests and dry runs.
type Memory struct {
	mu   sync.Mutex
	data map[string]Record
	now  func() time.Time // injectable for deterministic tests
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]Record),
		now:  time.Now,
	}
}

func (m *Memory) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.UpdatedAt = m.now()
	m.data[rec.Workspace] = rec
	return nil
}

func (m *Memory) Get(_ context.Context, workspace string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[workspace]
	return rec, ok, nil
}

func (m *Memory) List(_ context.Context) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.data))
	for _, rec := range m.data {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Workspace < out[j].Workspace })
	return out, nil
}

func (m *Memory) Close() error { return nil }
