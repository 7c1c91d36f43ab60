// Package journal keeps an append-only record of every operation result the
// orchestrator hands back to a caller.
package journal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded operation outcome.
type Entry struct {
	ID          uuid.UUID `json:"id"`
	Operation   string    `json:"operation"`
	MerchantID  string    `json:"merchantId"`
	OrderKey    string    `json:"orderKey"`
	TraceID     string    `json:"traceId"`
	Successful  bool      `json:"successful"`
	Code        string    `json:"code,omitempty"`
	Message     string    `json:"message,omitempty"`
	Synthesized bool      `json:"synthesized"`
	Timestamp   time.Time `json:"timestamp"`
}

// Recorder stores entries and lists them back oldest first.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// prepare fills in the id and timestamp when the caller left them empty.
func prepare(e Entry, now func() time.Time) Entry {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now().UTC()
	}
	return e
}

// MemoryRecorder keeps entries in process memory.
type MemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{now: time.Now}
}

func (m *MemoryRecorder) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, prepare(e, m.now))
	return nil
}

func (m *MemoryRecorder) List(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
