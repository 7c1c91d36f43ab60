package journal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorder_RecordAndList(t *testing.T) {
	rec := NewMemoryRecorder()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, Entry{Operation: "capture", OrderKey: "K2", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, rec.Record(ctx, Entry{Operation: "proceed", OrderKey: "K1", Timestamp: base}))

	entries, err := rec.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "K1", entries[0].OrderKey, "entries are listed oldest first")
	assert.Equal(t, "K2", entries[1].OrderKey)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestMemoryRecorder_FillsTimestamp(t *testing.T) {
	rec := NewMemoryRecorder()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	id := uuid.New()
	require.NoError(t, rec.Record(context.Background(), Entry{ID: id, Operation: "refund"}))

	entries, _ := rec.List(context.Background())
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, fixed, entries[0].Timestamp)
}

func TestMemoryRecorder_ListReturnsCopy(t *testing.T) {
	rec := NewMemoryRecorder()
	require.NoError(t, rec.Record(context.Background(), Entry{Operation: "capture"}))

	entries, _ := rec.List(context.Background())
	entries[0].Operation = "changed"

	again, _ := rec.List(context.Background())
	assert.Equal(t, "capture", again[0].Operation)
}

func TestMemoryRecorder_Concurrent(t *testing.T) {
	rec := NewMemoryRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rec.Record(context.Background(), Entry{Operation: "status"})
		}()
	}
	wg.Wait()

	entries, err := rec.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}
