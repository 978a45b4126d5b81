package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestNewLog(t *testing.T) {
	t.Parallel()

	l := NewLog()

	_, err := uuid.Parse(l.SessionID())
	assert.NoError(t, err)
	assert.Zero(t, l.Len())
	assert.Empty(t, l.Entries())
	assert.NotEqual(t, l.SessionID(), NewLog().SessionID())
}

func TestRecordIsChronological(t *testing.T) {
	t.Parallel()

	l := newLogWithClock(fixedClock())

	l.Record("Q1", "A1")
	l.Record("Q2", "A2")
	l.Record("Q1", "A1")

	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Q1", entries[0].Question)
	assert.Equal(t, "A1", entries[0].Answer)
	assert.Equal(t, "Q2", entries[1].Question)
	assert.Equal(t, "A2", entries[1].Answer)
	assert.Equal(t, entries[0].Question, entries[2].Question)
	assert.True(t, entries[0].AskedAt.Before(entries[1].AskedAt))
}

func TestEntriesReturnsCopy(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.Record("Q1", "A1")

	entries := l.Entries()
	entries[0].Answer = "changed"

	assert.Equal(t, "A1", l.Entries()[0].Answer)
}

func TestRecordConcurrent(t *testing.T) {
	t.Parallel()

	l := NewLog()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Record("q", "a")
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, l.Len())
}

func TestExport(t *testing.T) {
	t.Parallel()

	l := newLogWithClock(fixedClock())
	l.Record("qual a média?", "11")
	l.Record("e o máximo?", "14")

	path := filepath.Join(t.TempDir(), "exports", "history.json")
	require.NoError(t, l.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Export
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, l.SessionID(), got.SessionID)
	assert.Equal(t, l.Entries(), got.Entries)
	assert.True(t, got.ExportedAt.After(got.StartedAt))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
