package tasks

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookclub/internal/database/audit"
	"github.com/mrlokans/bookclub/internal/database/maintenance"
	"github.com/mrlokans/bookclub/internal/logger"
)

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "club.db")

	client, err := NewClient(dbPath, DefaultConfig(), logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, tmpDir
}

func TestNewClient_CreatesTasksDatabase(t *testing.T) {
	_, tmpDir := newTestClient(t)

	_, err := os.Stat(filepath.Join(tmpDir, "club-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")
}

func TestClient_StartStop(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

type echoTask struct {
	Value string `json:"value"`
}

func (t echoTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "echo",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestClient_Enqueue(t *testing.T) {
	client, _ := newTestClient(t)

	executed := make(chan string, 1)
	client.Register(backlite.NewQueue(func(ctx context.Context, task echoTask) error {
		executed <- task.Value
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	require.NoError(t, client.Enqueue(echoTask{Value: "hello"}))

	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
}

type fakePruner struct {
	retention time.Duration
	counts    audit.PruneCounts
	err       error
}

func (f *fakePruner) PruneEvents(retention time.Duration) (audit.PruneCounts, error) {
	f.retention = retention
	return f.counts, f.err
}

func TestPruneAuditTrailProcessor(t *testing.T) {
	t.Run("uses task retention", func(t *testing.T) {
		pruner := &fakePruner{counts: audit.PruneCounts{"book": 3, "club": 1}}
		process := PruneAuditTrailProcessor(pruner, logger.Discard())

		require.NoError(t, process(context.Background(), PruneAuditTrailTask{RetentionDays: 7}))
		assert.Equal(t, 7*24*time.Hour, pruner.retention)
	})

	t.Run("defaults retention", func(t *testing.T) {
		pruner := &fakePruner{}
		process := PruneAuditTrailProcessor(pruner, logger.Discard())

		require.NoError(t, process(context.Background(), PruneAuditTrailTask{}))
		assert.Equal(t, DefaultAuditRetentionDays*24*time.Hour, pruner.retention)
	})

	t.Run("logs counts per entity type", func(t *testing.T) {
		var buf bytes.Buffer
		log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		pruner := &fakePruner{counts: audit.PruneCounts{"review": 2, "book": 5}}

		require.NoError(t, PruneAuditTrailProcessor(pruner, log)(context.Background(), PruneAuditTrailTask{RetentionDays: 14}))

		out := buf.String()
		assert.Contains(t, out, "entity_type=book removed=5")
		assert.Contains(t, out, "entity_type=review removed=2")
		assert.Contains(t, out, "removed=7 entity_types=2 retention_days=14")
		assert.Less(t, strings.Index(out, "entity_type=book"), strings.Index(out, "entity_type=review"))
	})

	t.Run("propagates failure", func(t *testing.T) {
		pruner := &fakePruner{err: errors.New("locked")}
		process := PruneAuditTrailProcessor(pruner, logger.Discard())

		err := process(context.Background(), PruneAuditTrailTask{})
		assert.ErrorContains(t, err, "locked")
	})

	t.Run("requires a pruner", func(t *testing.T) {
		process := PruneAuditTrailProcessor(nil, logger.Discard())
		assert.Error(t, process(context.Background(), PruneAuditTrailTask{}))
	})
}

type fakePurger struct {
	cutoff time.Time
	result maintenance.PurgeResult
	err    error
}

func (f *fakePurger) PurgeDeleted(olderThan time.Time) (maintenance.PurgeResult, error) {
	f.cutoff = olderThan
	return f.result, f.err
}

type fakeRecorder struct {
	mu      sync.Mutex
	removed int64
	err     error
	calls   int
}

func (f *fakeRecorder) LogPurge(removed int64, olderThan time.Time, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = removed
	f.err = err
	f.calls++
}

func TestPurgeDeletedProcessor(t *testing.T) {
	t.Run("purges and records totals", func(t *testing.T) {
		purger := &fakePurger{result: maintenance.PurgeResult{Books: 2, Users: 1}}
		recorder := &fakeRecorder{}
		process := PurgeDeletedProcessor(purger, recorder, logger.Discard())

		before := time.Now()
		require.NoError(t, process(context.Background(), PurgeDeletedTask{RetentionHours: 48}))

		assert.WithinDuration(t, before.Add(-48*time.Hour), purger.cutoff, time.Minute)
		assert.Equal(t, 1, recorder.calls)
		assert.Equal(t, int64(3), recorder.removed)
		assert.NoError(t, recorder.err)
	})

	t.Run("records failure", func(t *testing.T) {
		purger := &fakePurger{err: errors.New("database is locked")}
		recorder := &fakeRecorder{}
		process := PurgeDeletedProcessor(purger, recorder, logger.Discard())

		err := process(context.Background(), PurgeDeletedTask{})
		assert.ErrorContains(t, err, "database is locked")
		assert.Equal(t, 1, recorder.calls)
		assert.Error(t, recorder.err)
	})

	t.Run("recorder is optional", func(t *testing.T) {
		process := PurgeDeletedProcessor(&fakePurger{}, nil, logger.Discard())
		assert.NoError(t, process(context.Background(), PurgeDeletedTask{RetentionHours: 1}))
	})
}

func TestTaskConfigs(t *testing.T) {
	assert.Equal(t, "prune_audit_trail", PruneAuditTrailTask{}.Config().Name)

	purge := PurgeDeletedTask{}.Config()
	assert.Equal(t, "purge_deleted", purge.Name)
	assert.Equal(t, 3, purge.MaxAttempts)
	assert.NotNil(t, purge.Retention)
}
