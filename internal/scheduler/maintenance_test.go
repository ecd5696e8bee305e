package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookclub/internal/logger"
	"github.com/mrlokans/bookclub/internal/tasks"
)

type recordingQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (q *recordingQueue) Enqueue(tasks ...backlite.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, tasks...)
	return nil
}

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 3 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/15 * * * *"))
	assert.Error(t, ValidateCronSchedule("every night"))
	assert.Error(t, ValidateCronSchedule("0 0 3 * * *"), "seconds field is not accepted")
}

func TestMaintenanceScheduler_RunNow(t *testing.T) {
	t.Run("enqueues pruning and purge", func(t *testing.T) {
		queue := &recordingQueue{}
		s := NewMaintenanceScheduler(queue, MaintenanceConfig{
			Schedule:            "0 3 * * *",
			AuditRetentionDays:  14,
			PurgeRetentionHours: 72,
			PurgeEnabled:        true,
		}, logger.Discard())

		require.NoError(t, s.RunNow())
		require.Len(t, queue.tasks, 2)
		assert.Equal(t, tasks.PruneAuditTrailTask{RetentionDays: 14}, queue.tasks[0])
		assert.Equal(t, tasks.PurgeDeletedTask{RetentionHours: 72}, queue.tasks[1])
	})

	t.Run("purge disabled", func(t *testing.T) {
		queue := &recordingQueue{}
		s := NewMaintenanceScheduler(queue, MaintenanceConfig{Schedule: "0 3 * * *"}, logger.Discard())

		require.NoError(t, s.RunNow())
		require.Len(t, queue.tasks, 1)
		assert.IsType(t, tasks.PruneAuditTrailTask{}, queue.tasks[0])
	})

	t.Run("enqueue failure", func(t *testing.T) {
		queue := &recordingQueue{err: errors.New("queue closed")}
		s := NewMaintenanceScheduler(queue, MaintenanceConfig{Schedule: "0 3 * * *"}, logger.Discard())

		assert.ErrorContains(t, s.RunNow(), "queue closed")
	})
}

func TestMaintenanceScheduler_StartStop(t *testing.T) {
	s := NewMaintenanceScheduler(&recordingQueue{}, MaintenanceConfig{Schedule: "0 3 * * *"}, logger.Discard())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.NextRun()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, 0, next.Minute())

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestMaintenanceScheduler_StopsWithContext(t *testing.T) {
	s := NewMaintenanceScheduler(&recordingQueue{}, MaintenanceConfig{Schedule: "0 3 * * *"}, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestMaintenanceScheduler_InvalidSchedule(t *testing.T) {
	s := NewMaintenanceScheduler(&recordingQueue{}, MaintenanceConfig{Schedule: "nope"}, logger.Discard())

	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}
