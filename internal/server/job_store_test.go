package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStore(t *testing.T) {
	t.Run("создание и чтение задачи", func(t *testing.T) {
		js := NewJobStore()
		js.CreateJob("job-1", time.Hour)

		job, err := js.GetJob("job-1")
		require.NoError(t, err)
		assert.Equal(t, JobStatusPending, job.Status)
	})

	t.Run("неизвестная задача", func(t *testing.T) {
		js := NewJobStore()
		_, err := js.GetJob("missing")
		assert.Error(t, err)
	})

	t.Run("результат переводит задачу в completed", func(t *testing.T) {
		js := NewJobStore()
		js.CreateJob("job-1", time.Hour)

		require.NoError(t, js.UpdateJobResult("job-1", "/tmp/file.obj"))

		job, err := js.GetJob("job-1")
		require.NoError(t, err)
		assert.Equal(t, JobStatusCompleted, job.Status)
		assert.Equal(t, "/tmp/file.obj", job.Path)
	})

	t.Run("ошибка по лимиту помечает задачу", func(t *testing.T) {
		js := NewJobStore()
		js.CreateJob("job-1", time.Hour)

		require.NoError(t, js.UpdateJobError("job-1", "лимит скачиваний", true))

		job, err := js.GetJob("job-1")
		require.NoError(t, err)
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.True(t, job.LimitExceeded)
		assert.Equal(t, "лимит скачиваний", job.ErrorMessage)
	})

	t.Run("обновление несуществующей задачи", func(t *testing.T) {
		js := NewJobStore()
		assert.Error(t, js.UpdateJobStatus("missing", JobStatusProcessing))
		assert.Error(t, js.UpdateJobResult("missing", ""))
		assert.Error(t, js.UpdateJobError("missing", "", false))
	})

	t.Run("очистка просроченных задач", func(t *testing.T) {
		js := NewJobStore()
		js.CreateJob("expired", -1*time.Minute)
		js.CreateJob("valid", time.Hour)

		js.CleanupExpired()

		_, err := js.GetJob("expired")
		assert.Error(t, err, "просроченная задача должна быть удалена")

		_, err = js.GetJob("valid")
		assert.NoError(t, err)
	})
}

func TestJobStoreCleanupTicker(t *testing.T) {
	js := NewJobStore()
	js.CreateJob("expired", 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	js.StartCleanupTicker(ctx, 100*time.Millisecond)

	require.Eventually(t, func() bool {
		_, err := js.GetJob("expired")
		return err != nil
	}, 1*time.Second, 20*time.Millisecond, "тикер должен удалить просроченную задачу")
}
