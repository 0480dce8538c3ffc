package server

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// JobStatus представляет статус задачи скачивания
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// DownloadJob представляет собой одну фоновую задачу скачивания файла
type DownloadJob struct {
	ID           string
	Status       JobStatus
	Path         string
	ErrorMessage string
	// LimitExceeded выставляется, когда скачивание отклонено по лимиту
	// подписки: клиенту предлагается сменить тариф, а не повторять запрос.
	LimitExceeded bool
	CreatedAt     time.Time
	ExpiresAt     time.Time // Для автоматической очистки
}

// JobStore управляет хранением и извлечением задач скачивания
type JobStore struct {
	jobs  map[string]*DownloadJob
	mutex sync.RWMutex
}

// NewJobStore создает новый экземпляр JobStore
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*DownloadJob),
	}
}

// CreateJob создает новую задачу со статусом 'pending'
func (js *JobStore) CreateJob(jobID string, ttl time.Duration) {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	now := time.Now()
	js.jobs[jobID] = &DownloadJob{
		ID:        jobID,
		Status:    JobStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// UpdateJobStatus обновляет статус задачи
func (js *JobStore) UpdateJobStatus(jobID string, status JobStatus) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return fmt.Errorf("задача с ID %s не найдена", jobID)
	}

	job.Status = status
	return nil
}

// UpdateJobResult записывает путь к файлу и переводит задачу в 'completed'
func (js *JobStore) UpdateJobResult(jobID, path string) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return fmt.Errorf("задача с ID %s не найдена", jobID)
	}

	job.Status = JobStatusCompleted
	job.Path = path
	return nil
}

// UpdateJobError записывает сообщение об ошибке и переводит задачу в 'failed'
func (js *JobStore) UpdateJobError(jobID, errorMessage string, limitExceeded bool) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return fmt.Errorf("задача с ID %s не найдена", jobID)
	}

	job.Status = JobStatusFailed
	job.ErrorMessage = errorMessage
	job.LimitExceeded = limitExceeded
	return nil
}

// GetJob извлекает задачу по ее ID
func (js *JobStore) GetJob(jobID string) (*DownloadJob, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("задача с ID %s не найдена", jobID)
	}

	return job, nil
}

// CleanupExpired удаляет просроченные задачи из хранилища
func (js *JobStore) CleanupExpired() {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	now := time.Now()
	for jobID, job := range js.jobs {
		if now.After(job.ExpiresAt) {
			delete(js.jobs, jobID)
		}
	}
}

// StartCleanupTicker запускает тикер для периодической очистки просроченных задач
func (js *JobStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				js.CleanupExpired()
			}
		}
	}()
}
