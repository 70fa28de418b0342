package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mcjkurz/step-translate/internal/models"
	"github.com/mcjkurz/step-translate/internal/repository"
	"github.com/mcjkurz/step-translate/pkg/storage"
	"github.com/mcjkurz/step-translate/pkg/taskqueue"
)

func setupJobTest(t *testing.T) (repository.JobRepository, taskqueue.Queue, storage.Storage) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TranslationJob{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM translation_jobs")
	})

	server := miniredis.RunT(t)
	cfg := taskqueue.DefaultConfig()
	cfg.RedisAddr = server.Addr()
	queue, err := taskqueue.NewQueue("redis", cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		queue.Close()
	})

	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	return repository.NewJobRepositoryWithDB(db), queue, store
}

func TestCreateJobEnqueuesTask(t *testing.T) {
	repo, queue, _ := setupJobTest(t)
	svc := NewJobService(repo, queue)

	job, err := svc.CreateJob(context.Background(), CreateJobInput{
		FileID:         "file-1",
		FileName:       "book.txt",
		FileType:       "txt",
		TargetLanguage: "fr",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusPending, job.Status)

	stored, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, "book.txt", stored.FileName)

	tasks, err := queue.GetTasksByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, taskqueue.TaskTranslateDocument, tasks[0].Type)

	var payload taskqueue.TranslateDocumentPayload
	require.NoError(t, taskqueue.UnmarshalPayload(tasks[0].Payload, &payload))
	assert.Equal(t, job.ID, payload.JobID)
	assert.Equal(t, "fr", payload.TargetLanguage)
}

func TestGetAndListJobs(t *testing.T) {
	repo, queue, _ := setupJobTest(t)
	svc := NewJobService(repo, queue)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.CreateJob(ctx, CreateJobInput{
			FileID:         "file",
			FileName:       "doc.txt",
			FileType:       "txt",
			TargetLanguage: "de",
		})
		require.NoError(t, err)
	}

	jobs, total, err := svc.ListJobs(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, jobs, 2)

	_, err = svc.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrJobNotFound)
}

func TestDeleteJobRemovesQueueTasks(t *testing.T) {
	repo, queue, _ := setupJobTest(t)
	svc := NewJobService(repo, queue)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, CreateJobInput{
		FileID:         "file-1",
		FileName:       "doc.txt",
		FileType:       "txt",
		TargetLanguage: "es",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteJob(ctx, job.ID))

	_, err = svc.GetJob(ctx, job.ID)
	assert.ErrorIs(t, err, models.ErrJobNotFound)

	tasks, err := queue.GetTasksByJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTranslateDocumentHandler(t *testing.T) {
	repo, queue, store := setupJobTest(t)

	content := "Short Title\n\nJohn Doe\n\nThis is the body text of the document which is reasonably long."
	info, err := store.Save(bytes.NewReader([]byte(content)), "book.txt")
	require.NoError(t, err)

	mock := &mockLLMClient{response: "translated text"}
	translator := newMockTranslateService(mock)

	svc := NewJobService(repo, queue)
	job, err := svc.CreateJob(context.Background(), CreateJobInput{
		FileID:         info.ID,
		FileName:       "book.txt",
		FileType:       "txt",
		TargetLanguage: "fr",
	})
	require.NoError(t, err)

	handler := NewTranslateDocumentHandler(repo, store, translator, nil)
	assert.Equal(t, []taskqueue.TaskType{taskqueue.TaskTranslateDocument}, handler.GetTaskTypes())

	tasks, err := queue.GetTasksByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.NoError(t, handler.ProcessTask(context.Background(), tasks[0]))

	done, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, 3, done.PassageCount)
	require.NotNil(t, done.CompletedAt)

	var results []models.PassageResult
	require.NoError(t, json.Unmarshal(done.Results, &results))
	require.Len(t, results, 3)
	assert.Equal(t, "Short Title", results[0].SourceText)
	assert.Equal(t, "translated text", results[0].Translation)
	assert.Equal(t, "title", results[0].Style)
	assert.Nil(t, results[0].Page)

	assert.Equal(t, 3, mock.calls)
}

func TestTranslateDocumentHandlerMissingFile(t *testing.T) {
	repo, queue, store := setupJobTest(t)

	mock := &mockLLMClient{response: "ok"}
	translator := newMockTranslateService(mock)

	svc := NewJobService(repo, queue)
	job, err := svc.CreateJob(context.Background(), CreateJobInput{
		FileID:         "missing-file",
		FileName:       "gone.txt",
		FileType:       "txt",
		TargetLanguage: "fr",
	})
	require.NoError(t, err)

	handler := NewTranslateDocumentHandler(repo, store, translator, nil)

	tasks, err := queue.GetTasksByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	err = handler.ProcessTask(context.Background(), tasks[0])
	require.Error(t, err)

	failed, getErr := repo.GetByID(job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, models.JobStatusFailed, failed.Status)
	assert.NotEmpty(t, failed.Error)
}
