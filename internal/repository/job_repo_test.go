package repository

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/mcjkurz/step-translate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 创建内存数据库用于测试
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TranslationJob{}))

	t.Cleanup(func() {
		db.Exec("DELETE FROM translation_jobs")
	})

	return db
}

func newTestJob() *models.TranslationJob {
	return &models.TranslationJob{
		ID:             uuid.New().String(),
		FileID:         uuid.New().String(),
		FileName:       "paper.pdf",
		FileType:       "pdf",
		TargetLanguage: "French",
		Model:          "gpt-4o-mini",
	}
}

func TestJobRepositoryCreateAndGet(t *testing.T) {
	repo := NewJobRepositoryWithDB(setupTestDB(t))

	job := newTestJob()
	require.NoError(t, repo.Create(job))

	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.FileName, got.FileName)
	assert.Equal(t, models.JobStatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.GetByID("no-such-job")
	assert.ErrorIs(t, err, models.ErrJobNotFound)
}

func TestJobRepositoryUpdateStatus(t *testing.T) {
	repo := NewJobRepositoryWithDB(setupTestDB(t))

	job := newTestJob()
	require.NoError(t, repo.Create(job))

	require.NoError(t, repo.UpdateStatus(job.ID, models.JobStatusProcessing, ""))
	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, got.Status)
	assert.Nil(t, got.CompletedAt)

	require.NoError(t, repo.UpdateStatus(job.ID, models.JobStatusFailed, "llm error"))
	got, err = repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Equal(t, "llm error", got.Error)
	assert.NotNil(t, got.CompletedAt)

	err = repo.UpdateStatus("no-such-job", models.JobStatusProcessing, "")
	assert.ErrorIs(t, err, models.ErrJobNotFound)

	err = repo.UpdateStatus(job.ID, "archived", "")
	assert.ErrorIs(t, err, models.ErrInvalidJobStatus)
}

func TestJobRepositoryUpdateProgress(t *testing.T) {
	repo := NewJobRepositoryWithDB(setupTestDB(t))

	job := newTestJob()
	require.NoError(t, repo.Create(job))

	require.NoError(t, repo.UpdateProgress(job.ID, 40))
	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)

	// 超出范围的进度被截断
	require.NoError(t, repo.UpdateProgress(job.ID, 150))
	got, err = repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
}

func TestJobRepositorySaveResults(t *testing.T) {
	repo := NewJobRepositoryWithDB(setupTestDB(t))

	job := newTestJob()
	require.NoError(t, repo.Create(job))

	results := []models.PassageResult{
		{PassageID: "p1", SourceText: "Hello", Translation: "Bonjour", Style: "title"},
		{PassageID: "p2", SourceText: "World", Translation: "Monde", Style: "paragraph"},
	}
	data, err := json.Marshal(results)
	require.NoError(t, err)

	require.NoError(t, repo.SaveResults(job.ID, datatypes.JSON(data), len(results)))

	got, err := repo.GetByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 2, got.PassageCount)
	assert.NotNil(t, got.CompletedAt)

	var decoded []models.PassageResult
	require.NoError(t, json.Unmarshal(got.Results, &decoded))
	assert.Equal(t, "Bonjour", decoded[0].Translation)
}

func TestJobRepositoryList(t *testing.T) {
	repo := NewJobRepositoryWithDB(setupTestDB(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(newTestJob()))
	}

	jobs, total, err := repo.List(0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, jobs, 2)
}

func TestJobRepositoryDelete(t *testing.T) {
	repo := NewJobRepositoryWithDB(setupTestDB(t))

	job := newTestJob()
	require.NoError(t, repo.Create(job))
	require.NoError(t, repo.Delete(job.ID))

	_, err := repo.GetByID(job.ID)
	assert.ErrorIs(t, err, models.ErrJobNotFound)

	assert.ErrorIs(t, repo.Delete(job.ID), models.ErrJobNotFound)
}
