package taskqueue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisTest 设置一个miniredis实例用于测试
func setupRedisTest(t *testing.T) string {
	mr := miniredis.RunT(t)
	return mr.Addr()
}

func testQueueConfig(addr string) *Config {
	return &Config{
		RedisAddr:   addr,
		Concurrency: 2,
		RetryLimit:  2,
		RetryDelay:  time.Second,
		Queues:      map[string]int{"default": 1},
	}
}

// TestNewRedisQueue 测试创建Redis队列实例
func TestNewRedisQueue(t *testing.T) {
	queue, err := NewRedisQueue(testQueueConfig(setupRedisTest(t)))
	require.NoError(t, err)
	require.NotNil(t, queue)
	assert.NoError(t, queue.Close())
}

// TestRedisQueueEnqueue 测试队列入队功能
func TestRedisQueueEnqueue(t *testing.T) {
	queue, err := NewRedisQueue(testQueueConfig(setupRedisTest(t)))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	payload := &TranslateDocumentPayload{
		JobID:          "job-123",
		FileID:         "file-456",
		FileName:       "document.pdf",
		FileType:       "pdf",
		TargetLanguage: "French",
	}

	taskID, err := queue.Enqueue(ctx, TaskTranslateDocument, "job-123", payload)
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	task, err := queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, TaskTranslateDocument, task.Type)
	assert.Equal(t, "job-123", task.JobID)
	assert.Equal(t, StatusPending, task.Status)

	var decoded TranslateDocumentPayload
	require.NoError(t, UnmarshalPayload(task.Payload, &decoded))
	assert.Equal(t, "document.pdf", decoded.FileName)
	assert.Equal(t, "French", decoded.TargetLanguage)
}

// TestRedisQueueGetTaskNotFound 测试获取不存在的任务
func TestRedisQueueGetTaskNotFound(t *testing.T) {
	queue, err := NewRedisQueue(testQueueConfig(setupRedisTest(t)))
	require.NoError(t, err)
	defer queue.Close()

	_, err = queue.GetTask(context.Background(), "no-such-task")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

// TestRedisQueueUpdateTaskStatus 测试任务状态更新
func TestRedisQueueUpdateTaskStatus(t *testing.T) {
	queue, err := NewRedisQueue(testQueueConfig(setupRedisTest(t)))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	taskID, err := queue.Enqueue(ctx, TaskTranslateDocument, "job-1", nil)
	require.NoError(t, err)

	require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusProcessing, nil, ""))
	task, err := queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, task.Status)
	assert.NotNil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)

	result := &TranslateDocumentResult{JobID: "job-1", PassageCount: 7}
	require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, result, ""))
	task, err = queue.GetTask(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)

	var decoded TranslateDocumentResult
	require.NoError(t, UnmarshalPayload(task.Result, &decoded))
	assert.Equal(t, 7, decoded.PassageCount)
}

// TestRedisQueueGetTasksByJob 测试按翻译任务查询队列任务
func TestRedisQueueGetTasksByJob(t *testing.T) {
	queue, err := NewRedisQueue(testQueueConfig(setupRedisTest(t)))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	_, err = queue.Enqueue(ctx, TaskTranslateDocument, "job-a", nil)
	require.NoError(t, err)
	_, err = queue.Enqueue(ctx, TaskTranslateDocument, "job-a", nil)
	require.NoError(t, err)
	_, err = queue.Enqueue(ctx, TaskTranslateDocument, "job-b", nil)
	require.NoError(t, err)

	tasks, err := queue.GetTasksByJob(ctx, "job-a")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = queue.GetTasksByJob(ctx, "job-none")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

// TestRedisQueueWaitForTask 测试等待任务完成
func TestRedisQueueWaitForTask(t *testing.T) {
	queue, err := NewRedisQueue(testQueueConfig(setupRedisTest(t)))
	require.NoError(t, err)
	defer queue.Close()

	ctx := context.Background()
	taskID, err := queue.Enqueue(ctx, TaskTranslateDocument, "job-1", nil)
	require.NoError(t, err)

	// 未完成的任务在超时后返回错误
	_, err = queue.WaitForTask(ctx, taskID, 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrTaskTimeout)

	// 已完成的任务立即返回
	require.NoError(t, queue.UpdateTaskStatus(ctx, taskID, StatusCompleted, nil, ""))
	task, err := queue.WaitForTask(ctx, taskID, time.Second)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, task.Status)
}

// TestMarshalPayload 测试载荷序列化
func TestMarshalPayload(t *testing.T) {
	data, err := MarshalPayload(nil)
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(data))

	data, err = MarshalPayload(&TranslateDocumentPayload{JobID: "j"})
	require.NoError(t, err)

	var decoded TranslateDocumentPayload
	require.NoError(t, UnmarshalPayload(data, &decoded))
	assert.Equal(t, "j", decoded.JobID)
}
