package worker_test // 测试包

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/repository/mocks"
	"github.com/samuel-nelson/spyfall-game/internal/tasks"
	"github.com/samuel-nelson/spyfall-game/internal/worker"
)

func newCleanupTask(t *testing.T, maxAge time.Duration) *asynq.Task {
	payload, err := tasks.NewGameCleanupPayload(maxAge)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeGameCleanup, payload)
}

func TestGameCleanupHandler_DeletesStaleGames(t *testing.T) {
	// Arrange
	mockRepo := new(mocks.GameRepository)
	handler := worker.NewGameCleanupHandler(mockRepo)
	ctx := context.Background()

	stale := []domain.Game{{Code: "OLD001"}, {Code: "OLD002"}}
	mockRepo.On("FindStale", ctx, mock.AnythingOfType("time.Time")).Return(stale, nil).Once()
	mockRepo.On("Delete", ctx, "OLD001").Return(nil).Once()
	mockRepo.On("Delete", ctx, "OLD002").Return(nil).Once()

	// Act
	err := handler.ProcessTask(ctx, newCleanupTask(t, 24*time.Hour))

	// Assert
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestGameCleanupHandler_ContinuesAfterDeleteFailure(t *testing.T) {
	// Arrange: 单条删除失败不应中断剩余清理，也不触发重试
	mockRepo := new(mocks.GameRepository)
	handler := worker.NewGameCleanupHandler(mockRepo)
	ctx := context.Background()

	stale := []domain.Game{{Code: "OLD001"}, {Code: "OLD002"}}
	mockRepo.On("FindStale", ctx, mock.AnythingOfType("time.Time")).Return(stale, nil).Once()
	mockRepo.On("Delete", ctx, "OLD001").Return(errors.New("db gone")).Once()
	mockRepo.On("Delete", ctx, "OLD002").Return(nil).Once()

	// Act
	err := handler.ProcessTask(ctx, newCleanupTask(t, 24*time.Hour))

	// Assert
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestGameCleanupHandler_QueryFailurePropagatesForRetry(t *testing.T) {
	// Arrange: 扫描失败应返回错误让 asynq 按策略重试
	mockRepo := new(mocks.GameRepository)
	handler := worker.NewGameCleanupHandler(mockRepo)
	ctx := context.Background()

	mockRepo.On("FindStale", ctx, mock.AnythingOfType("time.Time")).
		Return(nil, errors.New("db gone")).Once()

	// Act
	err := handler.ProcessTask(ctx, newCleanupTask(t, 24*time.Hour))

	// Assert
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Delete")
}

func TestGameCleanupHandler_MalformedPayloadSkipsRetry(t *testing.T) {
	// Arrange
	mockRepo := new(mocks.GameRepository)
	handler := worker.NewGameCleanupHandler(mockRepo)

	task := asynq.NewTask(tasks.TypeGameCleanup, []byte("not-json"))

	// Act
	err := handler.ProcessTask(context.Background(), task)

	// Assert: 坏 payload 重试也不会成功
	assert.ErrorIs(t, err, asynq.SkipRetry)
	mockRepo.AssertNotCalled(t, "FindStale")
}
