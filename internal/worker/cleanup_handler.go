package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	// 导入内部包
	"github.com/samuel-nelson/spyfall-game/internal/repository"
	"github.com/samuel-nelson/spyfall-game/internal/tasks"
)

// 防止配置错误导致刚创建的对局被立即清理
const minGameAge = time.Hour

// GameCleanupHandler 处理过期对局清理任务
type GameCleanupHandler struct {
	gameRepo repository.GameRepository
}

// NewGameCleanupHandler 创建 Handler 实例
func NewGameCleanupHandler(gameRepo repository.GameRepository) *GameCleanupHandler {
	return &GameCleanupHandler{gameRepo: gameRepo}
}

// ProcessTask 实现 asynq.Handler 接口。
// 扫描创建时间早于 MaxAge 的对局并逐个删除；单条删除失败只记录日志，
// 不中断剩余清理，也不触发任务重试。
func (h *GameCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
	})
	logCtx.Info("Processing game cleanup task...")

	var payload tasks.GameCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal task payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	maxAge := payload.MaxAge
	if maxAge < minGameAge {
		maxAge = minGameAge
	}
	cutoff := time.Now().Add(-maxAge)

	staleGames, err := h.gameRepo.FindStale(ctx, cutoff)
	if err != nil {
		logCtx.WithError(err).Error("Failed to query stale games")
		return fmt.Errorf("failed to query stale games: %w", err)
	}

	deleted := 0
	for _, game := range staleGames {
		if err := h.gameRepo.Delete(ctx, game.Code); err != nil {
			logCtx.WithError(err).WithField("game_code", game.Code).Warn("Failed to delete stale game")
			continue
		}
		deleted++
	}

	logCtx.WithFields(logrus.Fields{
		"stale_count":   len(staleGames),
		"deleted_count": deleted,
	}).Info("Game cleanup task processed successfully")
	return nil
}
