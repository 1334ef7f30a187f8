package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/repository"
)

// loadGame 加载对局并把仓库层错误映射为业务错误
func loadGame(ctx context.Context, games repository.GameRepository, code string) (*domain.Game, error) {
	game, err := games.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		logrus.WithError(err).WithField("game_code", code).Error("Failed to load game")
		return nil, ErrInternalServer
	}
	return game, nil
}

// saveGame 保存对局并把版本冲突映射为可重试的业务错误。
// 对局锁失效 (TTL 过期后被并发请求抢走) 时这里是最后一道防线。
func saveGame(ctx context.Context, games repository.GameRepository, logCtx *logrus.Entry, game *domain.Game) error {
	if err := games.Save(ctx, game); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			logCtx.Warn("Version conflict while saving game")
			return ErrWriteConflict
		}
		logCtx.WithError(err).Error("Failed to save game")
		return ErrInternalServer
	}
	return nil
}
