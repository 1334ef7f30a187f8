// Package mocks 提供 repository 接口的 testify Mock 实现，供 service 层测试使用。
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
)

// GameRepository 是 repository.GameRepository 的 Mock 实现。
type GameRepository struct {
	mock.Mock
}

func (m *GameRepository) FindByCode(ctx context.Context, code string) (*domain.Game, error) {
	args := m.Called(ctx, code)
	var game *domain.Game
	if g, ok := args.Get(0).(*domain.Game); ok {
		game = g
	}
	return game, args.Error(1)
}

func (m *GameRepository) Save(ctx context.Context, game *domain.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *GameRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *GameRepository) IsCodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *GameRepository) FindStale(ctx context.Context, olderThan time.Time) ([]domain.Game, error) {
	args := m.Called(ctx, olderThan)
	var games []domain.Game
	if g, ok := args.Get(0).([]domain.Game); ok {
		games = g
	}
	return games, args.Error(1)
}

// GameLocker 是 repository.GameLocker 的 Mock 实现。
type GameLocker struct {
	mock.Mock
}

func (m *GameLocker) Acquire(ctx context.Context, code string) (func(), error) {
	args := m.Called(ctx, code)
	var release func()
	if fn, ok := args.Get(0).(func()); ok {
		release = fn
	}
	return release, args.Error(1)
}
