package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/samuel-nelson/spyfall-game/internal/catalog"
	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/repository"
)

// SettingsService 负责房主对回合参数的配置。
// 配置在 startRound 时才被读取，回合之间的修改只影响下一回合。
type SettingsService struct {
	games  repository.GameRepository
	locker repository.GameLocker
}

// NewSettingsService 创建 SettingsService 实例。
func NewSettingsService(games repository.GameRepository, locker repository.GameLocker) *SettingsService {
	if games == nil {
		panic("GameRepository cannot be nil for SettingsService")
	}
	if locker == nil {
		panic("GameLocker cannot be nil for SettingsService")
	}
	return &SettingsService{games: games, locker: locker}
}

// SettingsPatch 是部分更新: 只有非 nil 字段会被应用。
type SettingsPatch struct {
	MoleCount        *int
	TimerMinutes     *int
	ShowMoleCount    *bool
	MolesCanVote     *bool
	EnabledPacks     *[]string
	EnabledLocations *[]string
	CustomLocations  *[]domain.Location
}

// Update 应用配置补丁。仅房主可调用，回合进行中禁止修改。
// 非法取值静默收敛而不报错: 卧底数夹到 [1,2]，计时夹到 [1,60]
// (非正数回退默认 8 分钟)，地点包清空时回退默认包。
func (s *SettingsService) Update(ctx context.Context, gameCode, playerID string, patch SettingsPatch) (domain.Settings, error) {
	code := strings.ToUpper(strings.TrimSpace(gameCode))
	logCtx := logrus.WithFields(logrus.Fields{"game_code": code, "player_id": playerID})

	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to acquire game lock for settings update")
		return domain.Settings{}, ErrWriteConflict
	}
	defer release()

	game, err := loadGame(ctx, s.games, code)
	if err != nil {
		return domain.Settings{}, err
	}

	if game.HostID() != playerID {
		return domain.Settings{}, ErrNotHost
	}
	if game.Status == domain.StatusPlaying {
		return domain.Settings{}, ErrSettingsLocked
	}

	applyPatch(&game.Settings, patch)

	if err := saveGame(ctx, s.games, logCtx, game); err != nil {
		return domain.Settings{}, err
	}

	logCtx.Info("Game settings updated")
	return game.Settings, nil
}

func applyPatch(settings *domain.Settings, patch SettingsPatch) {
	if patch.MoleCount != nil {
		settings.MoleCount = clamp(*patch.MoleCount, 1, 2)
	}
	if patch.TimerMinutes != nil {
		minutes := *patch.TimerMinutes
		if minutes <= 0 {
			minutes = 8
		}
		settings.TimerMinutes = clamp(minutes, 1, 60)
	}
	if patch.ShowMoleCount != nil {
		settings.ShowMoleCount = *patch.ShowMoleCount
	}
	if patch.MolesCanVote != nil {
		settings.MolesCanVote = *patch.MolesCanVote
	}
	if patch.EnabledPacks != nil {
		packs := make([]string, 0, len(*patch.EnabledPacks))
		for _, id := range *patch.EnabledPacks {
			if catalog.IsValidPack(id) {
				packs = append(packs, id)
			}
		}
		if len(packs) == 0 {
			packs = []string{catalog.DefaultPack}
		}
		settings.EnabledPacks = packs
	}
	if patch.EnabledLocations != nil {
		settings.EnabledLocations = *patch.EnabledLocations
	}
	if patch.CustomLocations != nil {
		settings.CustomLocations = *patch.CustomLocations
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
