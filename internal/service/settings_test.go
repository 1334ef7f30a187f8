package service_test // 测试包

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/repository/mocks"
	"github.com/samuel-nelson/spyfall-game/internal/service"
)

func intPtr(v int) *int               { return &v }
func boolPtr(v bool) *bool            { return &v }
func stringsPtr(v []string) *[]string { return &v }

func newLobbyGame() *domain.Game {
	return &domain.Game{
		Code:   "ABC123",
		Status: domain.StatusLobby,
		Players: []domain.Player{
			{ID: "host-id", Name: "Alice"},
			{ID: "bob-id", Name: "Bob"},
		},
		Settings: domain.DefaultSettings(),
	}
}

func TestSettingsService_Update_ClampsValues(t *testing.T) {
	// Arrange
	mockRepo := new(mocks.GameRepository)
	mockLocker := new(mocks.GameLocker)
	settingsService := service.NewSettingsService(mockRepo, mockLocker)
	ctx := context.Background()

	game := newLobbyGame()
	expectLock(mockLocker, "ABC123")
	mockRepo.On("FindByCode", ctx, "ABC123").Return(game, nil).Once()
	mockRepo.On("Save", ctx, game).Return(nil).Once()

	// Act: 越界取值被静默收敛
	updated, err := settingsService.Update(ctx, "ABC123", "host-id", service.SettingsPatch{
		MoleCount:    intPtr(5),
		TimerMinutes: intPtr(0),
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MoleCount, "卧底数应被夹到上限 2")
	assert.Equal(t, 8, updated.TimerMinutes, "非正计时应回退默认 8 分钟")
	mockRepo.AssertExpectations(t)
}

func TestSettingsService_Update_InvalidPacksFallBackToDefault(t *testing.T) {
	// Arrange
	mockRepo := new(mocks.GameRepository)
	mockLocker := new(mocks.GameLocker)
	settingsService := service.NewSettingsService(mockRepo, mockLocker)
	ctx := context.Background()

	game := newLobbyGame()
	expectLock(mockLocker, "ABC123")
	mockRepo.On("FindByCode", ctx, "ABC123").Return(game, nil).Once()
	mockRepo.On("Save", ctx, game).Return(nil).Once()

	// Act: 全部是未知包标识
	updated, err := settingsService.Update(ctx, "ABC123", "host-id", service.SettingsPatch{
		EnabledPacks: stringsPtr([]string{"bogus", "unknown"}),
	})

	// Assert: 清空后回退默认包
	require.NoError(t, err)
	assert.Equal(t, []string{"classic"}, updated.EnabledPacks)
	mockRepo.AssertExpectations(t)
}

func TestSettingsService_Update_PartialPatchLeavesOtherFields(t *testing.T) {
	// Arrange
	mockRepo := new(mocks.GameRepository)
	mockLocker := new(mocks.GameLocker)
	settingsService := service.NewSettingsService(mockRepo, mockLocker)
	ctx := context.Background()

	game := newLobbyGame()
	expectLock(mockLocker, "ABC123")
	mockRepo.On("FindByCode", ctx, "ABC123").Return(game, nil).Once()
	mockRepo.On("Save", ctx, game).Return(nil).Once()

	// Act: 只改一个字段
	updated, err := settingsService.Update(ctx, "ABC123", "host-id", service.SettingsPatch{
		MolesCanVote: boolPtr(true),
	})

	// Assert: 其它字段保持默认值
	require.NoError(t, err)
	assert.True(t, updated.MolesCanVote)
	assert.Equal(t, 1, updated.MoleCount)
	assert.Equal(t, 8, updated.TimerMinutes)
	assert.True(t, updated.ShowMoleCount)
	mockRepo.AssertExpectations(t)
}

func TestSettingsService_Update_NotHost(t *testing.T) {
	// Arrange
	mockRepo := new(mocks.GameRepository)
	mockLocker := new(mocks.GameLocker)
	settingsService := service.NewSettingsService(mockRepo, mockLocker)
	ctx := context.Background()

	game := newLobbyGame()
	expectLock(mockLocker, "ABC123")
	mockRepo.On("FindByCode", ctx, "ABC123").Return(game, nil).Once()

	// Act
	_, err := settingsService.Update(ctx, "ABC123", "bob-id", service.SettingsPatch{
		MoleCount: intPtr(2),
	})

	// Assert
	assert.ErrorIs(t, err, service.ErrNotHost)
	mockRepo.AssertNotCalled(t, "Save")
}

func TestSettingsService_Update_LockedWhilePlaying(t *testing.T) {
	// Arrange: 回合进行中禁止修改配置
	mockRepo := new(mocks.GameRepository)
	mockLocker := new(mocks.GameLocker)
	settingsService := service.NewSettingsService(mockRepo, mockLocker)
	ctx := context.Background()

	game := newLobbyGame()
	game.Status = domain.StatusPlaying
	expectLock(mockLocker, "ABC123")
	mockRepo.On("FindByCode", ctx, "ABC123").Return(game, nil).Once()

	// Act
	_, err := settingsService.Update(ctx, "ABC123", "host-id", service.SettingsPatch{
		MoleCount: intPtr(2),
	})

	// Assert
	assert.ErrorIs(t, err, service.ErrSettingsLocked)
	mockRepo.AssertNotCalled(t, "Save")
}
