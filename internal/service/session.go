package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/repository"
)

// SessionService 负责对局的创建、加入和离开。
type SessionService struct {
	games  repository.GameRepository
	locker repository.GameLocker
}

// NewSessionService 创建 SessionService 实例。
func NewSessionService(games repository.GameRepository, locker repository.GameLocker) *SessionService {
	if games == nil {
		panic("GameRepository cannot be nil for SessionService")
	}
	if locker == nil {
		panic("GameLocker cannot be nil for SessionService")
	}
	return &SessionService{games: games, locker: locker}
}

// LeaveResult 是 LeaveGame 的返回结果。
type LeaveResult struct {
	GameDeleted      bool
	WasHost          bool
	PlayersRemaining int
}

// CreateGame 创建新对局并把创建者作为房主 (下标 0) 放入玩家列表。
// requestedCode 为空时自动生成不冲突的 6 位码；调用方指定的码撞车时
// 返回 ErrCodeTaken 而不是静默重新生成。
func (s *SessionService) CreateGame(ctx context.Context, playerName, requestedCode string) (*domain.Game, string, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return nil, "", fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	logCtx := logrus.WithField("player_name", name)

	// 1. 确定对局码
	var code string
	explicit := strings.TrimSpace(requestedCode) != ""
	if explicit {
		code = strings.ToUpper(strings.TrimSpace(requestedCode))
	} else {
		generated, err := s.generateUniqueGameCode(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to generate unique game code")
			return nil, "", ErrInternalServer
		}
		code = generated
	}
	logCtx = logCtx.WithField("game_code", code)

	// 2. 组装聚合并保存。依赖唯一索引兜底并发创建:
	//    指定码撞车时 Save 返回 ErrDuplicateEntry。
	playerID := uuid.NewString()
	game := &domain.Game{
		Code:      code,
		Status:    domain.StatusLobby,
		Players:   []domain.Player{{ID: playerID, Name: name}},
		Settings:  domain.DefaultSettings(),
		CreatedAt: time.Now().UnixMilli(),
	}

	if err := s.games.Save(ctx, game); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			if explicit {
				logCtx.Warn("Requested game code already exists")
				return nil, "", ErrCodeTaken
			}
			// 生成码在检查和保存之间被抢注，概率极低，视为内部错误让调用方重试
			logCtx.WithError(err).Error("Generated game code collided on save")
			return nil, "", ErrInternalServer
		}
		logCtx.WithError(err).Error("Failed to save new game")
		return nil, "", ErrInternalServer
	}

	logCtx.WithField("player_id", playerID).Info("Game created")
	return game, playerID, nil
}

// JoinGame 加入对局。名字大小写不敏感地命中已有玩家时视为重连:
// 复用原有 playerID 并把展示名更新为本次提交的写法；否则追加新玩家。
func (s *SessionService) JoinGame(ctx context.Context, playerName, gameCode string) (string, error) {
	name := strings.TrimSpace(playerName)
	if name == "" {
		return "", fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	code := strings.ToUpper(strings.TrimSpace(gameCode))
	if code == "" {
		return "", fmt.Errorf("%w: game code is required", ErrInvalidInput)
	}
	logCtx := logrus.WithFields(logrus.Fields{"game_code": code, "player_name": name})

	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to acquire game lock for join")
		return "", ErrWriteConflict
	}
	defer release()

	game, err := loadGame(ctx, s.games, code)
	if err != nil {
		return "", err
	}

	// lobby / playing / roundEnd 都允许加入 (中途加入的玩家等下一回合)
	switch game.Status {
	case domain.StatusLobby, domain.StatusPlaying, domain.StatusRoundEnd:
	default:
		return "", ErrGameNotJoinable
	}

	// 重连: 同名玩家已存在时直接复用身份
	if existing, ok := game.PlayerByName(name); ok {
		existing.Name = name
		if err := saveGame(ctx, s.games, logCtx, game); err != nil {
			return "", err
		}
		logCtx.WithField("player_id", existing.ID).Info("Player rejoined game")
		return existing.ID, nil
	}

	playerID := uuid.NewString()
	game.Players = append(game.Players, domain.Player{ID: playerID, Name: name})
	if err := saveGame(ctx, s.games, logCtx, game); err != nil {
		return "", err
	}

	logCtx.WithField("player_id", playerID).Info("Player joined game")
	return playerID, nil
}

// LeaveGame 移除玩家。最后一名玩家离开时整个对局级联删除；
// 回合进行中卧底离开会收缩卧底集合，集合被掏空时强制终局并判卧底失败。
// 房主离开后无需任何显式转移，新的下标 0 玩家自动成为房主。
func (s *SessionService) LeaveGame(ctx context.Context, gameCode, playerID string) (LeaveResult, error) {
	code := strings.ToUpper(strings.TrimSpace(gameCode))
	logCtx := logrus.WithFields(logrus.Fields{"game_code": code, "player_id": playerID})

	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to acquire game lock for leave")
		return LeaveResult{}, ErrWriteConflict
	}
	defer release()

	game, err := loadGame(ctx, s.games, code)
	if err != nil {
		return LeaveResult{}, err
	}

	index, found := game.RemovePlayer(playerID)
	if !found {
		return LeaveResult{}, ErrPlayerNotFound
	}
	wasHost := index == 0

	// 1. 没有玩家了 -> 删除整个对局
	if len(game.Players) == 0 {
		if err := s.games.Delete(ctx, code); err != nil {
			logCtx.WithError(err).Error("Failed to delete empty game")
			return LeaveResult{}, ErrInternalServer
		}
		logCtx.Info("Last player left, game deleted")
		return LeaveResult{GameDeleted: true, WasHost: wasHost}, nil
	}

	// 2. 回合进行中离开的是卧底 -> 收缩卧底集合，掏空则终局
	if game.Status == domain.StatusPlaying && game.CurrentRound != nil {
		round := game.CurrentRound
		if round.RemoveMole(playerID) && len(round.MoleIDs) == 0 {
			game.Status = domain.StatusRoundEnd
			moleWon := false
			round.MoleWon = &moleWon
			logCtx.Info("Last mole left mid-round, round force-ended")
		}
	}

	if err := saveGame(ctx, s.games, logCtx, game); err != nil {
		return LeaveResult{}, err
	}

	logCtx.WithFields(logrus.Fields{"was_host": wasHost, "players_remaining": len(game.Players)}).
		Info("Player left game")
	return LeaveResult{WasHost: wasHost, PlayersRemaining: len(game.Players)}, nil
}

// generateUniqueGameCode 生成不与现有对局冲突的 6 位大写字母数字码
func (s *SessionService) generateUniqueGameCode(ctx context.Context) (string, error) {
	const letters = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const codeLength = 6
	const maxAttempts = 10

	b := make([]byte, codeLength)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = letters[int(b[i])%len(letters)]
		}
		code := string(b)

		exists, err := s.games.IsCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("database error checking game code: %w", err)
		}
		if !exists {
			return code, nil
		}
		logrus.WithField("game_code", code).Warnf("Generated game code already exists, retrying (attempt %d)...", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique game code after %d attempts", maxAttempts)
}
