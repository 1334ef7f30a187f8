package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/samuel-nelson/spyfall-game/internal/catalog"
	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/repository"
)

// RoundService 实现回合状态机: 回合开始时的卧底/地点/角色分配、
// 提问-回答握手、指认、投票多数判定、猜地点终局和超时终局。
// 每个操作都是独立请求里的 load -> validate -> mutate -> save，
// 同一对局的写入由 GameLocker 串行化。
type RoundService struct {
	games  repository.GameRepository
	locker repository.GameLocker
}

// NewRoundService 创建 RoundService 实例。
func NewRoundService(games repository.GameRepository, locker repository.GameLocker) *RoundService {
	if games == nil {
		panic("GameRepository cannot be nil for RoundService")
	}
	if locker == nil {
		panic("GameLocker cannot be nil for RoundService")
	}
	return &RoundService{games: games, locker: locker}
}

// VoteResult 是一次投票后的即时结果。未达多数时携带实时计票，
// 供轮询客户端渲染进行中的票面。
type VoteResult struct {
	MajorityReached bool
	WasCorrect      bool
	AccusedID       string
	VoteCounts      map[string]int
}

// StartRound 由房主开启新回合。
// "已在进行中"不能只看 Status: 终局可能先被只读轮询发现而 Status 尚未
// 落库，所以必须重新推导当前回合是否真的还活着 (未出现终局标记且未超时)。
func (s *RoundService) StartRound(ctx context.Context, gameCode, playerID string) error {
	code := strings.ToUpper(strings.TrimSpace(gameCode))
	logCtx := logrus.WithFields(logrus.Fields{"game_code": code, "player_id": playerID})

	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to acquire game lock for start round")
		return ErrWriteConflict
	}
	defer release()

	game, err := loadGame(ctx, s.games, code)
	if err != nil {
		return err
	}

	// 1. 权限和人数校验
	if game.HostID() != playerID {
		return ErrNotHost
	}
	if len(game.Players) < 3 {
		return ErrInsufficientPlayers
	}

	// 2. 上一回合仍然活着时拒绝开新回合
	now := time.Now().UnixMilli()
	if game.Status == domain.StatusPlaying && game.CurrentRound != nil {
		round := game.CurrentRound
		if !round.Resolved() && !round.Expired(now) {
			return ErrRoundInProgress
		}
	}

	// 3. 按当前配置分配卧底、地点和角色
	settings := game.Settings
	moleCount := clamp(settings.MoleCount, 1, 2)
	timerMinutes := settings.TimerMinutes
	if timerMinutes <= 0 {
		timerMinutes = 8
	}

	perm := rand.Perm(len(game.Players))
	moleIDs := make([]string, 0, moleCount)
	for _, idx := range perm[:moleCount] {
		moleIDs = append(moleIDs, game.Players[idx].ID)
	}

	location := catalog.Draw(settings)

	nonMoleIDs := make([]string, 0, len(game.Players)-moleCount)
	for _, p := range game.Players {
		isMole := false
		for _, id := range moleIDs {
			if id == p.ID {
				isMole = true
				break
			}
		}
		if !isMole {
			nonMoleIDs = append(nonMoleIDs, p.ID)
		}
	}
	playerRoles := catalog.AssignRoles(location, nonMoleIDs)

	// 4. 第一个提问者从全体玩家中均匀随机
	currentTurn := game.Players[rand.Intn(len(game.Players))].ID

	roundNumber := 1
	if game.CurrentRound != nil {
		roundNumber = game.CurrentRound.RoundNumber + 1
	}

	// 5. 整体替换 Round，所有回合内瞬态字段归零
	game.CurrentRound = &domain.Round{
		RoundNumber: roundNumber,
		Location:    &location,
		MoleIDs:     moleIDs,
		PlayerRoles: playerRoles,
		CurrentTurn: currentTurn,
		EndTime:     now + int64(timerMinutes)*60_000,
	}
	game.Status = domain.StatusPlaying

	if err := saveGame(ctx, s.games, logCtx, game); err != nil {
		return err
	}

	logCtx.WithFields(logrus.Fields{
		"round_number": roundNumber,
		"mole_count":   len(moleIDs),
		"location":     location.Name,
	}).Info("Round started")
	return nil
}

// AskQuestion 由当前持有提问权的玩家向目标玩家提问。
// waitingForAnswer 是互斥标记: 同一时刻只允许一条未回答的提问。
func (s *RoundService) AskQuestion(ctx context.Context, gameCode, playerID, targetID, text string) error {
	question := strings.TrimSpace(text)
	if question == "" {
		return fmt.Errorf("%w: question text is required", ErrInvalidInput)
	}

	return s.mutateRound(ctx, gameCode, playerID, "ask question", func(game *domain.Game, round *domain.Round) error {
		if round.CurrentTurn != playerID {
			return ErrNotYourTurn
		}
		if round.WaitingForAnswer != "" {
			return ErrQuestionPending
		}
		target, ok := game.Player(targetID)
		if !ok {
			return ErrTargetNotFound
		}
		asker, ok := game.Player(playerID)
		if !ok {
			return ErrPlayerNotFound
		}

		round.CurrentQuestion = &domain.Question{
			Text:         question,
			AskerID:      asker.ID,
			AskerName:    asker.Name,
			AnswererID:   target.ID,
			AnswererName: target.Name,
		}
		round.WaitingForAnswer = target.ID
		return nil
	})
}

// AnswerQuestion 由被提问的玩家作答，记录答案并清除互斥标记。
func (s *RoundService) AnswerQuestion(ctx context.Context, gameCode, playerID, text string) error {
	answer := strings.TrimSpace(text)
	if answer == "" {
		return fmt.Errorf("%w: answer text is required", ErrInvalidInput)
	}

	return s.mutateRound(ctx, gameCode, playerID, "answer question", func(game *domain.Game, round *domain.Round) error {
		if round.WaitingForAnswer == "" || round.CurrentQuestion == nil {
			return ErrNotAnswerer
		}
		if round.WaitingForAnswer != playerID {
			return ErrNotAnswerer
		}

		round.CurrentQuestion.Answer = answer
		round.WaitingForAnswer = ""
		return nil
	})
}

// Accuse 由当前提问者直接指认某玩家是卧底，立即终局:
// 指对则卧底失败，指错则卧底胜利。
func (s *RoundService) Accuse(ctx context.Context, gameCode, playerID, accusedID string) (bool, error) {
	var wasCorrect bool
	err := s.mutateRound(ctx, gameCode, playerID, "accuse", func(game *domain.Game, round *domain.Round) error {
		if round.CurrentTurn != playerID {
			return ErrNotYourTurn
		}
		if round.WaitingForAnswer != "" {
			return ErrQuestionPending
		}
		accused, ok := game.Player(accusedID)
		if !ok {
			return ErrTargetNotFound
		}
		accuser, ok := game.Player(playerID)
		if !ok {
			return ErrPlayerNotFound
		}

		wasCorrect = round.IsMole(accusedID)
		round.Accusation = &domain.Accusation{
			Type:        domain.AccusationIndividual,
			AccuserID:   accuser.ID,
			AccuserName: accuser.Name,
			AccusedID:   accused.ID,
			AccusedName: accused.Name,
		}
		game.Status = domain.StatusRoundEnd
		moleWon := !wasCorrect
		round.MoleWon = &moleWon
		return nil
	})
	return wasCorrect, err
}

// GuessLocation 是卧底的一次性豪赌: 无论对错都立即终局，
// 猜对卧底胜利，猜错卧底失败。每回合只允许一次。
func (s *RoundService) GuessLocation(ctx context.Context, gameCode, playerID, guessText string) (bool, error) {
	guess := strings.TrimSpace(guessText)
	if guess == "" {
		return false, fmt.Errorf("%w: guessed location is required", ErrInvalidInput)
	}

	var isCorrect bool
	err := s.mutateRound(ctx, gameCode, playerID, "guess location", func(game *domain.Game, round *domain.Round) error {
		if !round.IsMole(playerID) {
			return ErrNotMole
		}
		if round.GuessedLocation != "" {
			return ErrAlreadyGuessed
		}

		locationName := ""
		if round.Location != nil {
			locationName = round.Location.Name
		}
		isCorrect = strings.EqualFold(guess, strings.TrimSpace(locationName))

		round.GuessedLocation = guess
		game.Status = domain.StatusRoundEnd
		moleWon := isCorrect
		round.MoleWon = &moleWon
		return nil
	})
	return isCorrect, err
}

// Vote 记录或覆盖一票 (达成多数前可随时改票，后写覆盖)。记票后统计:
// 某候选人的票数严格超过 ceil(非卧底数/2) 才算多数——恰好等于阈值
// 不终局。达成多数时以 vote 类型指认终局，否则回合继续并返回实时票面。
func (s *RoundService) Vote(ctx context.Context, gameCode, playerID, accusedID string) (VoteResult, error) {
	var result VoteResult
	err := s.mutateRound(ctx, gameCode, playerID, "vote", func(game *domain.Game, round *domain.Round) error {
		voter, ok := game.Player(playerID)
		if !ok {
			return ErrPlayerNotFound
		}
		if _, ok := game.Player(accusedID); !ok {
			return ErrTargetNotFound
		}
		if round.IsMole(voter.ID) && !game.Settings.MolesCanVote {
			return ErrMoleCannotVote
		}

		if round.Votes == nil {
			round.Votes = make(map[string]string)
		}
		round.Votes[playerID] = accusedID

		counts := round.VoteCounts()
		result.VoteCounts = counts

		// 多数阈值: 非卧底数的一半向上取整，必须严格超过
		nonMoleCount := game.NonMoleCount()
		threshold := (nonMoleCount + 1) / 2
		for candidate, count := range counts {
			if count > threshold {
				// 被投玩家可能在投票期间离开，名字查不到时退回 ID
				accusedName := candidate
				if accused, ok := game.Player(candidate); ok {
					accusedName = accused.Name
				}
				wasCorrect := round.IsMole(candidate)

				round.Accusation = &domain.Accusation{
					Type:        domain.AccusationVote,
					AccusedID:   candidate,
					AccusedName: accusedName,
					Votes:       round.Votes,
					VoteCounts:  counts,
				}
				game.Status = domain.StatusRoundEnd
				moleWon := !wasCorrect
				round.MoleWon = &moleWon

				result.MajorityReached = true
				result.WasCorrect = wasCorrect
				result.AccusedID = candidate
				break
			}
		}
		return nil
	})
	return result, err
}

// GetState 返回请求者视角的脱敏视图，同时承担超时终局的惰性收敛:
// 发现回合已超时且没有其它终局标记时，就地判卧底胜利并尽力落库。
// 落库失败 (包括版本冲突) 不阻塞读取: 记日志后仍返回收敛后的内存状态，
// 下一次读写会再次收敛，整个过程幂等。
func (s *RoundService) GetState(ctx context.Context, gameCode, requesterID string) (*domain.GameView, error) {
	code := strings.ToUpper(strings.TrimSpace(gameCode))
	logCtx := logrus.WithFields(logrus.Fields{"game_code": code, "player_id": requesterID})

	game, err := loadGame(ctx, s.games, code)
	if err != nil {
		return nil, err
	}

	if requesterID != "" && !game.HasPlayer(requesterID) {
		return nil, ErrPlayerNotFound
	}

	now := time.Now().UnixMilli()
	if game.Status == domain.StatusPlaying && game.CurrentRound != nil {
		round := game.CurrentRound
		if round.Expired(now) && !round.Resolved() {
			// 超时且无人指认/猜中 -> 卧底胜利
			game.Status = domain.StatusRoundEnd
			moleWon := true
			round.MoleWon = &moleWon

			if saveErr := s.games.Save(ctx, game); saveErr != nil {
				logCtx.WithError(saveErr).Warn("Opportunistic timeout finalize failed, returning in-memory state")
			} else {
				logCtx.WithField("round_number", round.RoundNumber).Info("Round timed out, finalized on read")
			}
		}
	}

	return game.View(requesterID), nil
}

// mutateRound 封装回合内变更共有的骨架: 加锁、加载、校验 playing 状态、
// 应用变更、保存。回合已终结后 Status 不再是 playing，所以终局的单调性
// (roundEnd 之后拒绝一切回合内变更) 由状态校验天然保证。
func (s *RoundService) mutateRound(ctx context.Context, gameCode, playerID, action string, mutate func(*domain.Game, *domain.Round) error) error {
	code := strings.ToUpper(strings.TrimSpace(gameCode))
	logCtx := logrus.WithFields(logrus.Fields{"game_code": code, "player_id": playerID, "action": action})

	release, err := s.locker.Acquire(ctx, code)
	if err != nil {
		logCtx.WithError(err).Warn("Failed to acquire game lock")
		return ErrWriteConflict
	}
	defer release()

	game, err := loadGame(ctx, s.games, code)
	if err != nil {
		return err
	}

	if game.Status != domain.StatusPlaying || game.CurrentRound == nil {
		return ErrGameNotInProgress
	}

	if err := mutate(game, game.CurrentRound); err != nil {
		return err
	}

	if err := saveGame(ctx, s.games, logCtx, game); err != nil {
		return err
	}

	logCtx.Debug("Round action applied")
	return nil
}
