package service

import "errors"

// 业务错误。每个错误文案都直接展示给玩家，handler 层按类别映射 HTTP 状态码:
// NotFound -> 404, Forbidden -> 403, Conflict -> 409, InvalidInput/InvalidState -> 400。
var (
	// NotFound 类
	ErrGameNotFound   = errors.New("game not found")
	ErrPlayerNotFound = errors.New("player not in game")
	ErrTargetNotFound = errors.New("target player not found")

	// Forbidden 类 (角色/回合权限不符)
	ErrNotHost        = errors.New("only the host can perform this action")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrNotMole        = errors.New("only the mole can guess the location")
	ErrMoleCannotVote = errors.New("the mole cannot vote")
	ErrNotAnswerer    = errors.New("you are not the player being asked")

	// Conflict 类 (状态前置条件不满足)
	ErrCodeTaken       = errors.New("game code already exists")
	ErrRoundInProgress = errors.New("game is already in progress")
	ErrQuestionPending = errors.New("waiting for answer to previous question")
	ErrAlreadyGuessed  = errors.New("you have already made your guess, only one guess is allowed per round")
	ErrWriteConflict   = errors.New("game was updated by another request, please retry")

	// InvalidState / InvalidInput 类
	ErrGameNotInProgress   = errors.New("game is not in progress")
	ErrGameNotJoinable     = errors.New("game is not available to join")
	ErrSettingsLocked      = errors.New("cannot update settings during an active game")
	ErrInsufficientPlayers = errors.New("need at least 3 players to start")
	ErrInvalidInput        = errors.New("invalid input")

	// Internal 类
	ErrInternalServer = errors.New("internal server error")
)
