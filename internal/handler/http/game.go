package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samuel-nelson/spyfall-game/internal/domain"
	"github.com/samuel-nelson/spyfall-game/internal/service"
)

// GameHandler 封装了对局相关的全部 HTTP 处理逻辑。
// 所有写操作都是无状态请求，客户端通过轮询 GetState 感知变化。
type GameHandler struct {
	sessions *service.SessionService
	settings *service.SettingsService
	rounds   *service.RoundService
}

// NewGameHandler 创建 GameHandler 实例
func NewGameHandler(sessions *service.SessionService, settings *service.SettingsService, rounds *service.RoundService) *GameHandler {
	return &GameHandler{sessions: sessions, settings: settings, rounds: rounds}
}

// --- 创建 / 加入 / 离开 ---

// CreateGameRequest gameCode 可选: 省略时服务端生成
type CreateGameRequest struct {
	PlayerName string `json:"playerName" binding:"required"`
	GameCode   string `json:"gameCode"`
}

type CreateGameResponse struct {
	GameCode string `json:"gameCode"`
	PlayerID string `json:"playerId"`
}

// CreateGame 处理创建对局的请求
func (h *GameHandler) CreateGame(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Player name is required")
		return
	}

	game, playerID, err := h.sessions.CreateGame(c.Request.Context(), req.PlayerName, req.GameCode)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, CreateGameResponse{GameCode: game.Code, PlayerID: playerID})
}

type JoinGameRequest struct {
	PlayerName string `json:"playerName" binding:"required"`
	GameCode   string `json:"gameCode" binding:"required"`
}

type JoinGameResponse struct {
	PlayerID string `json:"playerId"`
}

// JoinGame 处理加入对局的请求 (同名重连时返回原有 playerId)
func (h *GameHandler) JoinGame(c *gin.Context) {
	var req JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Player name and game code are required")
		return
	}

	playerID, err := h.sessions.JoinGame(c.Request.Context(), req.PlayerName, req.GameCode)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, JoinGameResponse{PlayerID: playerID})
}

// gameActionRequest 是只带对局码和玩家 ID 的通用请求体
type gameActionRequest struct {
	GameCode string `json:"gameCode" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
}

type LeaveGameResponse struct {
	Success          bool `json:"success"`
	GameDeleted      bool `json:"gameDeleted"`
	WasHost          bool `json:"wasHost"`
	PlayersRemaining int  `json:"playersRemaining"`
}

// LeaveGame 处理离开对局的请求
func (h *GameHandler) LeaveGame(c *gin.Context) {
	var req gameActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Game code and player ID are required")
		return
	}

	result, err := h.sessions.LeaveGame(c.Request.Context(), req.GameCode, req.PlayerID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, LeaveGameResponse{
		Success:          true,
		GameDeleted:      result.GameDeleted,
		WasHost:          result.WasHost,
		PlayersRemaining: result.PlayersRemaining,
	})
}

// --- 配置 ---

// UpdateSettingsRequest 的 settings 字段是部分更新: 缺失字段保持原值
type UpdateSettingsRequest struct {
	GameCode string        `json:"gameCode" binding:"required"`
	PlayerID string        `json:"playerId" binding:"required"`
	Settings settingsPatch `json:"settings" binding:"required"`
}

type settingsPatch struct {
	MoleCount        *int               `json:"moleCount"`
	TimerMinutes     *int               `json:"timerMinutes"`
	ShowMoleCount    *bool              `json:"showMoleCount"`
	MolesCanVote     *bool              `json:"molesCanVote"`
	EnabledPacks     *[]string          `json:"enabledPacks"`
	EnabledLocations *[]string          `json:"enabledLocations"`
	CustomLocations  *[]domain.Location `json:"customLocations"`
}

type UpdateSettingsResponse struct {
	Success  bool            `json:"success"`
	Settings domain.Settings `json:"settings"`
}

// UpdateSettings 处理房主修改回合参数的请求
func (h *GameHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Game code, player ID and settings are required")
		return
	}

	effective, err := h.settings.Update(c.Request.Context(), req.GameCode, req.PlayerID, service.SettingsPatch{
		MoleCount:        req.Settings.MoleCount,
		TimerMinutes:     req.Settings.TimerMinutes,
		ShowMoleCount:    req.Settings.ShowMoleCount,
		MolesCanVote:     req.Settings.MolesCanVote,
		EnabledPacks:     req.Settings.EnabledPacks,
		EnabledLocations: req.Settings.EnabledLocations,
		CustomLocations:  req.Settings.CustomLocations,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, UpdateSettingsResponse{Success: true, Settings: effective})
}

// --- 回合操作 ---

// StartRound 处理房主开启新回合的请求
func (h *GameHandler) StartRound(c *gin.Context) {
	var req gameActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Game code and player ID are required")
		return
	}

	if err := h.rounds.StartRound(c.Request.Context(), req.GameCode, req.PlayerID); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

type AskQuestionRequest struct {
	GameCode string `json:"gameCode" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// AskQuestion 处理当前提问者的提问请求
func (h *GameHandler) AskQuestion(c *gin.Context) {
	var req AskQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err := h.rounds.AskQuestion(c.Request.Context(), req.GameCode, req.PlayerID, req.TargetID, req.Question); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

type AnswerQuestionRequest struct {
	GameCode string `json:"gameCode" binding:"required"`
	PlayerID string `json:"playerId" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

// AnswerQuestion 处理被提问玩家的作答请求
func (h *GameHandler) AnswerQuestion(c *gin.Context) {
	var req AnswerQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	if err := h.rounds.AnswerQuestion(c.Request.Context(), req.GameCode, req.PlayerID, req.Answer); err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"success": true})
}

type AccuseRequest struct {
	GameCode  string `json:"gameCode" binding:"required"`
	PlayerID  string `json:"playerId" binding:"required"`
	AccusedID string `json:"accusedId" binding:"required"`
}

// Accuse 处理直接指认卧底的请求
func (h *GameHandler) Accuse(c *gin.Context) {
	var req AccuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	wasCorrect, err := h.rounds.Accuse(c.Request.Context(), req.GameCode, req.PlayerID, req.AccusedID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"success": true, "wasCorrect": wasCorrect})
}

type GuessLocationRequest struct {
	GameCode        string `json:"gameCode" binding:"required"`
	PlayerID        string `json:"playerId" binding:"required"`
	GuessedLocation string `json:"guessedLocation" binding:"required"`
}

// GuessLocation 处理卧底猜地点的请求
func (h *GameHandler) GuessLocation(c *gin.Context) {
	var req GuessLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	isCorrect, err := h.rounds.GuessLocation(c.Request.Context(), req.GameCode, req.PlayerID, req.GuessedLocation)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"success": true, "isCorrect": isCorrect})
}

// Vote 处理投票指认的请求。未达成多数时返回实时计票供客户端渲染。
func (h *GameHandler) Vote(c *gin.Context) {
	var req AccuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Missing required fields")
		return
	}

	result, err := h.rounds.Vote(c.Request.Context(), req.GameCode, req.PlayerID, req.AccusedID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}

	if result.MajorityReached {
		SuccessResponse(c, http.StatusOK, gin.H{
			"success":         true,
			"majorityReached": true,
			"wasCorrect":      result.WasCorrect,
			"accusedId":       result.AccusedID,
			"voteCounts":      result.VoteCounts,
		})
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{
		"success":         true,
		"majorityReached": false,
		"voteCounts":      result.VoteCounts,
	})
}

// --- 状态轮询 ---

// GetState 返回请求者视角的脱敏对局视图。
// 注意这是一个可能带写副作用的读: 超时终局在这里被惰性收敛。
func (h *GameHandler) GetState(c *gin.Context) {
	gameCode := c.Query("gameCode")
	if gameCode == "" {
		ErrorResponse(c, http.StatusBadRequest, "Game code is required")
		return
	}
	playerID := c.Query("playerId")

	view, err := h.rounds.GetState(c.Request.Context(), gameCode, playerID)
	if err != nil {
		// 轮询中不在对局里的请求者按 403 处理
		if err == service.ErrPlayerNotFound {
			ErrorResponse(c, http.StatusForbidden, err.Error())
			return
		}
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"game": view})
}
