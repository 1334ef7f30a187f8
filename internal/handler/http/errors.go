package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/samuel-nelson/spyfall-game/internal/service"
)

// HandleServiceError 把 service 层的业务错误映射为 HTTP 状态码。
// 错误文案本身就是面向玩家的提示，直接透传；未识别的错误一律 500
// 并只回通用文案。
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrTargetNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrNotHost),
		errors.Is(err, service.ErrNotYourTurn),
		errors.Is(err, service.ErrNotMole),
		errors.Is(err, service.ErrMoleCannotVote),
		errors.Is(err, service.ErrNotAnswerer):
		ErrorResponse(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrCodeTaken),
		errors.Is(err, service.ErrRoundInProgress),
		errors.Is(err, service.ErrQuestionPending),
		errors.Is(err, service.ErrAlreadyGuessed),
		errors.Is(err, service.ErrWriteConflict):
		ErrorResponse(c, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrGameNotInProgress),
		errors.Is(err, service.ErrGameNotJoinable),
		errors.Is(err, service.ErrSettingsLocked),
		errors.Is(err, service.ErrInsufficientPlayers),
		errors.Is(err, service.ErrInvalidInput):
		ErrorResponse(c, http.StatusBadRequest, err.Error())

	default:
		logrus.WithError(err).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
