package controller

import (
	"errors"
	"net/http"
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/backend"
	"puspa_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 把服务层错误映射为统一响应
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound),
		errors.Is(err, assessment.ErrQuestionNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrSessionLoading),
		errors.Is(err, util.ErrSubmitInProgress),
		errors.Is(err, assessment.ErrQuestionHidden):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrSubmitFailed):
		message := util.ErrSubmitFailed.Error()
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) && statusErr.Message != "" {
			message = statusErr.Message
		}
		util.Error(ctx, http.StatusBadGateway, message)
	case errors.Is(err, util.ErrSchemaLoadFailed),
		errors.Is(err, util.ErrHistoryFailed):
		util.Error(ctx, http.StatusBadGateway, err.Error())
	case errors.Is(err, assessment.ErrMissingAssessmentID),
		errors.Is(err, assessment.ErrReadOnlyCategory),
		errors.Is(err, assessment.ErrUnknownCategory),
		errors.Is(err, assessment.ErrUnknownAnswerType),
		errors.Is(err, assessment.ErrUnsupportedEvent),
		errors.Is(err, assessment.ErrInvalidInput),
		errors.Is(err, assessment.ErrOutOfRange),
		errors.Is(err, assessment.ErrNoteNotAllowed),
		errors.Is(err, assessment.ErrUnknownField):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return claims, true
}
