package controller

import (
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/service"
	"puspa_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	Service *service.HistoryService
}

func NewHistoryController(svc *service.HistoryService) *HistoryController {
	return &HistoryController{Service: svc}
}

// Get 已提交答案
func (c *HistoryController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	category := ctx.Query("category")
	if category == "" {
		util.BadRequest(ctx, "category wajib diisi")
		return
	}

	res, err := c.Service.Get(ctx.Request.Context(), user.UserID, util.GetTokenFromContext(ctx),
		ctx.Param("assessmentId"), assessment.Category(category))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, res)
}
