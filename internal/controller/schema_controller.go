package controller

import (
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/service"
	"puspa_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SchemaController struct {
	Service *service.SchemaService
}

func NewSchemaController(svc *service.SchemaService) *SchemaController {
	return &SchemaController{Service: svc}
}

// Categories 列出分类
func (c *SchemaController) Categories(ctx *gin.Context) {
	type item struct {
		Category       assessment.Category       `json:"category"`
		SubmissionType assessment.SubmissionType `json:"submission_type"`
	}
	var items []item
	for _, category := range assessment.Categories() {
		p, _ := assessment.LookupProfile(category)
		items = append(items, item{Category: category, SubmissionType: p.SubmissionType})
	}
	util.Success(ctx, items)
}

// Invalidate 清除题库缓存
func (c *SchemaController) Invalidate(ctx *gin.Context) {
	if err := c.Service.Invalidate(ctx.Request.Context(), assessment.Category(ctx.Param("category"))); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
