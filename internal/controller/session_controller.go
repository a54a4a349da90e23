package controller

import (
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/service"
	"puspa_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Service *service.SessionService
}

func NewSessionController(svc *service.SessionService) *SessionController {
	return &SessionController{Service: svc}
}

// Open 打开评估会话
// 创建会话并在后台加载题库，加载期间 loading 为 true
func (c *SessionController) Open(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.OpenSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	st, err := c.Service.Open(ctx.Request.Context(), user.UserID, util.GetTokenFromContext(ctx),
		ctx.Param("assessmentId"), assessment.Category(req.Category))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, st)
}

// Get 获取会话视图
func (c *SessionController) Get(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	st, err := c.Service.Get(user.UserID, ctx.Param("sessionId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, st)
}

// Answers 当前全部答案
func (c *SessionController) Answers(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	answers, err := c.Service.Answers(user.UserID, ctx.Param("sessionId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, answers)
}

// Apply 作答
// 按题型分派输入事件（set、toggle、note、cell、add_row、update_row、remove_row、check）
func (c *SessionController) Apply(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	questionID, err := util.ParseID(ctx.Param("questionId"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var ev assessment.Event
	if err := ctx.ShouldBindJSON(&ev); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	st, err := c.Service.Apply(user.UserID, ctx.Param("sessionId"), questionID, ev)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, st)
}

// Navigate 切换分组
func (c *SessionController) Navigate(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.NavigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	st, err := c.Service.Navigate(user.UserID, ctx.Param("sessionId"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, st)
}

// SetContext 填写会话字段
func (c *SessionController) SetContext(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.ContextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	st, err := c.Service.SetContext(user.UserID, ctx.Param("sessionId"), req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, st)
}

// Submit 提交答案
// 成功后会话关闭；失败时答案保留，可再次提交
func (c *SessionController) Submit(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.Service.Submit(ctx.Request.Context(), user.UserID, util.GetTokenFromContext(ctx), ctx.Param("sessionId")); err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "Jawaban berhasil dikirim"})
}

// Close 关闭会话
func (c *SessionController) Close(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		return
	}

	if err := c.Service.Close(user.UserID, ctx.Param("sessionId")); err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
