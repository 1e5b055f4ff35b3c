package handler

import (
	"errors"
	"net/http"

	"fluxgen-backend/internal/model"
	"fluxgen-backend/internal/service"
	"fluxgen-backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.sessionService.CreateSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := h.sessionService.GetState(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.sessionService.DeleteSession(sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

// FocusPrompt 提示词输入框获得焦点的事件，没有凭证时打开 API Key 弹窗
func (h *SessionHandler) FocusPrompt(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := h.sessionService.FocusPrompt(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) ConfirmKey(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req model.ConfirmKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.ConfirmCredential(sessionID, req.APIKey)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) RemoveKey(c *gin.Context) {
	sessionID := c.Param("session_id")

	session, err := h.sessionService.ClearCredential(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

// UpdateField 更新单个受控字段的镜像值
func (h *SessionHandler) UpdateField(c *gin.Context) {
	sessionID := c.Param("session_id")

	var req model.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.UpdateField(sessionID, req.Name, req.Value)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

// Generate 表单提交入口。provider 调用是同步的，请求会阻塞到出结果为止；
// 生成失败不是传输层错误，错误消息装在 Outcome 里返回 200
func (h *SessionHandler) Generate(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	outcome, err := h.sessionService.Generate(c.Request.Context(), sessionID, fields)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// writeServiceError 把 service 层错误映射到 HTTP 状态码
func (h *SessionHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrGenerationPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyCredential),
		errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrInvalidFieldValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
