package api

import (
	"net/http"
	"strings"

	"ice-breakun/backend/internal/models"
	"ice-breakun/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves the /messages resource
type MessageHandler struct {
	service *service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service *service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// RegisterRoutesV1 mounts the message routes on the /api/v1 group
func (h *MessageHandler) RegisterRoutesV1(v1 *gin.RouterGroup) {
	messages := v1.Group("/messages")
	{
		messages.GET("", h.ListMessages)
		messages.POST("", h.CreateMessage)
		messages.GET("/user/:user_id", h.ListMessagesByUser)
		messages.GET("/:id", h.GetMessage)
		messages.PUT("/:id", h.UpdateMessage)
		messages.DELETE("/:id", h.DeleteMessage)
	}
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context())
	if err != nil {
		failure(c, err, "Message", "fetch messages")
		return
	}
	respondData(c, http.StatusOK, messages)
}

func (h *MessageHandler) ListMessagesByUser(c *gin.Context) {
	userID, ok := parseID(c, "user_id", "user")
	if !ok {
		return
	}

	messages, err := h.service.ListMessagesByUser(c.Request.Context(), userID)
	if err != nil {
		failure(c, err, "Message", "fetch messages")
		return
	}
	respondData(c, http.StatusOK, messages)
}

func (h *MessageHandler) GetMessage(c *gin.Context) {
	id, ok := parseID(c, "id", "message")
	if !ok {
		return
	}

	message, err := h.service.GetMessage(c.Request.Context(), id)
	if err != nil {
		failure(c, err, "Message", "fetch message")
		return
	}
	respondData(c, http.StatusOK, message)
}

func (h *MessageHandler) CreateMessage(c *gin.Context) {
	var req models.CreateMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" || req.UserID == nil {
		validationFailed(c, "Content and user_id are required")
		return
	}

	message, err := h.service.CreateMessage(c.Request.Context(), req.Content, *req.UserID)
	if err != nil {
		failure(c, err, "Message", "create message")
		return
	}
	respondData(c, http.StatusCreated, message)
}

func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	id, ok := parseID(c, "id", "message")
	if !ok {
		return
	}

	var req models.UpdateMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		validationFailed(c, "Content is required")
		return
	}

	message, err := h.service.UpdateMessage(c.Request.Context(), id, req.Content)
	if err != nil {
		failure(c, err, "Message", "update message")
		return
	}
	respondData(c, http.StatusOK, message)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, ok := parseID(c, "id", "message")
	if !ok {
		return
	}

	if err := h.service.DeleteMessage(c.Request.Context(), id); err != nil {
		failure(c, err, "Message", "delete message")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Message deleted successfully"})
}
