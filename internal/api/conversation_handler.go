package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/core"
	"wheelsup-backend-go/internal/models"
)

// ConversationHandler handles API endpoints related to member chats.
type ConversationHandler struct {
	conversations core.ConversationService
	users         core.UserService
	logger        *zap.Logger
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(conversations core.ConversationService, users core.UserService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, users: users, logger: logger}
}

func (h *ConversationHandler) mapConversationErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: core.ErrConversationNotFound.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found", Details: err.Error()})
	case errors.Is(err, core.ErrNotParticipant):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: core.ErrNotParticipant.Error()})
	case errors.Is(err, core.ErrEmptyMessage), errors.Is(err, core.ErrSelfConversation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("Conversation request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// ListConversations handles GET /conversations for the signed-in member.
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.conversations.ConversationsFor(profile.ID))
}

// OpenConversation handles POST /conversations. It answers 201 when a new
// thread was started and 200 when an existing one was returned.
func (h *ConversationHandler) OpenConversation(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req models.OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.ParticipantID == profile.ID {
		h.mapConversationErrorToStatus(c, core.ErrSelfConversation)
		return
	}

	other, err := h.users.GetByID(c.Request.Context(), req.ParticipantID)
	if err != nil {
		h.mapConversationErrorToStatus(c, err)
		return
	}

	conv, created := h.conversations.Open(c.Request.Context(), *profile, *other, req.RideID)
	if created {
		c.JSON(http.StatusCreated, conv)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// GetConversation handles GET /conversations/:conversationId
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}
	conv, found := h.conversations.Conversation(c.Param("conversationId"))
	if !found {
		h.mapConversationErrorToStatus(c, core.ErrConversationNotFound)
		return
	}
	if !conv.HasParticipant(profile.ID) {
		h.mapConversationErrorToStatus(c, core.ErrNotParticipant)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// SendMessage handles POST /conversations/:conversationId/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	_, profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := h.conversations.Post(c.Request.Context(), c.Param("conversationId"), profile.ID, req.Text)
	if err != nil {
		h.mapConversationErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
