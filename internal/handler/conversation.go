package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/middleware"
	"jobboard_chat/internal/service"
	apperrors "jobboard_chat/pkg/errors"
	"jobboard_chat/pkg/logger"
)

type ConversationHandler struct {
	conversations service.ConversationService
	log           logger.Logger
}

func NewConversationHandler(conversations service.ConversationService, log logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		log:           log,
	}
}

// OpenConversationRequest - либо готовый key, либо пара id
type OpenConversationRequest struct {
	Key           string `json:"key"`
	EmployerID    string `json:"employer_id"`
	ApplicantID   string `json:"applicant_id"`
	ApplicantName string `json:"applicant_name"`
}

func (h *ConversationHandler) Open(c *gin.Context) {
	var req OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		key domain.ConversationKey
		err error
	)
	if req.Key != "" {
		key, err = domain.ParseConversationKey(req.Key)
	} else {
		key, err = domain.NewConversationKey(req.EmployerID, req.ApplicantID)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !isParty(middleware.UserID(c), middleware.UserRole(c), key) {
		c.JSON(http.StatusForbidden, gin.H{"error": apperrors.ErrNotParticipant.Error()})
		return
	}

	view, err := h.conversations.OpenConversation(c.Request.Context(), key, req.ApplicantName)
	if err != nil {
		respondError(c, h.log, "Failed to open conversation", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Get - то же, что Open, но по ключу из URL. ?applicant_name= - подсказка имени.
func (h *ConversationHandler) Get(c *gin.Context) {
	key, _, ok := conversationAccess(c)
	if !ok {
		return
	}

	view, err := h.conversations.OpenConversation(c.Request.Context(), key, c.Query("applicant_name"))
	if err != nil {
		respondError(c, h.log, "Failed to get conversation", err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ConversationHandler) GetMessages(c *gin.Context) {
	key, _, ok := conversationAccess(c)
	if !ok {
		return
	}

	messages, err := h.conversations.GetMessages(c.Request.Context(), key)
	if err != nil {
		respondError(c, h.log, "Failed to get messages", err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

type SendMessageRequest struct {
	Text          string `json:"text"`
	ApplicantName string `json:"applicant_name"`
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	key, role, ok := conversationAccess(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Кандидат сам знает свое имя из токена
	nameHint := strings.TrimSpace(req.ApplicantName)
	if nameHint == "" && role == domain.RoleApplicant {
		nameHint = middleware.DisplayName(c)
	}

	message, err := h.conversations.SendMessage(c.Request.Context(), key, partyID(key, role), req.Text, nameHint)
	if err != nil {
		respondError(c, h.log, "Failed to send message", err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// MarkRead сбрасывает флаг непрочитанного только для стороны из токена
func (h *ConversationHandler) MarkRead(c *gin.Context) {
	key, role, ok := conversationAccess(c)
	if !ok {
		return
	}

	summary, err := h.conversations.MarkConversationRead(c.Request.Context(), key, role)
	if err != nil {
		respondError(c, h.log, "Failed to mark conversation read", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ConversationHandler) ListByEmployer(c *gin.Context) {
	employerID, ok := employerAccess(c)
	if !ok {
		return
	}

	summaries, err := h.conversations.ListConversations(c.Request.Context(), employerID)
	if err != nil {
		respondError(c, h.log, "Failed to list conversations", err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}
