package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/middleware"
	apperrors "jobboard_chat/pkg/errors"
	"jobboard_chat/pkg/logger"
)

// conversationAccess разбирает :key и проверяет, что пользователь - одна из сторон беседы.
// При отказе ответ уже записан.
func conversationAccess(c *gin.Context) (domain.ConversationKey, domain.Role, bool) {
	key, err := domain.ParseConversationKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.ConversationKey{}, "", false
	}

	role := middleware.UserRole(c)
	if !isParty(middleware.UserID(c), role, key) {
		c.JSON(http.StatusForbidden, gin.H{"error": apperrors.ErrNotParticipant.Error()})
		return domain.ConversationKey{}, "", false
	}

	return key, role, true
}

// employerAccess пускает только самого работодателя к его списку бесед
func employerAccess(c *gin.Context) (string, bool) {
	employerID := c.Param("id")
	if employerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employer id is required"})
		return "", false
	}

	if middleware.UserRole(c) != domain.RoleEmployer ||
		domain.CanonicalEmployerID(middleware.UserID(c)) != domain.CanonicalEmployerID(employerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": apperrors.ErrForbidden.Error()})
		return "", false
	}

	return employerID, true
}

// Работодатель мог сохраниться под другой записью числового id ("010" и "10")
func isParty(userID string, role domain.Role, key domain.ConversationKey) bool {
	switch role {
	case domain.RoleEmployer:
		return domain.CanonicalEmployerID(userID) == domain.CanonicalEmployerID(key.EmployerID)
	case domain.RoleApplicant:
		return userID == key.ApplicantID
	default:
		return false
	}
}

// partyID - id стороны в том виде, в каком он записан в ключе
func partyID(key domain.ConversationKey, role domain.Role) string {
	if role == domain.RoleEmployer {
		return key.EmployerID
	}
	return key.ApplicantID
}

func respondError(c *gin.Context, log logger.Logger, msg string, err error) {
	status := apperrors.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": apperrors.ErrInternalServer.Error()})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
