package service

import (
	"context"
	"time"

	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/repository"
	"jobboard_chat/pkg/logger"
)

type AuditService interface {
	LogEvent(ctx context.Context, actorID, actorRole, conversationKey, eventType string, payload map[string]interface{}) error
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{
		auditRepo: auditRepo,
		log:       log,
	}
}

func (s *auditService) LogEvent(ctx context.Context, actorID, actorRole, conversationKey, eventType string, payload map[string]interface{}) error {
	if payload == nil {
		payload = make(map[string]interface{})
	}

	auditLog := &domain.AuditLog{
		EventTime:       time.Now(),
		ActorID:         actorID,
		ActorRole:       actorRole,
		ConversationKey: conversationKey,
		EventType:       eventType,
		Payload:         payload,
	}

	return s.auditRepo.CreateLog(ctx, auditLog)
}
