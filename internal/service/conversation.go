package service

import (
	"context"
	"strings"

	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/events"
	"jobboard_chat/internal/metrics"
	"jobboard_chat/internal/realtime"
	"jobboard_chat/internal/repository"
	apperrors "jobboard_chat/pkg/errors"
	"jobboard_chat/pkg/logger"
)

type ConversationService interface {
	// OpenConversation возвращает представление беседы, даже если сводки еще нет
	OpenConversation(ctx context.Context, key domain.ConversationKey, nameHint string) (*domain.ConversationView, error)
	GetSummary(ctx context.Context, key domain.ConversationKey) (*domain.ConversationSummary, error)
	SendMessage(ctx context.Context, key domain.ConversationKey, senderID, text, nameHint string) (*domain.Message, error)
	GetMessages(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error)
	MarkConversationRead(ctx context.Context, key domain.ConversationKey, reader domain.Role) (*domain.ConversationSummary, error)
	ListConversations(ctx context.Context, employerID string) ([]*domain.ConversationSummary, error)

	SubscribeMessages(ctx context.Context, key domain.ConversationKey) (*Subscription[[]*domain.Message], error)
	SubscribeSummary(ctx context.Context, key domain.ConversationKey) (*Subscription[*domain.ConversationSummary], error)
	SubscribeConversations(ctx context.Context, employerID string) (*Subscription[[]*domain.ConversationSummary], error)
}

type conversationService struct {
	messageRepo repository.MessageRepository
	summaryRepo repository.SummaryRepository
	names       *NameResolver
	notifier    realtime.Notifier
	bus         *events.Bus
	audit       AuditService
	log         logger.Logger
}

func NewConversationService(
	messageRepo repository.MessageRepository,
	summaryRepo repository.SummaryRepository,
	names *NameResolver,
	notifier realtime.Notifier,
	bus *events.Bus,
	audit AuditService,
	log logger.Logger,
) ConversationService {
	return &conversationService{
		messageRepo: messageRepo,
		summaryRepo: summaryRepo,
		names:       names,
		notifier:    notifier,
		bus:         bus,
		audit:       audit,
		log:         log,
	}
}

func (s *conversationService) OpenConversation(ctx context.Context, key domain.ConversationKey, nameHint string) (*domain.ConversationView, error) {
	summary, err := s.summaryRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if nameHint == "" {
		nameHint, _ = s.names.Cached(key.ApplicantID)
	}

	view := domain.NewConversationView(key, summary, strings.TrimSpace(nameHint))
	switch {
	case view.ApplicantName != nil:
	case summary != nil:
		s.names.ResolveAsync(key)
	default:
		// Сводку создаст первое сообщение, имя к этому моменту будет в кэше
		s.names.LookupAsync(key.ApplicantID)
	}

	return view, nil
}

func (s *conversationService) GetSummary(ctx context.Context, key domain.ConversationKey) (*domain.ConversationSummary, error) {
	summary, err := s.summaryRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, apperrors.ErrNotFound
	}
	return summary, nil
}

func (s *conversationService) SendMessage(ctx context.Context, key domain.ConversationKey, senderID, text, nameHint string) (*domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	sender, err := key.RoleOf(senderID)
	if err != nil {
		return nil, err
	}

	if nameHint == "" {
		nameHint, _ = s.names.Cached(key.ApplicantID)
	}

	message := &domain.Message{
		EmployerID:  key.EmployerID,
		ApplicantID: key.ApplicantID,
		SenderID:    senderID,
		Text:        text,
	}

	if _, err := s.messageRepo.Append(ctx, message, domain.OnSendPatch(sender, text, nameHint)); err != nil {
		metrics.WriteFailuresTotal.WithLabelValues("append").Inc()
		return nil, err
	}
	metrics.MessagesSentTotal.WithLabelValues(string(sender)).Inc()

	s.log.Debug("Message sent", "conversation_key", key.String(), "sender_role", sender, "message_id", message.ID)

	// Запись уже закоммичена: уведомления и аудит не должны зависеть от отмены запроса
	notifyCtx := context.WithoutCancel(ctx)
	s.publish(notifyCtx,
		realtime.MessagesTopic(key.String()),
		realtime.SummaryTopic(key.String()),
		realtime.EmployerTopic(domain.CanonicalEmployerID(key.EmployerID)),
	)
	s.logEvent(notifyCtx, senderID, string(sender), key, domain.EventTypeMessageSent, map[string]interface{}{
		"message_id": message.ID,
	})

	return message, nil
}

func (s *conversationService) GetMessages(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error) {
	return s.messageRepo.List(ctx, key)
}

func (s *conversationService) MarkConversationRead(ctx context.Context, key domain.ConversationKey, reader domain.Role) (*domain.ConversationSummary, error) {
	summary, err := s.summaryRepo.Merge(ctx, key, domain.MarkReadPatch(reader))
	if err != nil {
		metrics.WriteFailuresTotal.WithLabelValues("merge").Inc()
		return nil, err
	}

	notifyCtx := context.WithoutCancel(ctx)
	s.publish(notifyCtx,
		realtime.SummaryTopic(key.String()),
		realtime.EmployerTopic(domain.CanonicalEmployerID(key.EmployerID)),
	)

	actorID := key.ApplicantID
	if reader == domain.RoleEmployer {
		actorID = key.EmployerID
	}
	s.logEvent(notifyCtx, actorID, string(reader), key, domain.EventTypeConversationRead, nil)

	return summary, nil
}

func (s *conversationService) ListConversations(ctx context.Context, employerID string) ([]*domain.ConversationSummary, error) {
	summaries, err := s.summaryRepo.ListByEmployer(ctx, domain.EmployerIDVariants(employerID))
	if err != nil {
		return nil, err
	}

	s.fillCachedNames(summaries)
	domain.SortSummaries(summaries)

	return summaries, nil
}

func (s *conversationService) SubscribeMessages(ctx context.Context, key domain.ConversationKey) (*Subscription[[]*domain.Message], error) {
	return subscribe(ctx, s.notifier, []string{realtime.MessagesTopic(key.String())},
		func(ctx context.Context) ([]*domain.Message, error) {
			return s.messageRepo.List(ctx, key)
		}, s.log)
}

// SubscribeSummary отдает nil, пока сводки нет
func (s *conversationService) SubscribeSummary(ctx context.Context, key domain.ConversationKey) (*Subscription[*domain.ConversationSummary], error) {
	return subscribe(ctx, s.notifier, []string{realtime.SummaryTopic(key.String())},
		func(ctx context.Context) (*domain.ConversationSummary, error) {
			return s.summaryRepo.Get(ctx, key)
		}, s.log)
}

// SubscribeConversations перечитывает список и по сигналу обновления
func (s *conversationService) SubscribeConversations(ctx context.Context, employerID string) (*Subscription[[]*domain.ConversationSummary], error) {
	topics := []string{
		realtime.EmployerTopic(domain.CanonicalEmployerID(employerID)),
		s.bus.Topic(),
	}
	return subscribe(ctx, s.notifier, topics, func(ctx context.Context) ([]*domain.ConversationSummary, error) {
		return s.ListConversations(ctx, employerID)
	}, s.log)
}

// fillCachedNames подставляет имена из кэша, а отсутствующие резолвит в фоне
func (s *conversationService) fillCachedNames(summaries []*domain.ConversationSummary) {
	missing := make([]*domain.ConversationSummary, 0)
	for _, summary := range summaries {
		if summary.HasApplicantName() {
			continue
		}
		missing = append(missing, summary)
	}
	if len(missing) == 0 {
		return
	}

	s.names.ResolveMissing(missing)
	for _, summary := range missing {
		if name, ok := s.names.Cached(summary.ApplicantID); ok {
			domain.ApplicantNamePatch(name).ApplyTo(summary)
		}
	}
}

func (s *conversationService) publish(ctx context.Context, topics ...string) {
	for _, topic := range topics {
		if err := s.notifier.Publish(ctx, topic); err != nil {
			metrics.WriteFailuresTotal.WithLabelValues("publish").Inc()
			s.log.Warn("Failed to publish change notification", "topic", topic, "error", err)
		}
	}
}

func (s *conversationService) logEvent(ctx context.Context, actorID, actorRole string, key domain.ConversationKey, eventType string, payload map[string]interface{}) {
	if err := s.audit.LogEvent(ctx, actorID, actorRole, key.String(), eventType, payload); err != nil {
		s.log.Warn("Failed to write audit log", "event_type", eventType, "error", err)
	}
}
