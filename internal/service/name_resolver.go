package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/metrics"
	"jobboard_chat/internal/realtime"
	"jobboard_chat/internal/repository"
	apperrors "jobboard_chat/pkg/errors"
	"jobboard_chat/pkg/logger"
)

// NameResolver лениво достает имя кандидата из сервиса профилей и сохраняет его в сводку.
// На один applicant id одновременно идет не больше одного внешнего запроса.
type NameResolver struct {
	fetcher     ProfileFetcher
	summaryRepo repository.SummaryRepository
	notifier    realtime.Notifier
	audit       AuditService
	cache       *lru.Cache
	lookups     singleflight.Group
	writes      singleflight.Group
	timeout     time.Duration
	wg          sync.WaitGroup
	log         logger.Logger
}

func NewNameResolver(
	fetcher ProfileFetcher,
	summaryRepo repository.SummaryRepository,
	notifier realtime.Notifier,
	audit AuditService,
	cacheSize int,
	timeout time.Duration,
	log logger.Logger,
) (*NameResolver, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create name cache: %w", err)
	}

	return &NameResolver{
		fetcher:     fetcher,
		summaryRepo: summaryRepo,
		notifier:    notifier,
		audit:       audit,
		cache:       cache,
		timeout:     timeout,
		log:         log,
	}, nil
}

func (r *NameResolver) Cached(applicantID string) (string, bool) {
	value, ok := r.cache.Get(applicantID)
	if !ok {
		return "", false
	}
	return value.(string), true
}

// Resolve возвращает имя из кэша или запрашивает профиль.
// Найденное имя пишется в сводку беседы key. При ошибке ничего не кэшируется.
func (r *NameResolver) Resolve(ctx context.Context, key domain.ConversationKey) (string, error) {
	if name, ok := r.Cached(key.ApplicantID); ok {
		return name, nil
	}

	name, err := r.Lookup(ctx, key.ApplicantID)
	if err != nil {
		return "", err
	}
	r.persist(ctx, key, name)

	return name, nil
}

// Lookup только наполняет кэш, сводки не трогает
func (r *NameResolver) Lookup(ctx context.Context, applicantID string) (string, error) {
	value, err, _ := r.lookups.Do(applicantID, func() (interface{}, error) {
		// Опоздавший вызов мог прийти уже после завершения чужого запроса
		if name, ok := r.Cached(applicantID); ok {
			return name, nil
		}
		return r.fetch(ctx, applicantID)
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// ResolveAsync запускает Resolve в фоне с собственным таймаутом
func (r *NameResolver) ResolveAsync(key domain.ConversationKey) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		// ошибки уже залогированы в fetch
		_, _ = r.Resolve(ctx, key)
	}()
}

// LookupAsync прогревает кэш для беседы, у которой еще нет сводки
func (r *NameResolver) LookupAsync(applicantID string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		_, _ = r.Lookup(ctx, applicantID)
	}()
}

// ResolveMissing дозаполняет сводки без имени: из кэша сразу, остальное в фоне
func (r *NameResolver) ResolveMissing(summaries []*domain.ConversationSummary) {
	for _, summary := range summaries {
		if summary.HasApplicantName() {
			continue
		}

		key := summary.ConversationKey()
		if name, ok := r.Cached(key.ApplicantID); ok {
			r.persistAsync(key, name)
			continue
		}
		r.ResolveAsync(key)
	}
}

// Wait дожидается фоновых резолвов (graceful shutdown, тесты)
func (r *NameResolver) Wait() {
	r.wg.Wait()
}

func (r *NameResolver) fetch(ctx context.Context, applicantID string) (string, error) {
	start := time.Now()
	profile, err := r.fetcher.FetchProfile(ctx, applicantID)
	metrics.ProfileLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ProfileLookupsTotal.WithLabelValues(lookupOutcome(err)).Inc()
		r.log.Warn("Failed to resolve applicant name", "applicant_id", applicantID, "error", err)
		return "", err
	}

	metrics.ProfileLookupsTotal.WithLabelValues("success").Inc()
	r.cache.Add(applicantID, profile.DisplayName)
	r.log.Debug("Applicant name resolved", "applicant_id", applicantID)

	return profile.DisplayName, nil
}

func (r *NameResolver) persistAsync(key domain.ConversationKey, name string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		r.persist(ctx, key, name)
	}()
}

// persist мержит имя в сводку. Параллельные записи для одной беседы схлопываются.
func (r *NameResolver) persist(ctx context.Context, key domain.ConversationKey, name string) {
	_, _, _ = r.writes.Do(key.String(), func() (interface{}, error) {
		if _, err := r.summaryRepo.Merge(ctx, key, domain.ApplicantNamePatch(name)); err != nil {
			metrics.WriteFailuresTotal.WithLabelValues("persist_name").Inc()
			r.log.Warn("Failed to persist applicant name", "conversation_key", key.String(), "error", err)
			return nil, err
		}

		for _, topic := range []string{
			realtime.SummaryTopic(key.String()),
			realtime.EmployerTopic(domain.CanonicalEmployerID(key.EmployerID)),
		} {
			if err := r.notifier.Publish(ctx, topic); err != nil {
				metrics.WriteFailuresTotal.WithLabelValues("publish").Inc()
			}
		}

		payload := map[string]interface{}{"applicant_id": key.ApplicantID}
		if err := r.audit.LogEvent(ctx, key.ApplicantID, domain.ActorRoleSystem, key.String(), domain.EventTypeNameResolved, payload); err != nil {
			r.log.Warn("Failed to write audit log", "event_type", domain.EventTypeNameResolved, "error", err)
		}

		return nil, nil
	})
}

func lookupOutcome(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrProfileNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrProfileHasNoName):
		return "no_name"
	default:
		return "error"
	}
}
