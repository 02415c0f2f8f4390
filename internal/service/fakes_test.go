package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobboard_chat/internal/config"
	"jobboard_chat/internal/domain"
	"jobboard_chat/internal/realtime"
	"jobboard_chat/internal/repository"
	"jobboard_chat/pkg/logger"

	"github.com/stretchr/testify/require"
)

// fakeStore - in-memory лог сообщений и сводок с merge по полям
type fakeStore struct {
	mu          sync.Mutex
	messages    []*domain.Message
	summaries   map[domain.ConversationKey]*domain.ConversationSummary
	appendCalls int
	appendErr   error
	mergeErr    error
	clock       time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		summaries: make(map[domain.ConversationKey]*domain.ConversationSummary),
		clock:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) Append(ctx context.Context, message *domain.Message, patch domain.SummaryPatch) (*domain.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.appendCalls++
	if f.appendErr != nil {
		return nil, f.appendErr
	}

	message.ID = int64(len(f.messages) + 1)
	message.CreatedAt = f.clock.Add(time.Duration(message.ID) * time.Second)
	stored := *message
	f.messages = append(f.messages, &stored)

	createdAt := message.CreatedAt
	patch.LastTimestamp = &createdAt
	return f.mergeLocked(message.ConversationKey(), patch), nil
}

func (f *fakeStore) List(ctx context.Context, key domain.ConversationKey) ([]*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*domain.Message, 0)
	for _, m := range f.messages {
		if m.ConversationKey() == key {
			copied := *m
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeStore) Get(ctx context.Context, key domain.ConversationKey) (*domain.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	summary, ok := f.summaries[key]
	if !ok {
		return nil, nil
	}
	copied := *summary
	return &copied, nil
}

func (f *fakeStore) Merge(ctx context.Context, key domain.ConversationKey, patch domain.SummaryPatch) (*domain.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.mergeErr != nil {
		return nil, f.mergeErr
	}
	return f.mergeLocked(key, patch), nil
}

func (f *fakeStore) ListByEmployer(ctx context.Context, employerIDs []string) ([]*domain.ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*domain.ConversationSummary, 0)
	for key, summary := range f.summaries {
		for _, id := range employerIDs {
			if key.EmployerID == id {
				copied := *summary
				result = append(result, &copied)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (f *fakeStore) mergeLocked(key domain.ConversationKey, patch domain.SummaryPatch) *domain.ConversationSummary {
	summary, ok := f.summaries[key]
	if !ok {
		summary = &domain.ConversationSummary{
			Key:         key.String(),
			EmployerID:  key.EmployerID,
			ApplicantID: key.ApplicantID,
		}
		f.summaries[key] = summary
	}
	patch.ApplyTo(summary)
	summary.UpdatedAt = time.Now()

	copied := *summary
	return &copied
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
	err  error
}

func (f *fakeAuditRepo) CreateLog(ctx context.Context, log *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	log.ID = int64(len(f.logs) + 1)
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeAuditRepo) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	types := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		types = append(types, l.EventType)
	}
	return types
}

type fakeStatsRepo struct {
	gotIDs []string
	stats  *domain.EmployerChatStats
}

func (f *fakeStatsRepo) GetEmployerStats(ctx context.Context, employerIDs []string) (*domain.EmployerChatStats, error) {
	f.gotIDs = employerIDs
	copied := *f.stats
	return &copied, nil
}

type fakeRateLimitRepo struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (f *fakeRateLimitRepo) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = make(map[string]int64)
	}
	f.counts[key]++
	return f.counts[key], nil
}

// fakeProfiles считает обращения; если gate задан, запрос ждет его закрытия
type fakeProfiles struct {
	calls int32
	gate  chan struct{}
	names map[string]string
	err   error
}

func (f *fakeProfiles) FetchProfile(ctx context.Context, applicantID string) (*domain.Profile, error) {
	atomic.AddInt32(&f.calls, 1)

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	name, ok := f.names[applicantID]
	if !ok {
		return nil, errors.New("unexpected applicant " + applicantID)
	}
	return &domain.Profile{ID: applicantID, DisplayName: name}, nil
}

func (f *fakeProfiles) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

type testEnv struct {
	store    *fakeStore
	audit    *fakeAuditRepo
	profiles *fakeProfiles
	notifier *realtime.LocalNotifier
	services *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    newFakeStore(),
		audit:    &fakeAuditRepo{},
		profiles: &fakeProfiles{names: map[string]string{"42": "Nguyen Van A", "43": "Tran Thi B"}},
		notifier: realtime.NewLocalNotifier(),
	}

	repos := &repository.Repositories{
		Message:   env.store,
		Summary:   env.store,
		Stats:     &fakeStatsRepo{stats: &domain.EmployerChatStats{}},
		Audit:     env.audit,
		RateLimit: &fakeRateLimitRepo{},
	}
	cfg := &config.Config{
		Profile: config.ProfileConfig{Timeout: time.Second},
		Chat: config.ChatConfig{
			RealtimeBackend: config.RealtimeBackendLocal,
			NameCacheSize:   16,
		},
	}

	services, err := NewServices(repos, env.notifier, env.profiles, cfg, logger.NewNop())
	require.NoError(t, err)
	env.services = services

	t.Cleanup(func() {
		services.Names.Wait()
		_ = env.notifier.Close()
	})

	return env
}

func mustKey(t *testing.T, employerID, applicantID string) domain.ConversationKey {
	t.Helper()
	key, err := domain.NewConversationKey(employerID, applicantID)
	require.NoError(t, err)
	return key
}

// next ждет очередной снапшот подписки
func next[T any](t *testing.T, sub *Subscription[T]) T {
	t.Helper()
	select {
	case value, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed unexpectedly")
		return value
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		var zero T
		return zero
	}
}
