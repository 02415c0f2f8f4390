package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"jobboard_chat/internal/realtime"
	"jobboard_chat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeDeliversInitialThenReloads(t *testing.T) {
	notifier := realtime.NewLocalNotifier()
	defer notifier.Close()
	ctx := context.Background()

	var version int32
	load := func(ctx context.Context) (int32, error) {
		return atomic.LoadInt32(&version), nil
	}

	sub, err := subscribe(ctx, notifier, []string{"topic"}, load, logger.NewNop())
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, int32(0), next(t, sub))

	atomic.StoreInt32(&version, 3)
	require.NoError(t, notifier.Publish(ctx, "topic"))
	assert.Equal(t, int32(3), next(t, sub))
}

func TestSubscribeKeepsOnlyLatestSnapshot(t *testing.T) {
	notifier := realtime.NewLocalNotifier()
	defer notifier.Close()
	ctx := context.Background()

	var version int32
	sub, err := subscribe(ctx, notifier, []string{"topic"}, func(ctx context.Context) (int32, error) {
		return atomic.LoadInt32(&version), nil
	}, logger.NewNop())
	require.NoError(t, err)
	defer sub.Close()

	for i := int32(1); i <= 5; i++ {
		atomic.StoreInt32(&version, i)
		require.NoError(t, notifier.Publish(ctx, "topic"))
	}

	require.Eventually(t, func() bool {
		select {
		case v := <-sub.Updates():
			return v == 5
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribeInitialLoadFailure(t *testing.T) {
	notifier := realtime.NewLocalNotifier()
	defer notifier.Close()
	loadErr := errors.New("db down")

	_, err := subscribe(context.Background(), notifier, []string{"topic"}, func(ctx context.Context) (int, error) {
		return 0, loadErr
	}, logger.NewNop())
	assert.ErrorIs(t, err, loadErr)
}

func TestSubscriptionCloseStopsDelivery(t *testing.T) {
	notifier := realtime.NewLocalNotifier()
	defer notifier.Close()
	ctx := context.Background()

	var loads int32
	sub, err := subscribe(ctx, notifier, []string{"topic"}, func(ctx context.Context) (int32, error) {
		return atomic.AddInt32(&loads, 1), nil
	}, logger.NewNop())
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	select {
	case <-sub.Done():
	default:
		t.Fatal("subscription still running after Close")
	}

	// остаток буфера вычитывается, затем канал закрыт
	for range sub.Updates() {
	}

	require.NoError(t, notifier.Publish(ctx, "topic"))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
}

func TestSubscriptionStopsOnContextCancel(t *testing.T) {
	notifier := realtime.NewLocalNotifier()
	defer notifier.Close()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := subscribe(ctx, notifier, []string{"topic"}, func(ctx context.Context) (string, error) {
		return "snapshot", nil
	}, logger.NewNop())
	require.NoError(t, err)

	cancel()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription did not stop on cancel")
	}
}

func TestResubscribeReplaysState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	key := mustKey(t, "10", "42")

	_, err := env.services.Conversation.SendMessage(ctx, key, "10", "hi", "")
	require.NoError(t, err)

	first, err := env.services.Conversation.SubscribeMessages(ctx, key)
	require.NoError(t, err)
	assert.Len(t, next(t, first), 1)
	first.Close()

	second, err := env.services.Conversation.SubscribeMessages(ctx, key)
	require.NoError(t, err)
	defer second.Close()
	assert.Len(t, next(t, second), 1)
}
