package events

import (
	"context"
	"testing"
	"time"

	"jobboard_chat/internal/realtime"
	"jobboard_chat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversRefreshToAllSubscribers(t *testing.T) {
	notifier := realtime.NewLocalNotifier()
	bus := NewBus(notifier, logger.NewNop())
	ctx := context.Background()

	first, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := bus.Subscribe(ctx)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, bus.RequestRefresh(ctx))

	for _, feed := range []realtime.Feed{first, second} {
		select {
		case topic := <-feed.C():
			assert.Equal(t, bus.Topic(), topic)
		case <-time.After(time.Second):
			t.Fatal("refresh not delivered")
		}
	}
}

func TestBusRequestRefreshAfterClose(t *testing.T) {
	notifier := realtime.NewLocalNotifier()
	bus := NewBus(notifier, logger.NewNop())
	require.NoError(t, notifier.Close())

	err := bus.RequestRefresh(context.Background())
	assert.ErrorIs(t, err, realtime.ErrNotifierClosed)
}
