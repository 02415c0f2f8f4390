package events

import (
	"context"

	"jobboard_chat/internal/realtime"
	"jobboard_chat/pkg/logger"
)

// Bus - сигнал "обнови уведомления" для остальных частей приложения.
// Ходит через тот же Notifier, поэтому доходит до всех инстансов.
type Bus struct {
	notifier realtime.Notifier
	log      logger.Logger
}

func NewBus(notifier realtime.Notifier, log logger.Logger) *Bus {
	return &Bus{notifier: notifier, log: log}
}

// RequestRefresh публикует сигнал без данных
func (b *Bus) RequestRefresh(ctx context.Context) error {
	if err := b.notifier.Publish(ctx, realtime.RefreshTopic); err != nil {
		b.log.Warn("Failed to publish refresh event", "error", err)
		return err
	}
	b.log.Debug("Refresh event published")
	return nil
}

// Subscribe возвращает поток сигналов. Закрывает его вызывающая сторона.
func (b *Bus) Subscribe(ctx context.Context) (realtime.Feed, error) {
	return b.notifier.Subscribe(ctx, realtime.RefreshTopic)
}

// Topic нужен подпискам, которые слушают сигнал вместе с другими топиками
func (b *Bus) Topic() string {
	return realtime.RefreshTopic
}
