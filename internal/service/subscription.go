package service

import (
	"context"

	"jobboard_chat/internal/realtime"
	"jobboard_chat/pkg/logger"
)

// Subscription - живой снапшот: сначала текущее состояние, затем новое состояние после каждого изменения.
// Если потребитель не успевает, промежуточные снапшоты заменяются последним.
type Subscription[T any] struct {
	updates chan T
	done    chan struct{}
	cancel  context.CancelFunc
}

// Updates закрывается после Close или отмены контекста
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Close останавливает доставку и ждет завершения горутины. Повторный вызов безопасен.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// subscribe сначала подписывается на топики и только потом читает снапшот,
// чтобы не потерять изменение между чтением и подпиской
func subscribe[T any](ctx context.Context, notifier realtime.Notifier, topics []string, load func(ctx context.Context) (T, error), log logger.Logger) (*Subscription[T], error) {
	feed, err := notifier.Subscribe(ctx, topics...)
	if err != nil {
		return nil, err
	}

	initial, err := load(ctx)
	if err != nil {
		_ = feed.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		updates: make(chan T, 1),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	sub.updates <- initial

	go sub.run(subCtx, feed, load, log.With("topics", topics))

	return sub, nil
}

func (s *Subscription[T]) run(ctx context.Context, feed realtime.Feed, load func(ctx context.Context) (T, error), log logger.Logger) {
	defer close(s.done)
	defer close(s.updates)
	defer func() { _ = feed.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-feed.C():
			if !ok {
				log.Debug("Change feed closed")
				return
			}
			drain(feed)

			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Warn("Failed to reload snapshot", "error", err)
				continue
			}
			s.push(snapshot)
		}
	}
}

// push заменяет непрочитанный снапшот новым. Пишет только run, так что после вычитки место есть.
func (s *Subscription[T]) push(snapshot T) {
	select {
	case s.updates <- snapshot:
		return
	default:
	}

	select {
	case <-s.updates:
	default:
	}

	select {
	case s.updates <- snapshot:
	default:
	}
}

// drain схлопывает пачку уведомлений в одну перезагрузку
func drain(feed realtime.Feed) {
	for {
		select {
		case _, ok := <-feed.C():
			if !ok {
				return
			}
		default:
			return
		}
	}
}
