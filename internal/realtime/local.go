package realtime

import (
	"context"
	"errors"
	"sync"
)

var ErrNotifierClosed = errors.New("notifier closed")

// LocalNotifier - рассылка внутри одного процесса (один инстанс, тесты)
type LocalNotifier struct {
	mu     sync.RWMutex
	topics map[string]map[*localFeed]struct{}
	closed bool
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{
		topics: make(map[string]map[*localFeed]struct{}),
	}
}

func (n *LocalNotifier) Publish(ctx context.Context, topic string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return ErrNotifierClosed
	}

	for feed := range n.topics[topic] {
		select {
		case feed.ch <- topic:
		default:
			// Буфер полон - подписчик и так перечитает состояние
		}
	}
	return nil
}

func (n *LocalNotifier) Subscribe(ctx context.Context, topics ...string) (Feed, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, ErrNotifierClosed
	}

	feed := &localFeed{
		notifier: n,
		topics:   topics,
		ch:       make(chan string, defaultFeedBuffer),
	}
	for _, topic := range topics {
		subs := n.topics[topic]
		if subs == nil {
			subs = make(map[*localFeed]struct{})
			n.topics[topic] = subs
		}
		subs[feed] = struct{}{}
	}

	return feed, nil
}

func (n *LocalNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	for _, subs := range n.topics {
		for feed := range subs {
			feed.closeLocked()
		}
	}
	n.topics = make(map[string]map[*localFeed]struct{})
	return nil
}

func (n *LocalNotifier) remove(feed *localFeed) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, topic := range feed.topics {
		subs := n.topics[topic]
		delete(subs, feed)
		if len(subs) == 0 {
			delete(n.topics, topic)
		}
	}
	feed.closeLocked()
}

type localFeed struct {
	notifier *LocalNotifier
	topics   []string
	ch       chan string
	once     sync.Once
}

func (f *localFeed) C() <-chan string {
	return f.ch
}

func (f *localFeed) Close() error {
	f.notifier.remove(f)
	return nil
}

// closeLocked вызывается под n.mu, поэтому не гонится с Publish
func (f *localFeed) closeLocked() {
	f.once.Do(func() {
		close(f.ch)
	})
}
