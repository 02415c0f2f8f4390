package realtime

import (
	"context"
)

// Feed доставляет имена топиков, в которых что-то изменилось.
// Само изменение не передается: подписчик перечитывает актуальное состояние.
type Feed interface {
	C() <-chan string
	Close() error
}

// Notifier - шина уведомлений об изменениях (Redis pub/sub или in-process)
type Notifier interface {
	Publish(ctx context.Context, topic string) error
	Subscribe(ctx context.Context, topics ...string) (Feed, error)
	Close() error
}

const (
	messagesTopicFormat = "chat:conv:%s:messages"
	summaryTopicFormat  = "chat:conv:%s:summary"
	employerTopicFormat = "chat:employer:%s:conversations"
	RefreshTopic        = "chat:events:refresh"
	defaultFeedBuffer   = 16
)
