package pubsub

import (
	"context"

	"github.com/tonlotto/backend/pkg/xcontext"
)

// LogPublisher writes every pack to the logger. It stands in for a real
// transport in development and in the evaluate-once command.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, topic string, pack *Pack) error {
	xcontext.Logger(ctx).Infof("publish to %s (key=%s): %s", topic, pack.Key, pack.Msg)
	return nil
}
