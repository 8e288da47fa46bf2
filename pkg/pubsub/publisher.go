package pubsub

import "context"

type Pack struct {
	Key []byte
	Msg []byte
}

// Publisher is the hand-off point between the round core and whatever
// transport the host uses to reach participants. Delivery is best-effort;
// the core never blocks settlement on it.
type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
}
