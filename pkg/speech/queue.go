package speech

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const speakTopic = "assistant.speak"

// Queue decouples reply generation from speech delivery: the assistant
// publishes utterances as they are produced and the consumer pushes them
// to the browser in order, one websocket event per utterance.
type Queue struct {
	pubsub *gochannel.GoChannel
}

func NewQueue(logger watermill.LoggerAdapter) *Queue {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Queue{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

// Publish enqueues an utterance for playback.
func (q *Queue) Publish(u Utterance) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal utterance: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return q.pubsub.Publish(speakTopic, msg)
}

// Consume delivers queued utterances to fn until ctx is cancelled.
// A handler error Nacks the message so it is redelivered.
func (q *Queue) Consume(ctx context.Context, fn func(Utterance) error) error {
	messages, err := q.pubsub.Subscribe(ctx, speakTopic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", speakTopic, err)
	}

	go func() {
		for msg := range messages {
			var u Utterance
			if err := json.Unmarshal(msg.Payload, &u); err != nil {
				msg.Ack() // malformed payloads are dropped, not retried
				continue
			}
			if err := fn(u); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()
	return nil
}

func (q *Queue) Close() error {
	return q.pubsub.Close()
}
