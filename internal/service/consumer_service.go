package service

import (
	"context"

	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/websocket"
	"ai-assistant-be/pkg/speech"

	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// speechConsumerService drains the speak queue and pushes each utterance
// to the owning user's websocket connections, where the browser hands it
// to the Web Speech API.
type speechConsumerService struct {
	queue  *speech.Queue
	push   RealtimePush
	logger logger.ILogger
}

func NewSpeechConsumerService(queue *speech.Queue, push RealtimePush, log logger.ILogger) IConsumerService {
	return &speechConsumerService{
		queue:  queue,
		push:   push,
		logger: log,
	}
}

func (cs *speechConsumerService) Consume(ctx context.Context) error {
	return cs.queue.Consume(ctx, func(u speech.Utterance) error {
		userId, err := uuid.Parse(u.UserID)
		if err != nil {
			cs.logger.Warn("SpeechConsumer", "Utterance with invalid user id dropped", map[string]interface{}{"user_id": u.UserID})
			return nil
		}
		cs.push.Push(userId, websocket.EventSpeak, u)
		return nil
	})
}
