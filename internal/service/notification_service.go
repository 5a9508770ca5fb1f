package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository"
	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// Toast event codes published on the bus by the assistant.
const (
	EventSessionCreated  = "SESSION_CREATED"
	EventSessionCleared  = "SESSION_CLEARED"
	EventCreatorModeOn   = "CREATOR_MODE_ENABLED"
	EventCreatorModeOff  = "CREATOR_MODE_DISABLED"
	EventModelError      = "MODEL_ERROR"
	EventAssistantError  = "ASSISTANT_ERROR"
	EventSystemBroadcast = "SYSTEM_BROADCAST"
)

type toastTemplate struct {
	Title     string
	Message   string // fmt template; %s fills from payload["detail"]
	Broadcast bool
}

// toastRegistry maps event codes to toast content. Unknown codes are
// dropped instead of erroring so new producers can ship ahead of this map.
var toastRegistry = map[string]toastTemplate{
	EventSessionCreated: {Title: "New conversation", Message: "Started a fresh conversation%s."},
	EventSessionCleared: {Title: "Conversation cleared", Message: "History wiped%s. The assistant starts from scratch."},
	EventCreatorModeOn:  {Title: "Creator mode", Message: "Creator mode is now on%s."},
	EventCreatorModeOff: {Title: "Creator mode", Message: "Creator mode is now off%s."},
	EventModelError:     {Title: "Model trouble", Message: "The language model had a problem%s. Built-in answers still work."},
	EventAssistantError: {Title: "Something went wrong", Message: "The assistant hit an internal problem%s. Your message was not processed."},
	EventSystemBroadcast: {
		Title:     "Announcement",
		Message:   "%s",
		Broadcast: true,
	},
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	tmpl, ok := toastRegistry[typeCode]
	if !ok {
		s.logger.Debug("NotificationService", fmt.Sprintf("No toast registered for event '%s'", typeCode), nil)
		return nil
	}

	notif := s.buildNotification(typeCode, tmpl, event)

	if tmpl.Broadcast {
		// Push-only: broadcasts are ephemeral, not persisted per user.
		if s.delivery != nil {
			s.delivery.Broadcast(notif)
		}
		return nil
	}

	uidStr, _ := event.Payload()["user_id"].(string)
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event '%s' carries no valid user_id", typeCode), nil)
		return nil
	}
	notif.UserID = userID

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{"error": err, "user_id": userID})
		return err // NATS will redeliver
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}
	return nil
}

func (s *NotificationService) buildNotification(typeCode string, tmpl toastTemplate, event events.Event) model.Notification {
	detail, _ := event.Payload()["detail"].(string)
	if detail != "" && tmpl.Message != "%s" {
		detail = " " + detail
	}

	metaJSON, _ := json.Marshal(event.Payload())

	return model.Notification{
		ID:        uuid.New(),
		Type:      typeCode,
		Title:     tmpl.Title,
		Message:   fmt.Sprintf(tmpl.Message, detail),
		Metadata:  datatypes.JSON(metaJSON),
		IsRead:    false,
		CreatedAt: time.Now(),
	}
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// ReplayUnread re-pushes unread toasts to a user, oldest first. Called
// when a websocket (re)connects so nothing shown is lost on reload.
func (s *NotificationService) ReplayUnread(ctx context.Context, userID uuid.UUID) error {
	unread, err := s.repo.GetUnreadNotifications(ctx, userID)
	if err != nil {
		return err
	}
	if s.delivery == nil {
		return nil
	}
	for i := range unread {
		s.delivery.Send(userID, unread[i])
	}
	return nil
}
