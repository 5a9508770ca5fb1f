package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-assistant-be/internal/model"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeNotifRepo struct {
	created   []model.Notification
	createErr error
	unread    []model.Notification
}

func (f *fakeNotifRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *n)
	return nil
}

func (f *fakeNotifRepo) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return f.created, int64(len(f.created)), nil
}

func (f *fakeNotifRepo) GetUnreadNotifications(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	return f.unread, nil
}

func (f *fakeNotifRepo) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(f.unread)), nil
}

func (f *fakeNotifRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeNotifRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error { return nil }

type fakeDelivery struct {
	sent      []model.Notification
	broadcast []model.Notification
}

func (f *fakeDelivery) Send(userID uuid.UUID, n model.Notification) {
	f.sent = append(f.sent, n)
}

func (f *fakeDelivery) Broadcast(n model.Notification) {
	f.broadcast = append(f.broadcast, n)
}

func newTestNotifService(repo *fakeNotifRepo, delivery *fakeDelivery, t *testing.T) *NotificationService {
	return NewNotificationService(repo, nil, delivery, logger.NewIsolatedLogger(t.TempDir()+"/notif.log"))
}

func event(code string, payload map[string]interface{}) events.BaseEvent {
	return events.BaseEvent{Type: "events." + code, Data: payload, OccurredAt: time.Now()}
}

func TestHandleEventPersistsAndDelivers(t *testing.T) {
	repo := &fakeNotifRepo{}
	delivery := &fakeDelivery{}
	svc := newTestNotifService(repo, delivery, t)

	userID := uuid.New()
	err := svc.handleEvent(context.Background(), event(EventCreatorModeOn, map[string]interface{}{
		"user_id": userID.String(),
		"detail":  "",
	}))

	assert.NoError(t, err)
	if assert.Len(t, repo.created, 1) {
		assert.Equal(t, EventCreatorModeOn, repo.created[0].Type)
		assert.Equal(t, userID, repo.created[0].UserID)
		assert.Equal(t, "Creator mode is now on.", repo.created[0].Message)
	}
	assert.Len(t, delivery.sent, 1)
	assert.Empty(t, delivery.broadcast)
}

func TestHandleEventUnknownCodeIsDropped(t *testing.T) {
	repo := &fakeNotifRepo{}
	delivery := &fakeDelivery{}
	svc := newTestNotifService(repo, delivery, t)

	err := svc.handleEvent(context.Background(), event("SOMETHING_NEW", map[string]interface{}{
		"user_id": uuid.New().String(),
	}))

	assert.NoError(t, err)
	assert.Empty(t, repo.created)
	assert.Empty(t, delivery.sent)
}

func TestHandleEventBroadcastIsEphemeral(t *testing.T) {
	repo := &fakeNotifRepo{}
	delivery := &fakeDelivery{}
	svc := newTestNotifService(repo, delivery, t)

	err := svc.handleEvent(context.Background(), event(EventSystemBroadcast, map[string]interface{}{
		"detail": "maintenance at noon",
	}))

	assert.NoError(t, err)
	assert.Empty(t, repo.created, "broadcasts are not persisted")
	if assert.Len(t, delivery.broadcast, 1) {
		assert.Equal(t, "maintenance at noon", delivery.broadcast[0].Message)
	}
}

func TestHandleEventRepoFailureRequestsRedelivery(t *testing.T) {
	repo := &fakeNotifRepo{createErr: errors.New("db down")}
	delivery := &fakeDelivery{}
	svc := newTestNotifService(repo, delivery, t)

	err := svc.handleEvent(context.Background(), event(EventSessionCleared, map[string]interface{}{
		"user_id": uuid.New().String(),
	}))

	assert.Error(t, err)
	assert.Empty(t, delivery.sent)
}

func TestHandleEventMissingUserIsDropped(t *testing.T) {
	repo := &fakeNotifRepo{}
	delivery := &fakeDelivery{}
	svc := newTestNotifService(repo, delivery, t)

	err := svc.handleEvent(context.Background(), event(EventModelError, map[string]interface{}{}))

	assert.NoError(t, err, "events without a user are dropped, not retried")
	assert.Empty(t, repo.created)
}

func TestReplayUnreadPushesOldestFirst(t *testing.T) {
	first := model.Notification{ID: uuid.New(), Message: "first"}
	second := model.Notification{ID: uuid.New(), Message: "second"}
	repo := &fakeNotifRepo{unread: []model.Notification{first, second}}
	delivery := &fakeDelivery{}
	svc := newTestNotifService(repo, delivery, t)

	err := svc.ReplayUnread(context.Background(), uuid.New())

	assert.NoError(t, err)
	if assert.Len(t, delivery.sent, 2) {
		assert.Equal(t, "first", delivery.sent[0].Message)
		assert.Equal(t, "second", delivery.sent[1].Message)
	}
}
