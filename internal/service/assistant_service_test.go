package service

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"strings"
	"testing"
	"time"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/assistant/fallback"
	"ai-assistant-be/pkg/assistant/router"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/tools/facts"
	"ai-assistant-be/pkg/tools/search"
	"ai-assistant-be/pkg/tools/stubs"
	"ai-assistant-be/pkg/tools/weather"

	"github.com/google/uuid"
)

func TestTitleFromUtterance(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
	}{
		{"plain", "what's the weather like", "what's the weather like"},
		{"whitespace only", "   ", constant.DefaultSessionTitle},
		{"trimmed", "  hello there  ", "hello there"},
		{
			"long utterance truncated",
			strings.Repeat("a", constant.SessionTitleMaxLen) + " overflow",
			strings.Repeat("a", constant.SessionTitleMaxLen) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFromUtterance(tt.utterance); got != tt.want {
				t.Errorf("titleFromUtterance(%q) = %q, want %q", tt.utterance, got, tt.want)
			}
		})
	}
}

func TestLowConfidenceTranscriptIsRepromptedNotPersisted(t *testing.T) {
	svc := &assistantService{
		logger:          logger.NewIsolatedLogger(t.TempDir() + "/assistant.log"),
		speechThreshold: 0.70,
		now:             time.Now,
	}

	resp, err := svc.SendTranscript(context.Background(), uuid.New(), &dto.TranscriptRequest{
		ChatSessionId: uuid.New(),
		Transcript:    "whats the weather",
		Confidence:    0.42,
	})
	if err != nil {
		t.Fatalf("SendTranscript: %v", err)
	}
	if resp.Sent != nil {
		t.Error("low-confidence transcript must not be stored as a user turn")
	}
	if resp.Reply == nil || !strings.Contains(resp.Reply.Chat, "didn't quite catch") {
		t.Errorf("expected re-prompt reply, got %+v", resp.Reply)
	}
	if resp.Mode != ModeCanned {
		t.Errorf("mode = %s, want %s", resp.Mode, ModeCanned)
	}
}

// Fakes for driving SendChat without a database. The repositories ignore
// specifications; the tests only need the happy ownership path.

type fakeChatSessionRepo struct {
	session *entity.ChatSession
}

func (r *fakeChatSessionRepo) Create(ctx context.Context, s *entity.ChatSession) error { return nil }
func (r *fakeChatSessionRepo) Update(ctx context.Context, s *entity.ChatSession) error { return nil }
func (r *fakeChatSessionRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (r *fakeChatSessionRepo) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return nil
}
func (r *fakeChatSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	return r.session, nil
}
func (r *fakeChatSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return nil, nil
}
func (r *fakeChatSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeChatMessageRepo struct {
	existing  int64 // Count result before this pass
	createErr error
	created   []*entity.ChatMessage
}

func (r *fakeChatMessageRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	if r.createErr != nil {
		return r.createErr
	}
	stored := *m
	r.created = append(r.created, &stored)
	return nil
}
func (r *fakeChatMessageRepo) Update(ctx context.Context, m *entity.ChatMessage) error { return nil }
func (r *fakeChatMessageRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (r *fakeChatMessageRepo) DeleteUnscoped(ctx context.Context, id uuid.UUID) error  { return nil }
func (r *fakeChatMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}
func (r *fakeChatMessageRepo) DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error {
	return nil
}
func (r *fakeChatMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	return nil, nil
}
func (r *fakeChatMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return r.created, nil
}
func (r *fakeChatMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return r.existing, nil
}

type fakeUow struct {
	sessions *fakeChatSessionRepo
	messages *fakeChatMessageRepo

	began      bool
	committed  bool
	rolledBack bool
}

func (u *fakeUow) Begin(ctx context.Context) error { u.began = true; return nil }
func (u *fakeUow) Commit() error                   { u.committed = true; return nil }
func (u *fakeUow) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}
func (u *fakeUow) UserRepository() contract.UserRepository                 { return nil }
func (u *fakeUow) ChatSessionRepository() contract.ChatSessionRepository   { return u.sessions }
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository   { return u.messages }
func (u *fakeUow) NotificationRepository() repository.NotificationRepository { return nil }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type recordingPublisher struct {
	codes []string
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.codes = append(p.codes, event.EventType())
	return nil
}

func (p *recordingPublisher) published(code string) bool {
	for _, c := range p.codes {
		if c == code {
			return true
		}
	}
	return false
}

// cancelledProvider stands in for a model call that a newer message for
// the same session has already superseded.
type cancelledProvider struct{}

func (cancelledProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", llm.ErrCancelled
}
func (cancelledProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", llm.ErrCancelled
}

func newStubbedRouter() *router.Router {
	toolLog := stdlog.New(io.Discard, "", 0)
	searcher := search.NewAdapter(toolLog, nil)
	return router.New(
		"hunter2",
		weather.NewClientWithURLs(toolLog, "http://127.0.0.1:0", "http://127.0.0.1:0"),
		searcher,
		facts.NewLookup(nil, searcher, toolLog),
		stubs.NewWithDelay(0),
		toolLog,
	)
}

func newFakeChatService(t *testing.T, uow *fakeUow, pub *recordingPublisher, fb *fallback.Adapter) *assistantService {
	t.Helper()
	return &assistantService{
		uowFactory:      &fakeUowFactory{uow: uow},
		stateRepo:       memory.NewSessionStateRepository(),
		router:          newStubbedRouter(),
		fallback:        fb,
		publisher:       pub,
		logger:          logger.NewIsolatedLogger(t.TempDir() + "/assistant.log"),
		speechThreshold: 0.70,
		now:             time.Now,
	}
}

func TestFailedUserTurnPersistAbortsPass(t *testing.T) {
	userId := uuid.New()
	sessionId := uuid.New()
	uow := &fakeUow{
		sessions: &fakeChatSessionRepo{session: &entity.ChatSession{Id: sessionId, UserId: userId, Title: "Chat"}},
		messages: &fakeChatMessageRepo{existing: 1, createErr: errors.New("insert failed")},
	}
	pub := &recordingPublisher{}
	svc := newFakeChatService(t, uow, pub, nil)

	_, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          "good morning",
	})
	if err == nil {
		t.Fatal("expected error when the user turn cannot be stored")
	}
	if len(uow.messages.created) != 0 {
		t.Errorf("aborted pass stored %d turns, want none", len(uow.messages.created))
	}
	if uow.committed {
		t.Error("aborted pass must not commit")
	}
	if !uow.rolledBack {
		t.Error("aborted pass must roll back")
	}
	if !pub.published(EventAssistantError) {
		t.Errorf("expected %s event, got %v", EventAssistantError, pub.codes)
	}
}

func TestSupersededModelCallKeepsUserTurnWithoutReply(t *testing.T) {
	userId := uuid.New()
	sessionId := uuid.New()
	uow := &fakeUow{
		sessions: &fakeChatSessionRepo{session: &entity.ChatSession{Id: sessionId, UserId: userId, Title: "Dream journal"}},
		messages: &fakeChatMessageRepo{existing: 2},
	}
	pub := &recordingPublisher{}
	fb := fallback.NewAdapter(cancelledProvider{}, stdlog.New(io.Discard, "", 0))
	svc := newFakeChatService(t, uow, pub, fb)

	utterance := "I had a strange dream last night"
	resp, err := svc.SendChat(context.Background(), userId, &dto.SendChatRequest{
		ChatSessionId: sessionId,
		Chat:          utterance,
	})
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if resp.Mode != ModeSuperseded {
		t.Errorf("mode = %s, want %s", resp.Mode, ModeSuperseded)
	}
	if resp.Reply != nil {
		t.Errorf("superseded pass must not produce a reply, got %+v", resp.Reply)
	}
	if resp.Sent == nil || resp.Sent.Chat != utterance {
		t.Errorf("user turn missing from response: %+v", resp.Sent)
	}
	if !uow.committed {
		t.Error("user turn must be committed even when the model call is superseded")
	}
	if len(uow.messages.created) != 1 {
		t.Fatalf("stored %d turns, want the user turn only", len(uow.messages.created))
	}
	if uow.messages.created[0].Role != constant.ChatMessageRoleUser {
		t.Errorf("stored role = %s, want %s", uow.messages.created[0].Role, constant.ChatMessageRoleUser)
	}
}
