package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/internal/websocket"
	"ai-assistant-be/pkg/assistant/fallback"
	"ai-assistant-be/pkg/assistant/router"
	"ai-assistant-be/pkg/events"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/speech"

	"github.com/google/uuid"
)

// Reply modes reported to the client.
const (
	ModeCanned     = "canned"
	ModeLLM        = "llm"
	ModeSuperseded = "superseded"
)

// IAssistantService is the conversational surface of the backend.
type IAssistantService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SendTranscript(ctx context.Context, userId uuid.UUID, request *dto.TranscriptRequest) (*dto.SendChatResponse, error)
	ClearHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
}

// RealtimePush is the slice of the websocket hub the assistant needs.
type RealtimePush interface {
	Push(userID uuid.UUID, eventType string, payload interface{})
}

// EventPublisher is the slice of the NATS publisher the assistant needs
// for toast-driving events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ErrSessionBusy rejects a send that arrives while the same session is
// still inside its routing pass. Waiting on the model does not count;
// that stage is governed by the fallback's cancel-and-replace rule.
var ErrSessionBusy = errors.New("session is busy processing another message")

type assistantService struct {
	uowFactory unitofwork.RepositoryFactory
	stateRepo  *memory.SessionStateRepository
	router     *router.Router
	fallback   *fallback.Adapter
	push       RealtimePush
	speech     *speech.Queue
	publisher  EventPublisher
	logger     logger.ILogger

	inflight        sync.Map // session id -> struct{}
	speechThreshold float64
	now             func() time.Time
}

func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	stateRepo *memory.SessionStateRepository,
	intentRouter *router.Router,
	fallbackAdapter *fallback.Adapter,
	push RealtimePush,
	speechQueue *speech.Queue,
	publisher EventPublisher,
	log logger.ILogger,
	speechThreshold float64,
) IAssistantService {
	return &assistantService{
		uowFactory:      uowFactory,
		stateRepo:       stateRepo,
		router:          intentRouter,
		fallback:        fallbackAdapter,
		push:            push,
		speech:          speechQueue,
		publisher:       publisher,
		logger:          log,
		speechThreshold: speechThreshold,
		now:             time.Now,
	}
}

// CreateSession opens a session and seeds the greeting as the first
// model turn, so a freshly loaded page already has something to show.
func (s *assistantService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now()

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     constant.DefaultSessionTitle,
		CreatedAt: now,
	}
	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          constant.GreetingMessage,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, EventSessionCreated, userId, "")
	s.logger.Info("AssistantService", "Session created", map[string]interface{}{"session_id": chatSession.Id, "user_id": userId})

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

func (s *assistantService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, sess := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        sess.Id,
			Title:     sess.Title,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		})
	}
	return response, nil
}

func (s *assistantService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			CreatedAt: msg.CreatedAt,
		})
	}
	return resp, nil
}

// SendChat runs one full conversational pass: persist the user turn,
// classify, produce a reply (canned or model), persist it, and fan the
// reply out to the websocket and the speech queue.
func (s *assistantService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if _, busy := s.inflight.LoadOrStore(request.ChatSessionId, struct{}{}); busy {
		return nil, ErrSessionBusy
	}
	released := false
	releasePass := func() {
		if !released {
			s.inflight.Delete(request.ChatSessionId)
			released = true
		}
	}
	defer releasePass()

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := s.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.ChatMessageRepository().Count(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
	)
	if err != nil {
		return nil, err
	}
	// Only the seeded greeting so far: this is the first real utterance
	// and it names the session.
	retitle := existing <= 1

	now := s.now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          request.Chat,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     now,
	}
	// The user turn has to land before anything else happens. If it
	// cannot be stored, the whole pass is abandoned.
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		s.logger.Error("AssistantService", "Failed to persist user turn, aborting pass", map[string]interface{}{"error": err, "session_id": request.ChatSessionId})
		s.publishEvent(ctx, EventAssistantError, userId, "")
		return nil, fmt.Errorf("persist user turn: %w", err)
	}

	if retitle {
		chatSession.Title = titleFromUtterance(request.Chat)
		updated := now
		chatSession.UpdatedAt = &updated
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return nil, err
		}
	}

	state := s.stateRepo.GetOrCreate(request.ChatSessionId.String(), userId.String())
	creatorBefore := state.CreatorMode

	result := s.router.Route(ctx, &router.Input{
		Utterance:  request.Chat,
		State:      state,
		Online:     !request.Offline,
		RecentLogs: s.recentLogs(),
	})
	s.stateRepo.Save(state)

	if state.CreatorMode != creatorBefore {
		code := EventCreatorModeOn
		if !state.CreatorMode {
			code = EventCreatorModeOff
		}
		s.publishEvent(ctx, code, userId, "")
	}

	mode := ModeCanned
	replyText := result.Reply
	if result.LLM != nil {
		// The routing pass itself is over; a newer send may now come in
		// and supersede the model call below.
		releasePass()

		mode = ModeLLM
		replyText, err = s.modelReply(ctx, uow, request.ChatSessionId, result.LLM, state.CreatorMode)
		if err != nil {
			if errors.Is(err, llm.ErrCancelled) {
				// A newer message for this session superseded us. Keep
				// the user turn, produce no reply.
				if err := uow.Commit(); err != nil {
					return nil, err
				}
				return &dto.SendChatResponse{
					ChatSessionId:    chatSession.Id,
					ChatSessionTitle: chatSession.Title,
					Mode:             ModeSuperseded,
					Sent:             toResponseChat(&userMessage),
				}, nil
			}

			var modelErr *llm.ModelError
			if errors.As(err, &modelErr) {
				s.logger.Error("AssistantService", "Model error, answering with apology", map[string]interface{}{"error": modelErr.Error(), "provider": modelErr.Provider})
				s.publishEvent(ctx, EventModelError, userId, "")
				replyText = "My language model is having trouble right now, so I can't give you a full answer. The built-in skills still work though — try the weather, the time, or some quick math."
			} else {
				return nil, err
			}
		}
	}

	replyMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          replyText,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     s.now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, &replyMessage); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.deliver(userId, request.ChatSessionId, &replyMessage)

	return &dto.SendChatResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Mode:             mode,
		Sent:             toResponseChat(&userMessage),
		Reply:            toResponseChat(&replyMessage),
	}, nil
}

// SendTranscript feeds a speech-recognition result into the same pass as
// typed chat, after the confidence check. Low-confidence transcripts are
// answered with an ephemeral re-prompt and never persisted.
func (s *assistantService) SendTranscript(ctx context.Context, userId uuid.UUID, request *dto.TranscriptRequest) (*dto.SendChatResponse, error) {
	if request.Confidence < s.speechThreshold {
		s.logger.Info("AssistantService", "Transcript below confidence threshold", map[string]interface{}{
			"confidence": request.Confidence,
			"threshold":  s.speechThreshold,
		})

		replyText := "Sorry, I didn't quite catch that. Could you say it again?"
		s.speakReply(userId, request.ChatSessionId, replyText)
		return &dto.SendChatResponse{
			ChatSessionId: request.ChatSessionId,
			Mode:          ModeCanned,
			Reply: &dto.SendChatResponseChat{
				Id:        uuid.New(),
				Chat:      replyText,
				Role:      constant.ChatMessageRoleModel,
				CreatedAt: s.now(),
			},
		}, nil
	}

	return s.SendChat(ctx, userId, &dto.SendChatRequest{
		ChatSessionId: request.ChatSessionId,
		Chat:          request.Transcript,
		Offline:       request.Offline,
	})
}

// ClearHistory wipes a conversation back to the greeting and resets the
// volatile session state, so creator mode and interests do not survive.
func (s *assistantService) ClearHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := s.verifySession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}

	now := s.now()
	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          constant.GreetingMessage,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: sessionId,
		CreatedAt:     now,
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return err
	}

	chatSession.Title = constant.DefaultSessionTitle
	chatSession.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.stateRepo.Reset(sessionId.String())
	s.publishEvent(ctx, EventSessionCleared, userId, "")
	return nil
}

func (s *assistantService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.stateRepo.Reset(request.ChatSessionId.String())
	return nil
}

// --- internals ---

func (s *assistantService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return sess, nil
}

// modelReply resolves an LLM routing result into text. When the request
// carries history, the persisted conversation (minus the greeting) is
// replayed to the model.
func (s *assistantService) modelReply(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, req *router.LLMRequest, creatorMode bool) (string, error) {
	var history []llm.Message
	if req.UseHistory {
		chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: sessionId},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return "", err
		}
		for _, msg := range chatMessages {
			history = append(history, llm.Message{Role: msg.Role, Content: msg.Chat})
		}
		// The latest user turn is already persisted; the adapter appends
		// the utterance itself.
		if n := len(history); n > 0 && history[n-1].Role == constant.ChatMessageRoleUser {
			history = history[:n-1]
		}
	}

	return s.fallback.Reply(ctx, sessionId.String(), history, req.Instruction, creatorMode)
}

// deliver pushes the reply over the websocket and queues it for speech.
func (s *assistantService) deliver(userId uuid.UUID, sessionId uuid.UUID, reply *entity.ChatMessage) {
	if s.push != nil {
		s.push.Push(userId, websocket.EventChatReply, toResponseChat(reply))
	}
	s.speakReply(userId, sessionId, reply.Chat)
}

func (s *assistantService) speakReply(userId uuid.UUID, sessionId uuid.UUID, text string) {
	if s.speech == nil {
		return
	}
	err := s.speech.Publish(speech.Utterance{
		SessionID:  sessionId.String(),
		UserID:     userId.String(),
		Text:       text,
		VoiceHints: speech.DefaultVoiceHints(),
	})
	if err != nil {
		s.logger.Warn("AssistantService", "Failed to enqueue speech", map[string]interface{}{"error": err})
		s.publishEvent(context.Background(), EventAssistantError, userId, "(speech playback unavailable)")
	}
}

func (s *assistantService) publishEvent(ctx context.Context, code string, userId uuid.UUID, detail string) {
	if s.publisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: code,
		Data: map[string]interface{}{
			"user_id": userId.String(),
			"detail":  detail,
		},
		OccurredAt: s.now(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("AssistantService", "Event publish failed", map[string]interface{}{"error": err, "code": code})
	}
}

func (s *assistantService) recentLogs() []router.RecentLog {
	entries := s.logger.Recent(15)
	logs := make([]router.RecentLog, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, router.RecentLog{
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Message:   e.Message,
		})
	}
	return logs
}

func toResponseChat(msg *entity.ChatMessage) *dto.SendChatResponseChat {
	return &dto.SendChatResponseChat{
		Id:        msg.Id,
		Chat:      msg.Chat,
		Role:      msg.Role,
		CreatedAt: msg.CreatedAt,
	}
}

func titleFromUtterance(utterance string) string {
	title := strings.TrimSpace(utterance)
	if title == "" {
		return constant.DefaultSessionTitle
	}
	if len(title) > constant.SessionTitleMaxLen {
		title = strings.TrimSpace(title[:constant.SessionTitleMaxLen]) + "..."
	}
	return title
}
