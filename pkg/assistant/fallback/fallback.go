package fallback

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"ai-assistant-be/pkg/llm"
)

// Adapter is the general LLM fallback: the reply of last resort when no
// classifier claimed the utterance, and the engine behind the constructed
// creative/speculative instructions.
//
// It enforces single-flight-per-session, latest-wins: issuing a new call
// while one is outstanding for the same session cancels the old one. The
// superseded call resolves with llm.ErrCancelled, which callers discard
// without producing a reply.
type Adapter struct {
	provider llm.LLMProvider
	logger   *log.Logger
	now      func() time.Time

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight identifies one outstanding call so a finished call only clears
// its own slot, never a successor's.
type flight struct {
	cancel context.CancelFunc
}

func NewAdapter(provider llm.LLMProvider, logger *log.Logger) *Adapter {
	return &Adapter{
		provider: provider,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]*flight),
	}
}

// Reply sends the conversation plus the new utterance to the model under
// the persona system instruction. history may be nil for constructed
// instructions that should not see the conversation.
func (a *Adapter) Reply(ctx context.Context, sessionID string, history []llm.Message, utterance string, creatorMode bool) (string, error) {
	callCtx, cancel := context.WithCancel(ctx)
	f := &flight{cancel: cancel}

	a.mu.Lock()
	if prev, ok := a.inflight[sessionID]; ok {
		prev.cancel()
		a.logger.Printf("[FALLBACK] superseding in-flight call for session %s", sessionID)
	}
	a.inflight[sessionID] = f
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		// Only clear the slot if it is still ours; a newer call may have
		// replaced it already.
		if a.inflight[sessionID] == f {
			delete(a.inflight, sessionID)
		}
		a.mu.Unlock()
		cancel()
	}()

	messages := filterHistory(history)
	messages = append(messages, llm.Message{Role: "user", Content: utterance})

	system := SystemInstruction(a.now(), creatorMode)

	out, err := a.provider.Chat(callCtx, messages, llm.WithSystem(system))
	if err != nil {
		if errors.Is(err, llm.ErrCancelled) || errors.Is(callCtx.Err(), context.Canceled) {
			a.logger.Printf("[FALLBACK] call for session %s cancelled", sessionID)
			return "", llm.ErrCancelled
		}
		return "", err
	}

	return stripEmphasis(out), nil
}

// filterHistory drops malformed turns: empty content or roles the
// completion service would reject.
func filterHistory(history []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case "user", "assistant", "model":
			out = append(out, msg)
		}
	}
	return out
}

// stripEmphasis removes markdown emphasis characters from model output so
// the text-to-speech layer does not read them aloud.
func stripEmphasis(text string) string {
	return strings.NewReplacer("**", "", "*", "", "__", "", "_", "").Replace(text)
}
