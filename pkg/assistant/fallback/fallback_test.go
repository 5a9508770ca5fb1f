package fallback

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"ai-assistant-be/pkg/llm"
)

// blockingProvider answers immediately or hangs until cancelled,
// depending on the reply queued for each call.
type blockingProvider struct {
	calls   chan []llm.Message
	release chan string
}

func newBlockingProvider() *blockingProvider {
	return &blockingProvider{
		calls:   make(chan []llm.Message, 8),
		release: make(chan string, 8),
	}
}

func (p *blockingProvider) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	p.calls <- history
	select {
	case reply := <-p.release:
		return reply, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *blockingProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "", 0)
}

func TestReplyStripsEmphasis(t *testing.T) {
	p := newBlockingProvider()
	p.release <- "**Bold** and *italic* and __underlined__"

	a := NewAdapter(p, testLogger())
	got, err := a.Reply(context.Background(), "s1", nil, "hello", false)
	if err != nil {
		t.Fatalf("Reply error: %v", err)
	}
	if got != "Bold and italic and underlined" {
		t.Errorf("got %q", got)
	}
}

func TestReplyFiltersMalformedHistory(t *testing.T) {
	p := newBlockingProvider()
	p.release <- "ok"

	history := []llm.Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: ""},        // empty, dropped
		{Role: "system", Content: "sneaky"},     // wrong role, dropped
		{Role: "assistant", Content: "second"},
	}

	a := NewAdapter(p, testLogger())
	if _, err := a.Reply(context.Background(), "s1", history, "third", false); err != nil {
		t.Fatalf("Reply error: %v", err)
	}

	sent := <-p.calls
	if len(sent) != 3 {
		t.Fatalf("sent %d messages, want 3: %+v", len(sent), sent)
	}
	if sent[2].Content != "third" || sent[2].Role != "user" {
		t.Errorf("last message = %+v", sent[2])
	}
}

// scriptedProvider blocks on utterances marked "slow" until its context is
// cancelled, and answers everything else immediately.
type scriptedProvider struct {
	started chan string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	last := history[len(history)-1].Content
	p.started <- last
	if strings.Contains(last, "slow") {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "answer: " + last, nil
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestSecondCallCancelsFirst(t *testing.T) {
	p := &scriptedProvider{started: make(chan string, 8)}
	a := NewAdapter(p, testLogger())

	firstDone := make(chan error, 1)
	go func() {
		_, err := a.Reply(context.Background(), "s1", nil, "slow question", false)
		firstDone <- err
	}()

	// Wait until the first call is actually inside the provider.
	<-p.started

	got, err := a.Reply(context.Background(), "s1", nil, "second question", false)
	if err != nil {
		t.Fatalf("second Reply error: %v", err)
	}
	if got != "answer: second question" {
		t.Errorf("second reply = %q", got)
	}

	select {
	case err := <-firstDone:
		if !errors.Is(err, llm.ErrCancelled) {
			t.Errorf("first call error = %v, want ErrCancelled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first call never resolved")
	}
}

func TestDistinctSessionsDoNotCancelEachOther(t *testing.T) {
	p := &scriptedProvider{started: make(chan string, 8)}
	a := NewAdapter(p, testLogger())

	parent, stop := context.WithCancel(context.Background())
	defer stop()

	done := make(chan error, 1)
	go func() {
		_, err := a.Reply(parent, "session-a", nil, "slow q", false)
		done <- err
	}()
	<-p.started

	if _, err := a.Reply(context.Background(), "session-b", nil, "q", false); err != nil {
		t.Fatalf("session-b Reply error: %v", err)
	}

	select {
	case err := <-done:
		t.Fatalf("session-a resolved unexpectedly: %v", err)
	case <-time.After(100 * time.Millisecond):
		// still pending, as it should be
	}

	stop()
	<-done
}

func TestSystemInstructionMentionsCreatorModeOnlyWhenActive(t *testing.T) {
	now := time.Date(2025, time.March, 3, 14, 30, 0, 0, time.UTC)

	plain := SystemInstruction(now, false)
	if strings.Contains(plain, "authenticated as") {
		t.Error("anonymous instruction leaks creator capability text")
	}
	if !strings.Contains(plain, AssistantName) || !strings.Contains(plain, CreatorName) {
		t.Error("persona names missing from instruction")
	}
	if !strings.Contains(plain, "March 3, 2025") || !strings.Contains(plain, "Monday") {
		t.Errorf("instruction missing embedded date: %q", plain)
	}

	elevated := SystemInstruction(now, true)
	if !strings.Contains(elevated, "authenticated as "+CreatorName) {
		t.Error("creator-mode instruction missing capability text")
	}
}
