package stubs

import (
	"context"
	"fmt"
	"time"
)

// The stub adapters answer for integrations that are deliberately not
// built (translation, live news, social lookup). They simulate realistic
// latency so the UI's loading indicator behaves the same as for real
// tools, then return a fixed explanation.

const defaultDelay = 1700 * time.Millisecond

type Stubs struct {
	delay time.Duration
}

func New() *Stubs {
	return &Stubs{delay: defaultDelay}
}

// NewWithDelay keeps tests fast.
func NewWithDelay(delay time.Duration) *Stubs {
	return &Stubs{delay: delay}
}

func (s *Stubs) wait(ctx context.Context) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
}

// Translate explains that no translation backend is wired up.
func (s *Stubs) Translate(ctx context.Context, text, targetLang string) string {
	s.wait(ctx)
	return fmt.Sprintf(
		"I can't translate \"%s\" to \"%s\" yet — translation needs a dedicated backend integration that isn't part of this assistant. A service like Google Translate or DeepL would have to be wired in first.",
		text, targetLang,
	)
}

// News explains that no live news feed is wired up.
func (s *Stubs) News(ctx context.Context, topic string) string {
	s.wait(ctx)
	if topic != "" {
		return fmt.Sprintf(
			"I don't have a live news feed for \"%s\". Real headlines need a news API integration that isn't part of this assistant, so I'd rather say so than make stories up.",
			topic,
		)
	}
	return "I don't have access to live news. Real headlines need a news API integration that isn't part of this assistant, so I'd rather say so than make stories up."
}

// SocialLookup explains why the assistant does not search people on
// social platforms.
func (s *Stubs) SocialLookup(ctx context.Context, personName string) string {
	s.wait(ctx)
	return fmt.Sprintf(
		"I can't look up \"%s\" on social media. Searching for people that way raises privacy concerns, and the platforms don't offer public APIs for it, so this assistant doesn't support it.",
		personName,
	)
}
