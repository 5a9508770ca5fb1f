package stubs

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStubsMentionSubject(t *testing.T) {
	s := NewWithDelay(0)
	ctx := context.Background()

	if got := s.Translate(ctx, "hello world", "fr"); !strings.Contains(got, "hello world") || !strings.Contains(got, "fr") {
		t.Errorf("Translate reply missing subject: %q", got)
	}
	if got := s.News(ctx, "rugby"); !strings.Contains(got, "rugby") {
		t.Errorf("News reply missing topic: %q", got)
	}
	if got := s.News(ctx, ""); strings.Contains(got, "\"\"") {
		t.Errorf("News reply with empty topic renders empty quotes: %q", got)
	}
	if got := s.SocialLookup(ctx, "Thabo"); !strings.Contains(got, "Thabo") {
		t.Errorf("SocialLookup reply missing name: %q", got)
	}
}

func TestCancelledContextSkipsDelay(t *testing.T) {
	s := NewWithDelay(5 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	s.Translate(ctx, "hi", "de")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled context still waited %v", elapsed)
	}
}
