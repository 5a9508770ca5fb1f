package speech

import (
	"context"
	"testing"
	"time"
)

func TestQueueDeliversInOrder(t *testing.T) {
	q := NewQueue(nil)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Utterance, 4)
	if err := q.Consume(ctx, func(u Utterance) error {
		got <- u
		return nil
	}); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if err := q.Publish(Utterance{SessionID: "s1", Text: text, VoiceHints: DefaultVoiceHints()}); err != nil {
			t.Fatalf("Publish(%q): %v", text, err)
		}
	}

	for _, want := range texts {
		select {
		case u := <-got:
			if u.Text != want {
				t.Errorf("got %q, want %q", u.Text, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestDefaultVoiceHintsOrder(t *testing.T) {
	hints := DefaultVoiceHints()
	if len(hints) != 3 {
		t.Fatalf("hints = %v, want 3 entries", hints)
	}
	if hints[0] != "lang:en;gender:female" || hints[2] != "any" {
		t.Errorf("unexpected preference order: %v", hints)
	}
}
