package logger

import (
	"fmt"
	"testing"
)

func TestLogRingOldestFirst(t *testing.T) {
	r := newLogRing()
	r.append(LogEntry{Message: "first"})
	r.append(LogEntry{Message: "second"})
	r.append(LogEntry{Message: "third"})

	got := r.recent(2)
	if len(got) != 2 {
		t.Fatalf("recent(2) returned %d entries", len(got))
	}
	if got[0].Message != "second" || got[1].Message != "third" {
		t.Errorf("recent(2) = [%s, %s], want [second, third]", got[0].Message, got[1].Message)
	}
}

func TestLogRingFewerThanRequested(t *testing.T) {
	r := newLogRing()
	r.append(LogEntry{Message: "only"})

	got := r.recent(15)
	if len(got) != 1 {
		t.Fatalf("recent(15) returned %d entries, want 1", len(got))
	}
	if got[0].Message != "only" {
		t.Errorf("recent(15)[0] = %s, want only", got[0].Message)
	}
}

func TestLogRingWraparound(t *testing.T) {
	r := newLogRing()
	total := ringCapacity + 5
	for i := 0; i < total; i++ {
		r.append(LogEntry{Message: fmt.Sprintf("entry-%d", i)})
	}

	got := r.recent(10)
	if len(got) != 10 {
		t.Fatalf("recent(10) returned %d entries", len(got))
	}
	for i, e := range got {
		want := fmt.Sprintf("entry-%d", total-10+i)
		if e.Message != want {
			t.Errorf("recent(10)[%d] = %s, want %s", i, e.Message, want)
		}
	}
}

func TestZapLoggerRetainsEntries(t *testing.T) {
	l := NewIsolatedLogger(t.TempDir() + "/test.log")
	l.Info("TestModule", "server started", nil)
	l.Warn("TestModule", "slow response", map[string]interface{}{"ms": 900})

	got := l.Recent(5)
	if len(got) != 2 {
		t.Fatalf("Recent(5) returned %d entries, want 2", len(got))
	}
	if got[0].Level != "INFO" || got[0].Message != "server started" {
		t.Errorf("first entry = %s %q", got[0].Level, got[0].Message)
	}
	if got[1].Level != "WARN" || got[1].Module != "TestModule" {
		t.Errorf("second entry = %s module %q", got[1].Level, got[1].Module)
	}
}
