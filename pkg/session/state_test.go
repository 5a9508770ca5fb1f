package session

import "testing"

func TestGateTransitions(t *testing.T) {
	s := New("sess-1", "user-1")
	if s.Gate != GateClosed || s.CreatorMode {
		t.Fatalf("initial state = gate %s creator %v", s.Gate, s.CreatorMode)
	}

	s.EnterAwaitingPassword()
	if s.Gate != GateAwaitingPassword {
		t.Errorf("gate = %s, want %s", s.Gate, GateAwaitingPassword)
	}

	s.EnterCreatorMode()
	if s.Gate != GateClosed {
		t.Errorf("creator mode must close the gate, gate = %s", s.Gate)
	}
	if !s.CreatorMode {
		t.Error("CreatorMode = false after EnterCreatorMode")
	}

	s.Revert()
	if s.CreatorMode || s.Gate != GateClosed {
		t.Errorf("after revert: gate %s creator %v", s.Gate, s.CreatorMode)
	}
}

func TestAddInterestsDeduplicates(t *testing.T) {
	s := New("sess-1", "user-1")
	s.AddInterests([]string{"football", "space", ""})
	s.AddInterests([]string{"Football", "cooking"})

	want := []string{"football", "space", "cooking"}
	if len(s.Interests) != len(want) {
		t.Fatalf("interests = %v, want %v", s.Interests, want)
	}
	for i := range want {
		if s.Interests[i] != want[i] {
			t.Errorf("interests[%d] = %s, want %s", i, s.Interests[i], want[i])
		}
	}
}

func TestRevertKeepsInterests(t *testing.T) {
	s := New("sess-1", "user-1")
	s.AddInterests([]string{"football"})
	s.EnterCreatorMode()
	s.Revert()

	if len(s.Interests) != 1 {
		t.Errorf("interests lost on revert: %v", s.Interests)
	}
}
