package session

import "strings"

// Gate values for the creator password gate.
const (
	GateClosed           = "CLOSED"
	GateAwaitingPassword = "AWAITING_PASSWORD"
)

// State is the volatile assistant state for one active chat session.
// It is held in memory only and never persisted; the router is the only
// component allowed to mutate it.
type State struct {
	ID     string `json:"id"` // ChatSessionID
	UserID string `json:"user_id"`

	// Gate tracks the creator password handshake. While AWAITING_PASSWORD,
	// every incoming utterance is consumed as a password attempt.
	Gate string `json:"gate"`

	// CreatorMode unlocks the creator-only commands. Invariant: when
	// CreatorMode is true, Gate is CLOSED.
	CreatorMode bool `json:"creator_mode"`

	// Interests declared by the user ("my interests are ..."), in the
	// order they were given. Grows until the session is cleared.
	Interests []string `json:"interests"`
}

// New returns the initial anonymous state for a session.
func New(sessionID, userID string) *State {
	return &State{
		ID:     sessionID,
		UserID: userID,
		Gate:   GateClosed,
	}
}

// EnterAwaitingPassword opens the password gate.
func (s *State) EnterAwaitingPassword() {
	s.Gate = GateAwaitingPassword
	s.CreatorMode = false
}

// EnterCreatorMode closes the gate and elevates the session.
func (s *State) EnterCreatorMode() {
	s.Gate = GateClosed
	s.CreatorMode = true
}

// Revert returns the session to the anonymous state. Interests survive;
// they are conversation memory, not a privilege.
func (s *State) Revert() {
	s.Gate = GateClosed
	s.CreatorMode = false
}

// AddInterests appends interests, skipping duplicates case-insensitively.
func (s *State) AddInterests(items []string) {
	for _, item := range items {
		if item == "" {
			continue
		}
		dup := false
		for _, existing := range s.Interests {
			if strings.EqualFold(existing, item) {
				dup = true
				break
			}
		}
		if !dup {
			s.Interests = append(s.Interests, item)
		}
	}
}
