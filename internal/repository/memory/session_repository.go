package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-assistant-be/pkg/session"
)

// SessionStateRepository holds the volatile per-session assistant state
// (password gate, creator mode, interests). It is memory-only on purpose:
// an expired or restarted session always comes back anonymous.
type SessionStateRepository struct {
	cache *cache.Cache
}

func NewSessionStateRepository() *SessionStateRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionStateRepository{
		cache: c,
	}
}

// GetOrCreate returns the live state for a session, creating the initial
// anonymous state on first sight. Each Get refreshes the expiration so an
// active conversation never loses its state mid-chat.
func (r *SessionStateRepository) GetOrCreate(sessionID, userID string) *session.State {
	if x, found := r.cache.Get(sessionID); found {
		state := x.(*session.State)
		r.cache.Set(sessionID, state, cache.DefaultExpiration)
		return state
	}

	state := session.New(sessionID, userID)
	r.cache.Set(sessionID, state, cache.DefaultExpiration)
	return state
}

func (r *SessionStateRepository) Save(state *session.State) {
	r.cache.Set(state.ID, state, cache.DefaultExpiration)
}

// Reset drops the state so the next message starts from the anonymous
// default. Used when the user clears a conversation.
func (r *SessionStateRepository) Reset(sessionID string) {
	r.cache.Delete(sessionID)
}
