package speech

// The browser performs the actual synthesis and recognition through the
// Web Speech API; this package carries the payloads and the server-side
// playback queue.

// Utterance is one piece of text the browser should speak aloud.
type Utterance struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	// VoiceHints is an ordered preference list. The browser walks it and
	// uses the first hint that matches an installed voice, falling back
	// to whatever voice it has.
	VoiceHints []string `json:"voice_hints"`
}

// DefaultVoiceHints is the stock preference order: an English female
// voice first, then any English voice, then anything at all.
func DefaultVoiceHints() []string {
	return []string{
		"lang:en;gender:female",
		"lang:en",
		"any",
	}
}
