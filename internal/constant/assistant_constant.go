package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// GreetingMessage opens every brand-new chat session. It is persisted
	// as the first model turn so reloading the page replays it.
	GreetingMessage = "Hi, I'm Nova! Ask me about the weather, the time, quick math and conversions, or anything else on your mind."

	// DefaultSessionTitle holds until the first user utterance arrives;
	// the session is then retitled from that utterance.
	DefaultSessionTitle = "New conversation"

	// SessionTitleMaxLen caps titles derived from the first utterance.
	SessionTitleMaxLen = 48
)
