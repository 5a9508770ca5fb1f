package fallback

import (
	"fmt"
	"strings"
	"time"
)

// Persona facts embedded in every system instruction. The assistant keeps
// one identity across the canned identity answers (router) and the model
// fallback, so the two paths never contradict each other.
const (
	AssistantName    = "Nova"
	CreatorName      = "Katlego"
	AssistantOrigin  = "Johannesburg, Gauteng, South Africa"
	AssistantVersion = "2.1"
	AssistantTraits  = "helpful, direct, a little playful"
)

// SystemInstruction builds the persona prompt for the completion service.
// The current wall-clock time is embedded so date/time answers from the
// model agree with the router's own clock answers.
func SystemInstruction(now time.Time, creatorMode bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a conversational assistant created by %s.\n", AssistantName, CreatorName)
	fmt.Fprintf(&b, "You are version %s and your personality is %s.\n", AssistantVersion, AssistantTraits)
	fmt.Fprintf(&b, "You come from %s.\n", AssistantOrigin)
	fmt.Fprintf(&b, "The current local date is %s, the day is %s, and the time is %s.\n",
		now.Format("January 2, 2006"), now.Format("Monday"), now.Format("3:04 PM"))
	b.WriteString("Answer concisely. If you do not know something, say so instead of inventing details.\n")

	if creatorMode {
		fmt.Fprintf(&b, "The person you are talking to has authenticated as %s, your creator. ", CreatorName)
		b.WriteString("You may acknowledge that openly, and special diagnostic commands are available to them.\n")
	}

	return b.String()
}
