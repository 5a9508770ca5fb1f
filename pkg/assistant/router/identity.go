package router

import (
	"context"
	"fmt"
	"strings"

	"ai-assistant-be/pkg/assistant/fallback"
)

var namePhrases = []string{
	"what is your name",
	"what's your name",
	"who are you",
}

var creatorPhrases = []string{
	"who created you",
	"who made you",
	"who built you",
	"who is your creator",
	"who developed you",
}

var originPhrases = []string{
	"where are you from",
	"where do you come from",
	"where were you made",
}

// classifyIdentity answers the canned persona questions. This tier fires
// even when the utterance would also match lower tiers ("what is your
// name, search for cats" is an identity question, not a search).
func classifyIdentity(_ context.Context, _ *Router, in *Input) *Result {
	switch {
	case containsAny(in.lower, namePhrases):
		return reply(fmt.Sprintf("My name is %s. I'm a conversational assistant — ask me about the weather, math, conversions, or anything else.", fallback.AssistantName))

	case containsAny(in.lower, creatorPhrases):
		return reply(fmt.Sprintf("I was created by %s.", fallback.CreatorName))

	case containsAny(in.lower, originPhrases):
		return reply(fmt.Sprintf("I'm from %s — at least, that's where my code was written.", fallback.AssistantOrigin))
	}

	return nil
}

// classifyInternetExplorer catches the literal "search on internet
// explorer" phrase before generic search classification would grab it.
func classifyInternetExplorer(_ context.Context, _ *Router, in *Input) *Result {
	if !strings.Contains(in.lower, "search on internet explorer") {
		return nil
	}
	return reply("Internet Explorer is a web browser, not a search engine — I can't search \"on\" it. I can search Google or DuckDuckGo for you though; just say \"search on google for ...\" or \"search on duckduckgo for ...\".")
}
