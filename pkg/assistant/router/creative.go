package router

import (
	"context"
	"fmt"
	"strings"
)

// Creative prefixes map straight to a composed model instruction. These
// requests skip the conversation history so a drafting task is not
// colored by earlier chit-chat.
var creativePrefixes = []struct {
	prefix   string
	template string
}{
	{"draft an email about", "Draft a short, professional email about: %s"},
	{"write an email about", "Draft a short, professional email about: %s"},
	{"write a poem about", "Write a short poem about: %s"},
	{"summarize this", "Summarize the following text in a few sentences: %s"},
	{"brainstorm ideas for", "Brainstorm a concise list of ideas for: %s"},
	{"write a story about", "Write a very short story about: %s"},
	{"write a haiku about", "Write a haiku about: %s"},
}

func classifyCreativeWriting(_ context.Context, _ *Router, in *Input) *Result {
	for _, c := range creativePrefixes {
		idx := strings.Index(in.lower, c.prefix)
		if idx == -1 {
			continue
		}
		subject := strings.Trim(in.Utterance[idx+len(c.prefix):], " ?.!")
		if subject == "" {
			subject = "a subject of your choosing"
		}
		return &Result{LLM: &LLMRequest{
			Instruction: fmt.Sprintf(c.template, subject),
			UseHistory:  false,
		}}
	}
	return nil
}

var speculativePrefixes = []string{
	"predict human behavior",
	"forecast trends for",
	"predict the future of",
	"what will happen to",
}

// classifySpeculative wraps crystal-ball questions in an instruction that
// forces the answer to be framed as informed speculation.
func classifySpeculative(_ context.Context, _ *Router, in *Input) *Result {
	if hasAnyPrefix(in.lower, speculativePrefixes) == "" {
		return nil
	}
	return &Result{LLM: &LLMRequest{
		Instruction: fmt.Sprintf(
			"The user asked: %q. Give a thoughtful, clearly speculative answer. Open by saying nobody can predict this with certainty, then offer two or three plausible scenarios grounded in current knowledge.",
			in.Utterance,
		),
		UseHistory: false,
	}}
}

// classifyGautengNews answers the local-news ask with a fixed pointer to
// real regional outlets rather than pretending to have a feed.
func classifyGautengNews(_ context.Context, _ *Router, in *Input) *Result {
	if !strings.Contains(in.lower, "gauteng news") {
		return nil
	}
	return reply("I don't have a live Gauteng news feed. For local coverage I'd point you at The Sowetan, EWN, or News24's Gauteng section — they stay current in a way I can't.")
}

var newsPhrases = []string{
	"news",
	"latest headlines",
	"what's happening",
	"whats happening",
	"current events",
}

var newsTopicPattern = "news about "

// classifyNews is the broadest news tier and runs last so that more
// specific phrasings (top stories, gauteng news) are already taken.
func classifyNews(ctx context.Context, r *Router, in *Input) *Result {
	if !containsAny(in.lower, newsPhrases) {
		return nil
	}
	if !in.Online {
		return reply("I can't fetch news while you're offline. Reconnect and ask me again.")
	}

	topic := ""
	if idx := strings.Index(in.lower, newsTopicPattern); idx != -1 {
		topic = strings.Trim(in.lower[idx+len(newsTopicPattern):], " ?.!")
	}

	return reply(r.stubs.News(ctx, topic))
}
