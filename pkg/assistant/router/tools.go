package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"ai-assistant-be/pkg/assistant/calc"
	"ai-assistant-be/pkg/tools/search"
)

var weatherPhrases = []string{
	"weather",
	"temperature",
	"forecast",
	"how hot",
	"how cold",
	"climate",
}

var locationPattern = regexp.MustCompile(`\b(?:in|for|at)\s+([a-zA-Z][a-zA-Z\s'-]*?)[?.!]*$`)

// classifyWeather extracts a trailing "in/for/at <place>" location and
// hands it to the weather adapter. Metric only, online only.
func classifyWeather(ctx context.Context, r *Router, in *Input) *Result {
	if !containsAny(in.lower, weatherPhrases) {
		return nil
	}
	if !in.Online {
		return reply("I can't check the weather while you're offline. Reconnect and ask me again.")
	}

	location := "your current location"
	if m := locationPattern.FindStringSubmatch(in.lower); m != nil {
		location = strings.TrimSpace(m[1])
	}

	return reply(r.weather.Current(ctx, location))
}

// classifyCalculator delegates to the evaluator, passing through when it
// declines so later classifiers still get a chance.
func classifyCalculator(_ context.Context, _ *Router, in *Input) *Result {
	if out, ok := calc.Evaluate(in.Utterance); ok {
		return reply(out)
	}
	return nil
}

var translatePattern = regexp.MustCompile(`translate\s+(.+?)\s+to\s+([a-z]{2})\b`)

// classifyTranslate matches "translate <text> to <2-letter code>". A
// translate request without a usable language code gets a specify prompt
// instead of passing through.
func classifyTranslate(ctx context.Context, r *Router, in *Input) *Result {
	if !strings.Contains(in.lower, "translate") {
		return nil
	}
	if !in.Online {
		return reply("Translation needs a network connection, and you're offline right now.")
	}

	m := translatePattern.FindStringSubmatch(in.lower)
	if m == nil {
		return reply("Please tell me the target language as a two-letter code, like \"translate hello to fr\".")
	}

	return reply(r.stubs.Translate(ctx, m[1], m[2]))
}

// numericFactPhrases is the static vocabulary of factual-question
// prefixes that route through the fact engine. It is configuration, not
// something learned at runtime.
var numericFactPhrases = []string{
	"how many",
	"how much",
	"how far",
	"how old",
	"how tall",
	"how deep",
	"how long is",
	"how fast",
	"what is the population of",
	"what is the distance",
	"distance from",
	"distance between",
	"when was",
	"when did",
	"who was",
	"square root of",
	"percent of",
	"what is the capital of",
	"capital of",
	"speed of",
	"boiling point of",
	"melting point of",
}

// classifyNumericFact routes factual questions to the fact engine with a
// search fallback. With no engine configured the tier is skipped entirely
// and the search tier picks the question up.
func classifyNumericFact(ctx context.Context, r *Router, in *Input) *Result {
	if !containsAny(in.lower, numericFactPhrases) {
		return nil
	}
	if !in.Online {
		return reply("I need a network connection to look that up, and you're offline right now.")
	}

	if out, ok := r.facts.Run(ctx, in.Utterance); ok {
		return reply(out)
	}
	return nil
}

var searchTriggerPhrases = []string{
	"search for",
	"search the web",
	"look up",
	"tell me about",
	"what is the",
	"top stories",
	"search on google",
	"search on duckduckgo",
}

var socialPlatformPhrases = []string{
	"on instagram",
	"on facebook",
	"on x",
	"on twitter",
	"on social media",
}

var searchQueryPattern = regexp.MustCompile(`(?:search (?:on (?:google|duckduckgo) )?for|search the web for|look up|tell me about)\s+(.+)`)

// classifyWebSearch handles general search requests, picking the engine
// from an explicit "search on <engine>" phrase and defaulting to Google.
// Social-platform lookups are left for the next tier.
func classifyWebSearch(ctx context.Context, r *Router, in *Input) *Result {
	if !containsAny(in.lower, searchTriggerPhrases) {
		return nil
	}
	if containsAny(in.lower, socialPlatformPhrases) {
		return nil
	}
	if !in.Online {
		return reply("I can't search the web while you're offline. Reconnect and I'll look that up.")
	}

	engine := search.EngineGoogle
	if strings.Contains(in.lower, "duckduckgo") {
		engine = search.EngineDuckDuckGo
	}

	query := in.lower
	if m := searchQueryPattern.FindStringSubmatch(in.lower); m != nil {
		query = m[1]
	} else {
		for _, prefix := range []string{"what is the ", "top stories about ", "top stories on "} {
			if strings.HasPrefix(query, prefix) {
				query = strings.TrimPrefix(query, prefix)
				break
			}
		}
	}
	query = strings.Trim(query, " ?.!")

	return reply(r.searcher.Run(ctx, query, engine))
}

var socialVerbPhrases = []string{
	"search",
	"find",
	"look up",
}

var socialNamePattern = regexp.MustCompile(`(?:search for|search|find|look up)\s+(.+?)\s+on\s+(?:instagram|facebook|x|twitter|social media)`)

// classifySocialLookup extracts the person's name from "find <name> on
// <platform>" requests and answers with the privacy stub.
func classifySocialLookup(ctx context.Context, r *Router, in *Input) *Result {
	if !containsAny(in.lower, socialVerbPhrases) || !containsAny(in.lower, socialPlatformPhrases) {
		return nil
	}

	name := "that person"
	if m := socialNamePattern.FindStringSubmatch(in.lower); m != nil {
		name = strings.TrimSpace(m[1])
	}

	return reply(r.stubs.SocialLookup(ctx, name))
}

// classifyTrends searches for trends in an explicit topic, or in one of
// the user's stored interests when the topic is left out.
func classifyTrends(ctx context.Context, r *Router, in *Input) *Result {
	trendsIdx := strings.Index(in.lower, "what are the trends in ")
	insights := strings.Contains(in.lower, "give me insights")
	if trendsIdx == -1 && !insights {
		return nil
	}

	var topic string
	if trendsIdx != -1 {
		topic = strings.Trim(in.lower[trendsIdx+len("what are the trends in "):], " ?.!")
	} else if len(in.State.Interests) > 0 {
		topic = in.State.Interests[r.pick(len(in.State.Interests))]
	}

	if topic == "" {
		return reply("Tell me your interests first — say \"my interests are tech, football, music\" and I'll pull trends for one of them.")
	}
	if !in.Online {
		return reply(fmt.Sprintf("I can't pull trends for %s while you're offline.", topic))
	}

	return reply(r.searcher.Run(ctx, "latest trends in "+topic, search.EngineGoogle))
}
