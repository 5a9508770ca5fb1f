package router

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"time"

	"ai-assistant-be/pkg/session"
	"ai-assistant-be/pkg/tools/facts"
	"ai-assistant-be/pkg/tools/search"
	"ai-assistant-be/pkg/tools/stubs"
	"ai-assistant-be/pkg/tools/weather"
)

// Input is everything the router may consult for one utterance. The
// session state is mutated in place; the router is the only component
// allowed to touch it.
type Input struct {
	Utterance  string
	State      *session.State
	Online     bool
	RecentLogs []RecentLog

	lower string // normalized once per routing pass
}

// RecentLog is a retained log entry, decoupled from the logging backend so
// this package stays free of infrastructure imports.
type RecentLog struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// LLMRequest asks the orchestrator to produce the reply through the model
// fallback instead of a canned string.
type LLMRequest struct {
	Instruction string
	UseHistory  bool
}

// Result is the single outcome of a routing pass: either a definite reply
// or a request to invoke the LLM fallback. Exactly one is set.
type Result struct {
	Reply string
	LLM   *LLMRequest
}

// Classifier is one (predicate, handler) pair in the priority list. Handle
// returns nil to pass, letting the next classifier try.
type Classifier struct {
	Name   string
	Handle func(ctx context.Context, r *Router, in *Input) *Result
}

// Router evaluates classifiers in strict fixed priority; the first
// non-nil result wins and later tiers are unreachable for that utterance.
type Router struct {
	secret   string
	weather  *weather.Client
	searcher *search.Adapter
	facts    *facts.Lookup
	stubs    *stubs.Stubs
	logger   *log.Logger

	now     func() time.Time
	pick    func(n int) int // interest selection, swappable in tests
	ordered []Classifier
}

func New(
	secret string,
	weatherClient *weather.Client,
	searcher *search.Adapter,
	factLookup *facts.Lookup,
	stubAdapters *stubs.Stubs,
	logger *log.Logger,
) *Router {
	r := &Router{
		secret:   secret,
		weather:  weatherClient,
		searcher: searcher,
		facts:    factLookup,
		stubs:    stubAdapters,
		logger:   logger,
		now:      time.Now,
		pick:     rand.Intn,
	}
	r.ordered = []Classifier{
		{Name: "password_gate", Handle: classifyPasswordGate},
		{Name: "creator_claim", Handle: classifyCreatorClaim},
		{Name: "creator_farewell", Handle: classifyCreatorFarewell},
		{Name: "identity", Handle: classifyIdentity},
		{Name: "internet_explorer", Handle: classifyInternetExplorer},
		{Name: "creator_commands", Handle: classifyCreatorCommands},
		{Name: "clock", Handle: classifyClock},
		{Name: "weather", Handle: classifyWeather},
		{Name: "calculator", Handle: classifyCalculator},
		{Name: "translate", Handle: classifyTranslate},
		{Name: "numeric_fact", Handle: classifyNumericFact},
		{Name: "web_search", Handle: classifyWebSearch},
		{Name: "social_lookup", Handle: classifySocialLookup},
		{Name: "creative_writing", Handle: classifyCreativeWriting},
		{Name: "interests", Handle: classifyInterests},
		{Name: "trends", Handle: classifyTrends},
		{Name: "speculative", Handle: classifySpeculative},
		{Name: "gauteng_news", Handle: classifyGautengNews},
		{Name: "news", Handle: classifyNews},
	}
	return r
}

// Route runs the priority cascade. It always produces a result; the final
// fallthrough hands the raw utterance to the LLM fallback with history.
func (r *Router) Route(ctx context.Context, in *Input) *Result {
	in.lower = strings.ToLower(strings.TrimSpace(in.Utterance))

	for _, c := range r.ordered {
		if res := c.Handle(ctx, r, in); res != nil {
			r.logger.Printf("[ROUTER] %q handled by %s", truncate(in.Utterance, 60), c.Name)
			return res
		}
	}

	r.logger.Printf("[ROUTER] %q fell through to LLM", truncate(in.Utterance, 60))
	return &Result{LLM: &LLMRequest{Instruction: in.Utterance, UseHistory: true}}
}

// ClassifierNames exposes the priority order so tests can lock it in.
func (r *Router) ClassifierNames() []string {
	names := make([]string, len(r.ordered))
	for i, c := range r.ordered {
		names[i] = c.Name
	}
	return names
}

// --- small shared helpers ---

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(text string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return p
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func reply(text string) *Result {
	return &Result{Reply: text}
}
