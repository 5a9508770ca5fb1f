package router

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"ai-assistant-be/pkg/session"
	"ai-assistant-be/pkg/tools/facts"
	"ai-assistant-be/pkg/tools/search"
	"ai-assistant-be/pkg/tools/stubs"
	"ai-assistant-be/pkg/tools/weather"
)

const testSecret = "hunter2"

func newTestRouter() *Router {
	logger := log.New(io.Discard, "", 0)
	searcher := search.NewAdapter(logger, nil) // no clients: mock engine results
	return New(
		testSecret,
		weather.NewClientWithURLs(logger, "http://127.0.0.1:0", "http://127.0.0.1:0"),
		searcher,
		facts.NewLookup(nil, searcher, logger),
		stubs.NewWithDelay(0),
		logger,
	)
}

func route(t *testing.T, r *Router, state *session.State, utterance string, online bool) *Result {
	t.Helper()
	res := r.Route(context.Background(), &Input{
		Utterance: utterance,
		State:     state,
		Online:    online,
	})
	if res == nil {
		t.Fatalf("Route(%q) returned nil", utterance)
	}
	return res
}

func TestPriorityOrderIsFixed(t *testing.T) {
	want := []string{
		"password_gate",
		"creator_claim",
		"creator_farewell",
		"identity",
		"internet_explorer",
		"creator_commands",
		"clock",
		"weather",
		"calculator",
		"translate",
		"numeric_fact",
		"web_search",
		"social_lookup",
		"creative_writing",
		"interests",
		"trends",
		"speculative",
		"gauteng_news",
		"news",
	}

	got := newTestRouter().ClassifierNames()
	if len(got) != len(want) {
		t.Fatalf("classifier count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("classifier[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPasswordGateFlow(t *testing.T) {
	r := newTestRouter()
	state := session.New("s1", "u1")

	res := route(t, r, state, "I am your creator", true)
	if state.Gate != session.GateAwaitingPassword {
		t.Fatalf("gate after claim = %q, want awaiting", state.Gate)
	}
	if !strings.Contains(res.Reply, "password") {
		t.Errorf("claim reply = %q, want password prompt", res.Reply)
	}

	// Wrong attempt keeps the gate open. The utterance would normally hit
	// the clock tier, but the open gate consumes everything.
	res = route(t, r, state, "what time is it", true)
	if state.Gate != session.GateAwaitingPassword {
		t.Fatalf("gate after wrong attempt = %q, want awaiting", state.Gate)
	}
	if !strings.Contains(res.Reply, "not the password") {
		t.Errorf("wrong-attempt reply = %q", res.Reply)
	}

	res = route(t, r, state, testSecret, true)
	if !state.CreatorMode {
		t.Fatal("correct password did not enable creator mode")
	}
	if state.Gate != session.GateClosed {
		t.Errorf("gate after success = %q, want closed", state.Gate)
	}
	if !strings.Contains(res.Reply, "Creator mode is on") {
		t.Errorf("success reply = %q", res.Reply)
	}
}

func TestPasswordGateCancel(t *testing.T) {
	r := newTestRouter()
	state := session.New("s1", "u1")

	route(t, r, state, "i made you", true)
	res := route(t, r, state, "cancel that", true)

	if state.Gate != session.GateClosed || state.CreatorMode {
		t.Fatalf("cancel left state gate=%q creator=%v", state.Gate, state.CreatorMode)
	}
	if !strings.Contains(res.Reply, "normal chat") {
		t.Errorf("cancel reply = %q", res.Reply)
	}
}

func TestCreatorFarewellDisablesCommands(t *testing.T) {
	r := newTestRouter()
	state := session.New("s1", "u1")
	state.EnterCreatorMode()

	res := route(t, r, state, "hello boss", true)
	if !strings.Contains(res.Reply, "Hello") {
		t.Fatalf("creator command reply = %q", res.Reply)
	}

	route(t, r, state, "goodbye for now", true)
	if state.CreatorMode {
		t.Fatal("farewell did not drop creator mode")
	}

	// Same command after the farewell is just another LLM fallthrough.
	res = route(t, r, state, "hello boss", true)
	if res.LLM == nil {
		t.Fatalf("post-farewell creator command handled locally: %q", res.Reply)
	}
}

func TestSystemLogsCommand(t *testing.T) {
	r := newTestRouter()
	state := session.New("s1", "u1")
	state.EnterCreatorMode()

	ts := time.Date(2026, 8, 30, 14, 5, 9, 0, time.UTC)
	res := r.Route(context.Background(), &Input{
		Utterance: "show me system logs",
		State:     state,
		Online:    true,
		RecentLogs: []RecentLog{
			{Timestamp: ts, Level: "INFO", Message: "server started"},
		},
	})

	if !strings.Contains(res.Reply, "[14:05:09] INFO: server started") {
		t.Errorf("log dump = %q", res.Reply)
	}
}

func TestIdentityWinsOverLowerTiers(t *testing.T) {
	r := newTestRouter()
	tests := []struct {
		utterance string
		want      string
	}{
		{"what is your name", "Nova"},
		{"who created you, look up something for me", "Katlego"},
		{"where are you from", "Johannesburg"},
	}

	for _, tc := range tests {
		res := route(t, r, session.New("s", "u"), tc.utterance, true)
		if !strings.Contains(res.Reply, tc.want) {
			t.Errorf("Route(%q) = %q, want mention of %q", tc.utterance, res.Reply, tc.want)
		}
	}
}

func TestInternetExplorerClarification(t *testing.T) {
	r := newTestRouter()
	res := route(t, r, session.New("s", "u"), "search on internet explorer for cats", true)
	if !strings.Contains(res.Reply, "web browser, not a search engine") {
		t.Errorf("reply = %q", res.Reply)
	}
}

func TestClockVariants(t *testing.T) {
	r := newTestRouter()
	r.now = func() time.Time {
		return time.Date(2026, 8, 30, 15, 4, 0, 0, time.UTC) // a Sunday
	}

	tests := []struct {
		utterance string
		want      string
	}{
		{"what's the date and time?", "Sunday, August 30, 2026 — 3:04 PM"},
		{"what day is it?", "Today is Sunday."},
		{"what is the date today", "August 30, 2026"},
		{"what time is it?", "3:04 PM"},
	}

	for _, tc := range tests {
		res := route(t, r, session.New("s", "u"), tc.utterance, true)
		if !strings.Contains(res.Reply, tc.want) {
			t.Errorf("Route(%q) = %q, want %q", tc.utterance, res.Reply, tc.want)
		}
	}
}

func TestOfflineToolsAreDeterministic(t *testing.T) {
	r := newTestRouter()
	tests := []struct {
		utterance string
		want      string
	}{
		{"what's the weather in tokyo", "offline"},
		{"translate hello to fr", "offline"},
		{"search for golang tutorials", "offline"},
		{"latest headlines please", "offline"},
		{"how many people live in japan", "offline"},
	}

	for _, tc := range tests {
		res := route(t, r, session.New("s", "u"), tc.utterance, false)
		if res.LLM != nil {
			t.Errorf("Route(%q) offline fell through to LLM", tc.utterance)
			continue
		}
		if !strings.Contains(strings.ToLower(res.Reply), tc.want) {
			t.Errorf("Route(%q) offline = %q, want mention of %q", tc.utterance, res.Reply, tc.want)
		}
	}
}

func TestCalculatorTier(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "what is 2 + 3 * 4", true)
	if res.Reply != "The answer is 20." {
		t.Errorf("arithmetic reply = %q", res.Reply)
	}

	// Non-arithmetic "what is" passes the calculator but matches the
	// search trigger below it.
	res = route(t, r, session.New("s", "u"), "what is the roman empire", true)
	if !strings.Contains(res.Reply, "(Mock Google)") {
		t.Errorf("search fallthrough = %q", res.Reply)
	}
}

func TestWebSearchEngineSelection(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "search on duckduckgo for privacy tools", true)
	if !strings.Contains(res.Reply, "(Mock DuckDuckGo)") {
		t.Errorf("duckduckgo search = %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "privacy tools") {
		t.Errorf("query missing from reply: %q", res.Reply)
	}

	res = route(t, r, session.New("s", "u"), "search for golang generics", true)
	if !strings.Contains(res.Reply, "(Mock Google)") {
		t.Errorf("default engine search = %q", res.Reply)
	}
}

func TestSocialLookupBeatsWebSearch(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "search for thabo on instagram", true)
	if !strings.Contains(res.Reply, "privacy") {
		t.Errorf("social lookup reply = %q", res.Reply)
	}
	if !strings.Contains(res.Reply, "thabo") {
		t.Errorf("social lookup lost the name: %q", res.Reply)
	}
}

func TestTranslateNeedsLanguageCode(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "translate good morning please", true)
	if !strings.Contains(res.Reply, "two-letter code") {
		t.Errorf("missing-code reply = %q", res.Reply)
	}

	res = route(t, r, session.New("s", "u"), "translate good morning to fr", true)
	if !strings.Contains(res.Reply, "good morning") || !strings.Contains(res.Reply, "fr") {
		t.Errorf("translate reply = %q", res.Reply)
	}
}

func TestCreativeWritingBuildsInstruction(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "draft an email about the Q3 offsite", true)
	if res.LLM == nil {
		t.Fatalf("creative request answered locally: %q", res.Reply)
	}
	if res.LLM.UseHistory {
		t.Error("creative request should not carry history")
	}
	if !strings.Contains(res.LLM.Instruction, "the Q3 offsite") {
		t.Errorf("instruction = %q", res.LLM.Instruction)
	}
}

func TestSpeculativeInstruction(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "predict the future of remote work", true)
	if res.LLM == nil {
		t.Fatalf("speculative request answered locally: %q", res.Reply)
	}
	if !strings.Contains(res.LLM.Instruction, "speculative") {
		t.Errorf("instruction = %q", res.LLM.Instruction)
	}
}

func TestInterestsAndTrends(t *testing.T) {
	r := newTestRouter()
	r.pick = func(n int) int { return 0 }
	state := session.New("s", "u")

	res := route(t, r, state, "give me insights", true)
	if !strings.Contains(res.Reply, "interests first") {
		t.Errorf("no-interests reply = %q", res.Reply)
	}

	res = route(t, r, state, "my interests are fintech, football and music", true)
	if len(state.Interests) != 3 {
		t.Fatalf("interests = %v, want 3 entries", state.Interests)
	}
	if !strings.Contains(res.Reply, "fintech, football, music") {
		t.Errorf("confirmation = %q", res.Reply)
	}

	res = route(t, r, state, "give me insights", true)
	if !strings.Contains(res.Reply, "latest trends in fintech") {
		t.Errorf("insights reply = %q", res.Reply)
	}

	res = route(t, r, state, "what are the trends in ai safety?", true)
	if !strings.Contains(res.Reply, "latest trends in ai safety") {
		t.Errorf("explicit topic reply = %q", res.Reply)
	}
}

func TestGautengNewsBeatsGenericNews(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "any gauteng news today?", true)
	if !strings.Contains(res.Reply, "News24") {
		t.Errorf("gauteng reply = %q", res.Reply)
	}

	res = route(t, r, session.New("s", "u"), "news about the election", true)
	if !strings.Contains(res.Reply, "the election") {
		t.Errorf("topic news reply = %q", res.Reply)
	}
}

func TestDefaultFallsThroughToLLM(t *testing.T) {
	r := newTestRouter()

	res := route(t, r, session.New("s", "u"), "I had a strange dream last night", true)
	if res.LLM == nil {
		t.Fatalf("expected LLM fallthrough, got %q", res.Reply)
	}
	if !res.LLM.UseHistory {
		t.Error("default fallthrough should carry history")
	}
	if res.LLM.Instruction != "I had a strange dream last night" {
		t.Errorf("instruction = %q", res.LLM.Instruction)
	}
}
