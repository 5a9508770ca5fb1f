package search

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type Engine string

const (
	EngineGoogle     Engine = "google"
	EngineDuckDuckGo Engine = "duckduckgo"
)

// Result is one web search hit.
type Result struct {
	Title   string
	Snippet string
	Link    string
}

// Client is an injectable search capability for one engine.
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Adapter formats search results for chat. When no client is configured
// for an engine it falls back to a deterministic mock whose results carry
// a "(Mock <Engine>)" prefix, so callers and tests can tell stub output
// from live output.
type Adapter struct {
	clients map[Engine]Client
	logger  *log.Logger
}

func NewAdapter(logger *log.Logger, clients map[Engine]Client) *Adapter {
	if clients == nil {
		clients = map[Engine]Client{}
	}
	return &Adapter{clients: clients, logger: logger}
}

// Run performs the search and renders up to the first three results as a
// numbered list. Failures are caught and rendered as apology text.
func (a *Adapter) Run(ctx context.Context, query string, engine Engine) string {
	if engine != EngineGoogle && engine != EngineDuckDuckGo {
		engine = EngineGoogle
	}

	results, err := a.search(ctx, query, engine)
	if err != nil {
		a.logger.Printf("[SEARCH] %s query %q failed: %v", engine, query, err)
		return "Sorry, the search didn't go through. Please try again."
	}
	if len(results) == 0 {
		return fmt.Sprintf("I couldn't find any results for \"%s\".", query)
	}

	if len(results) > 3 {
		results = results[:3]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I found for \"%s\" on %s:\n", query, displayName(engine))
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s — %s (%s)\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *Adapter) search(ctx context.Context, query string, engine Engine) ([]Result, error) {
	if client, ok := a.clients[engine]; ok && client != nil {
		return client.Search(ctx, query)
	}
	return mockResults(query, engine), nil
}

func displayName(engine Engine) string {
	if engine == EngineDuckDuckGo {
		return "DuckDuckGo"
	}
	return "Google"
}

func mockResults(query string, engine Engine) []Result {
	name := displayName(engine)
	return []Result{
		{
			Title:   fmt.Sprintf("(Mock %s) Top result for %s", name, query),
			Snippet: fmt.Sprintf("A representative overview of %s.", query),
			Link:    "https://example.com/1",
		},
		{
			Title:   fmt.Sprintf("(Mock %s) %s explained", name, query),
			Snippet: fmt.Sprintf("Background reading about %s.", query),
			Link:    "https://example.com/2",
		},
		{
			Title:   fmt.Sprintf("(Mock %s) Latest on %s", name, query),
			Snippet: fmt.Sprintf("Recent coverage mentioning %s.", query),
			Link:    "https://example.com/3",
		},
	}
}
