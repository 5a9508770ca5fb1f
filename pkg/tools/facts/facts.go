package facts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"ai-assistant-be/pkg/tools/search"
)

// ErrNoAnswer is the engine's declination sentinel: the query was understood
// but there is no specific short answer. It is not a failure.
var ErrNoAnswer = errors.New("facts: no specific answer")

// Engine is an injectable numeric/fact answer capability.
type Engine interface {
	ShortAnswer(ctx context.Context, query string) (string, error)
}

// Lookup resolves factual questions through the engine, falling back to a
// Google web search when the engine declines or fails.
type Lookup struct {
	engine   Engine
	searcher *search.Adapter
	logger   *log.Logger
}

func NewLookup(engine Engine, searcher *search.Adapter, logger *log.Logger) *Lookup {
	return &Lookup{engine: engine, searcher: searcher, logger: logger}
}

// Run returns (reply, true) when this path produced an answer. When no
// engine is configured it returns ("", false) so the router can continue
// to the general search classifier without user-visible noise.
func (l *Lookup) Run(ctx context.Context, query string) (string, bool) {
	if l.engine == nil {
		return "", false
	}

	answer, err := l.engine.ShortAnswer(ctx, query)
	if err == nil {
		return answer, true
	}

	if errors.Is(err, ErrNoAnswer) {
		// Declination, not failure: quietly fall back to search.
		return l.searcher.Run(ctx, query, search.EngineGoogle), true
	}

	l.logger.Printf("[FACTS] engine error for %q: %v", query, err)
	return "The fact service had trouble with that one, so here are search results instead.\n" +
		l.searcher.Run(ctx, query, search.EngineGoogle), true
}

// --- WolframAlpha short answers engine ---

// WolframClient hits the WolframAlpha short-answers endpoint. A 501 means
// the service parsed the query but has no single short answer; that maps
// to ErrNoAnswer rather than an error.
type WolframClient struct {
	AppID      string
	BaseURL    string
	HTTPClient *http.Client
}

var _ Engine = &WolframClient{}

func NewWolframClient(appID string) *WolframClient {
	return &WolframClient{
		AppID:      appID,
		BaseURL:    "https://api.wolframalpha.com/v1/result",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (w *WolframClient) ShortAnswer(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Add("appid", w.AppID)
	params.Add("i", query)
	params.Add("units", "metric")

	req, err := http.NewRequestWithContext(ctx, "GET", w.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return string(body), nil
	case http.StatusNotImplemented:
		return "", ErrNoAnswer
	default:
		return "", fmt.Errorf("wolfram: status %d: %s", resp.StatusCode, string(body))
	}
}
