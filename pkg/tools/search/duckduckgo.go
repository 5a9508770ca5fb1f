package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DuckDuckGoClient queries the DuckDuckGo Instant Answer API. It needs no
// key, which makes it the default live engine in development.
type DuckDuckGoClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ Client = &DuckDuckGoClient{}

func NewDuckDuckGoClient() *DuckDuckGoClient {
	return &DuckDuckGoClient{
		BaseURL:    "https://api.duckduckgo.com/",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type ddgResponse struct {
	Heading       string `json:"Heading"`
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (d *DuckDuckGoClient) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("format", "json")
	params.Add("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", d.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: status %d", resp.StatusCode)
	}

	var parsed ddgResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("duckduckgo: %w", err)
	}

	var results []Result
	if parsed.AbstractText != "" {
		results = append(results, Result{
			Title:   parsed.Heading,
			Snippet: parsed.AbstractText,
			Link:    parsed.AbstractURL,
		})
	}
	for _, topic := range parsed.RelatedTopics {
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		results = append(results, Result{
			Title:   topic.Text,
			Snippet: topic.Text,
			Link:    topic.FirstURL,
		})
		if len(results) >= 3 {
			break
		}
	}
	return results, nil
}
