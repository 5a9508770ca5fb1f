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

// GoogleClient queries the Google Custom Search JSON API.
type GoogleClient struct {
	APIKey     string
	EngineID   string
	BaseURL    string
	HTTPClient *http.Client
}

var _ Client = &GoogleClient{}

func NewGoogleClient(apiKey, engineID string) *GoogleClient {
	return &GoogleClient{
		APIKey:     apiKey,
		EngineID:   engineID,
		BaseURL:    "https://www.googleapis.com/customsearch/v1",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"items"`
}

func (g *GoogleClient) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{}
	params.Add("key", g.APIKey)
	params.Add("cx", g.EngineID)
	params.Add("q", query)
	params.Add("num", "3")

	req, err := http.NewRequestWithContext(ctx, "GET", g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed googleSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	results := make([]Result, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, Result{Title: item.Title, Snippet: item.Snippet, Link: item.Link})
	}
	return results, nil
}
