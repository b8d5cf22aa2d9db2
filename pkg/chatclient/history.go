package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPHistoryFetcher retrieves conversation history from the chat service's
// REST surface (GET /chat/{targetUserId}), credentialed by the same session
// cookie the channel uses.
type HTTPHistoryFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPHistoryFetcher builds a fetcher rooted at the API base URL
// (e.g. "http://localhost:3000/api"). Pass a client carrying the session
// cookie jar; nil gets a default client with a 10s timeout.
func NewHTTPHistoryFetcher(baseURL string, client *http.Client) *HTTPHistoryFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPHistoryFetcher{baseURL: baseURL, client: client}
}

func (f *HTTPHistoryFetcher) FetchHistory(ctx context.Context, targetUserID string) ([]Message, error) {
	if targetUserID == "" {
		return nil, fmt.Errorf("fetch history: target user id is empty")
	}

	endpoint := fmt.Sprintf("%s/chat/%s", f.baseURL, url.PathEscape(targetUserID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch history: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Messages []WireMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("fetch history: decode response: %w", err)
	}

	return NormalizeAll(body.Messages), nil
}
