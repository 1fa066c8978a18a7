// Package vectorsearch talks to the nearest-neighbour document service the
// fuzzy location pass runs on. The index holds one descriptive sentence per
// place ("<name> is <description>"); the service embeds the query server-side
// and returns the closest documents.
package vectorsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Searcher is what the resolver consumes. Implementations must be safe for
// concurrent use.
type Searcher interface {
	Query(ctx context.Context, text string, topK int) ([]string, error)
}

var _ Searcher = (*Client)(nil)

// Client queries a Chroma-style collection endpoint. Every call is bounded by
// the configured timeout; callers treat any error as "no fuzzy matches".
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	collection string
}

func NewClient(baseURL, collection string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		collection: collection,
	}
}

type queryRequest struct {
	QueryTexts []string `json:"query_texts"`
	NResults   int      `json:"n_results"`
}

type queryResponse struct {
	Documents [][]string `json:"documents"`
}

// Query returns the topK documents nearest to text, best first.
func (c *Client) Query(ctx context.Context, text string, topK int) ([]string, error) {
	body, err := json.Marshal(queryRequest{QueryTexts: []string{text}, NResults: topK})
	if err != nil {
		return nil, fmt.Errorf("failed to encode vector query: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/query", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build vector query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vector search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vector search returned status %d", resp.StatusCode)
	}

	var decoded queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode vector search response: %w", err)
	}
	if len(decoded.Documents) == 0 {
		return nil, nil
	}

	c.logger.DebugContext(ctx, "Vector search returned documents",
		slog.Int("count", len(decoded.Documents[0])))
	return decoded.Documents[0], nil
}
