package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a thin HTTP client for the catalog's search API. It handles
// JSON marshaling and automatic retry with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
}

// NewClient creates a new search client. The baseURL should be the root
// URL of the search service (e.g. http://search.internal:8983).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 3,
	}
}

// searchRequest is the JSON body for the search endpoint.
type searchRequest struct {
	Q              string            `json:"q"`
	FQ             string            `json:"fq,omitempty"`
	Rows           int               `json:"rows"`
	Extras         map[string]string `json:"extras,omitempty"`
	IncludePrivate bool              `json:"include_private"`
}

// searchResponse mirrors the search endpoint's JSON response. Modification
// times arrive as strings because the backend emits them without a zone.
type searchResponse struct {
	Count   int              `json:"count"`
	Results []responseResult `json:"results"`
	Error   string           `json:"error"`
}

type responseResult struct {
	ID               string `json:"id"`
	MetadataModified string `json:"metadata_modified"`
}

// metadataModifiedLayout is the zone-less timestamp format the catalog's
// search index stores for metadata_modified.
const metadataModifiedLayout = "2006-01-02T15:04:05.000000"

// Search implements Executor by POSTing the query to the search endpoint.
// HTTP 400 responses surface as QueryRejectedError; transport failures and
// other non-2xx responses surface as BackendError.
func (c *Client) Search(ctx context.Context, q Query) (*Results, error) {
	req := searchRequest{
		Q:              q.Text,
		FQ:             FilterString(q.Filters),
		Rows:           q.Rows,
		Extras:         q.Extras,
		IncludePrivate: q.IncludePrivate,
	}

	var resp searchResponse
	status, err := c.post(ctx, "/api/3/search", req, &resp)

	// Classify by status before surfacing errors: a rejected query is a
	// rejection even when the 400 body is not decodable JSON.
	switch {
	case status == http.StatusBadRequest:
		return nil, &QueryRejectedError{Query: req.Q, Message: resp.Error}
	case err != nil:
		return nil, &BackendError{Message: "executing search", Err: err}
	case status < 200 || status > 299:
		return nil, &BackendError{
			Message: fmt.Sprintf("search returned HTTP %d", status),
		}
	}

	results := &Results{Count: resp.Count}
	for _, r := range resp.Results {
		modified, err := parseModified(r.MetadataModified)
		if err != nil {
			return nil, &BackendError{
				Message: fmt.Sprintf("result %s has malformed metadata_modified %q", r.ID, r.MetadataModified),
			}
		}
		results.Results = append(results.Results, Result{
			ID:               r.ID,
			MetadataModified: modified,
		})
	}

	return results, nil
}

// FilterString renders filter clauses in the backend's fq syntax, e.g.
// `owner_org:abc123 tags:"health data"`.
func FilterString(filters []Filter) string {
	var b strings.Builder
	for i, f := range filters {
		if i > 0 {
			b.WriteString(" ")
		}
		if f.Require {
			b.WriteString("+")
		}
		if f.Exact {
			fmt.Fprintf(&b, "%s:%q", f.Key, f.Value)
		} else {
			fmt.Fprintf(&b, "%s:%s", f.Key, f.Value)
		}
	}
	return b.String()
}

// parseModified accepts both the index's zone-less layout and RFC 3339.
func parseModified(s string) (time.Time, error) {
	if t, err := time.Parse(metadataModifiedLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// post performs an HTTP POST with a JSON body, retrying with exponential
// backoff on HTTP 429. It returns the final status code; the response body
// is decoded into result when present.
func (c *Client) post(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) (int, error) {
	url := c.baseURL + path

	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshaling request body: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, url, bytes.NewReader(data),
		)
		if err != nil {
			return 0, fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, fmt.Errorf("executing request POST %s: %w", path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return 0, fmt.Errorf("reading response body: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429) on POST %s", path)

			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(backoffDuration(attempt)):
			}
			continue
		}

		if len(respBody) > 0 && result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return resp.StatusCode, fmt.Errorf(
					"decoding response from POST %s: %w", path, err,
				)
			}
		}

		return resp.StatusCode, nil
	}

	return 0, lastErr
}

// backoffDuration returns the exponential backoff delay for an attempt.
func backoffDuration(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
