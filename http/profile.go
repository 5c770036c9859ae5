package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/blogstat"
)

// DefaultUpstreamTimeout bounds each call to the profile services.
const DefaultUpstreamTimeout = 30 * time.Second

// maxUpstreamBody caps how much of an upstream response is read.
const maxUpstreamBody = 10 << 20

// Ensure clients implement their blogstat interfaces at compile time.
var (
	_ blogstat.ProfileSearcher = (*ProfileSearchClient)(nil)
	_ blogstat.ProfileMatcher  = (*ProfileMatchClient)(nil)
)

// ProfileSearchClient calls the LinkedIn URL search service.
type ProfileSearchClient struct {
	baseURL string
	client  *http.Client
}

// NewProfileSearchClient creates a client for the search service at baseURL.
// If client is nil, a client with DefaultUpstreamTimeout is used.
func NewProfileSearchClient(baseURL string, client *http.Client) *ProfileSearchClient {
	if client == nil {
		client = &http.Client{Timeout: DefaultUpstreamTimeout}
	}
	return &ProfileSearchClient{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// SearchProfileURL sends GET /linkedinUrlSearch?q=query and returns the url
// field of the response. The query must already be escaped.
func (c *ProfileSearchClient) SearchProfileURL(ctx context.Context, query string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/linkedinUrlSearch?q="+query, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("search profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", upstreamError("profile search", resp)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUpstreamBody)).Decode(&body); err != nil {
		return "", blogstat.Errorf(blogstat.EUPSTREAM, "profile search: decode response: %v", err)
	}
	return body.URL, nil
}

// ProfileMatchClient calls the LinkedIn profile matching service.
type ProfileMatchClient struct {
	baseURL string
	client  *http.Client
}

// NewProfileMatchClient creates a client for the matching service at baseURL.
// If client is nil, a client with DefaultUpstreamTimeout is used.
func NewProfileMatchClient(baseURL string, client *http.Client) *ProfileMatchClient {
	if client == nil {
		client = &http.Client{Timeout: DefaultUpstreamTimeout}
	}
	return &ProfileMatchClient{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

// MatchProfiles sends POST /linkedin_search with the URLs and returns the
// response body unchanged.
func (c *ProfileMatchClient) MatchProfiles(ctx context.Context, urls []string) (json.RawMessage, error) {
	if urls == nil {
		urls = []string{}
	}
	payload, err := json.Marshal(map[string][]string{"linkedin_profile_urls": urls})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/linkedin_search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, blogstat.Errorf(blogstat.EUPSTREAM, "profile match: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError("profile match", resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return nil, blogstat.Errorf(blogstat.EUPSTREAM, "profile match: read response: %v", err)
	}
	if !json.Valid(body) {
		return nil, blogstat.Errorf(blogstat.EUPSTREAM, "profile match: response is not valid JSON")
	}
	return json.RawMessage(body), nil
}

// upstreamError builds an EUPSTREAM error from a non-200 response.
func upstreamError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return blogstat.Errorf(blogstat.EUPSTREAM, "%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
