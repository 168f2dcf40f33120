package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RESTClient implements RowSource against a PostgREST-compatible
// endpoint (the protocol spoken by hosted Postgres platforms): column
// projection via the select query parameter and paging via the Range
// header in items.
type RESTClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// RESTOption configures the RESTClient.
type RESTOption func(*RESTClient)

// WithRESTHTTPClient overrides the default HTTP client.
func WithRESTHTTPClient(hc *http.Client) RESTOption {
	return func(c *RESTClient) {
		c.client = hc
	}
}

// NewRESTClient creates a RowSource speaking the PostgREST range
// protocol. endpoint is the REST base URL (".../rest/v1"); apiKey is
// sent as both the apikey header and a bearer token.
func NewRESTClient(endpoint, apiKey string, opts ...RESTOption) *RESTClient {
	c := &RESTClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchRange implements RowSource.
func (c *RESTClient) FetchRange(
	ctx context.Context,
	q Query,
	offset, limit int,
) ([]Row, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid page limit %d", limit)
	}

	u := c.buildURL(q)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating range request: %w", err)
	}

	httpReq.Header.Set("apikey", c.apiKey)
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Range-Unit", "items")
	httpReq.Header.Set("Range", fmt.Sprintf("%d-%d", offset, offset+limit-1))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing range request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading range response: %w", err)
	}

	// PostgREST answers ranged reads with 200 or 206.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf(
			"row source error (status %d): %s",
			resp.StatusCode,
			string(body),
		)
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parsing range response: %w", err)
	}

	return rows, nil
}

func (c *RESTClient) buildURL(q Query) string {
	params := url.Values{}
	if len(q.Columns) > 0 {
		params.Set("select", strings.Join(q.Columns, ","))
	} else {
		params.Set("select", "*")
	}
	return c.endpoint + "/" + url.PathEscape(q.Table) + "?" + params.Encode()
}
