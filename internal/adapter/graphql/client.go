package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/metrics"
)

const serviceName = "rider-agent"

// TokenSource provides a fresh bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the delivery platform's GraphQL API. It is a thin transport: it
// never retries, never caches, and classifies server rejections into the domain's
// sentinel errors so callers can route them.
type Client struct {
	endpoint string
	http     *http.Client
	tokens   TokenSource
	l        logger.Logger
}

func New(endpoint string, timeout time.Duration, tokens TokenSource, l logger.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		tokens:   tokens,
		l:        l,
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []apiError      `json:"errors"`
}

type apiError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// do executes one GraphQL operation and decodes response data into out.
func (c *Client) do(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	start := time.Now()
	err := c.doOnce(ctx, operation, query, vars, out)
	metrics.RecordGatewayCall(serviceName, operation, err, time.Since(start))
	return err
}

func (c *Client) doOnce(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %s", types.ErrUnauthenticated, err))
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: request failed: %w", operation, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return wrap.Error(ctx, fmt.Errorf("%w: status %d", types.ErrUnauthenticated, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("%s: unexpected response status %d", operation, resp.StatusCode))
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return wrap.Error(ctx, fmt.Errorf("%s: failed to decode response: %w", operation, err))
	}

	if len(payload.Errors) > 0 {
		return wrap.Error(ctx, classify(payload.Errors[0]))
	}

	if out != nil && len(payload.Data) > 0 {
		if err := json.Unmarshal(payload.Data, out); err != nil {
			return wrap.Error(ctx, fmt.Errorf("%s: failed to decode data: %w", operation, err))
		}
	}

	return nil
}

// classify maps a GraphQL error onto the domain's sentinel errors. Matching is by
// extension code first, message substring second; anything unrecognized is returned
// as a plain business rejection carrying the server's message.
func classify(e apiError) error {
	msg := strings.ToLower(e.Message)

	switch e.Extensions.Code {
	case "UNAUTHENTICATED":
		return fmt.Errorf("%w: %s", types.ErrUnauthenticated, e.Message)
	case "NOT_FOUND":
		return fmt.Errorf("%w: %s", types.ErrRideNotFound, e.Message)
	}

	switch {
	case strings.Contains(msg, "authentication"), strings.Contains(msg, "unauthenticated"), strings.Contains(msg, "not authorized"):
		return fmt.Errorf("%w: %s", types.ErrUnauthenticated, e.Message)
	case strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %s", types.ErrRideNotFound, e.Message)
	case strings.Contains(msg, "already assigned"), strings.Contains(msg, "already claimed"), strings.Contains(msg, "already taken"):
		return fmt.Errorf("%w: %s", types.ErrRideAlreadyTaken, e.Message)
	case strings.Contains(msg, "code"):
		return fmt.Errorf("%w: %s", types.ErrCodeRejected, e.Message)
	case strings.Contains(msg, "transition"), strings.Contains(msg, "invalid status"):
		return fmt.Errorf("%w: %s", types.ErrInvalidTransition, e.Message)
	default:
		return fmt.Errorf("server rejected request: %s", e.Message)
	}
}
