package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/types"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

var firestoreDomain = "https://firestore.googleapis.com"

// StoreClient reads and writes documents of the managed realtime store over its REST
// surface. Only the handful of document shapes the agent needs are supported.
type StoreClient struct {
	projectID string
	tokens    TokenSource
	http      *http.Client
}

// TokenSource provides the signed-in rider's bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

func NewStore(projectID string, timeout time.Duration, tokens TokenSource) *StoreClient {
	return &StoreClient{
		projectID: projectID,
		tokens:    tokens,
		http:      &http.Client{Timeout: timeout},
	}
}

func (c *StoreClient) baseURL() string {
	return fmt.Sprintf("%s/v1/projects/%s/databases/(default)/documents", firestoreDomain, c.projectID)
}

// value is the Firestore typed-value wire format.
type value struct {
	StringValue    *string          `json:"stringValue,omitempty"`
	DoubleValue    *float64         `json:"doubleValue,omitempty"`
	IntegerValue   *string          `json:"integerValue,omitempty"`
	BooleanValue   *bool            `json:"booleanValue,omitempty"`
	TimestampValue *string          `json:"timestampValue,omitempty"`
	MapValue       *struct {
		Fields map[string]value `json:"fields"`
	} `json:"mapValue,omitempty"`
}

func strVal(s string) value     { return value{StringValue: &s} }
func boolVal(b bool) value      { return value{BooleanValue: &b} }
func doubleVal(f float64) value { return value{DoubleValue: &f} }
func timeVal(t time.Time) value {
	s := t.UTC().Format(time.RFC3339Nano)
	return value{TimestampValue: &s}
}

func (v value) str() string {
	if v.StringValue != nil {
		return *v.StringValue
	}
	return ""
}

func (v value) boolean() bool {
	return v.BooleanValue != nil && *v.BooleanValue
}

func (v value) double() float64 {
	if v.DoubleValue != nil {
		return *v.DoubleValue
	}
	if v.IntegerValue != nil {
		if n, err := strconv.ParseFloat(*v.IntegerValue, 64); err == nil {
			return n
		}
	}
	return 0
}

func (v value) timestamp() time.Time {
	if v.TimestampValue == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue)
	if err != nil {
		return time.Time{}
	}
	return t
}

type document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]value `json:"fields"`
	CreateTime string           `json:"createTime,omitempty"`
}

// docID returns the last path segment of a document resource name.
func (d document) docID() string {
	for i := len(d.Name) - 1; i >= 0; i-- {
		if d.Name[i] == '/' {
			return d.Name[i+1:]
		}
	}
	return d.Name
}

// getDoc fetches one document. A 404 is reported as types.ErrNotFound.
func (c *StoreClient) getDoc(ctx context.Context, path string) (*document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/"+path, nil)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to build request: %w", err))
	}

	doc := &document{}
	if err := c.send(ctx, req, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// patchDoc merges the given fields into a document, creating it when missing. Only
// the listed fields are touched (updateMask), matching a merge-set in the SDKs.
func (c *StoreClient) patchDoc(ctx context.Context, path string, fields map[string]value) error {
	q := url.Values{}
	for name := range fields {
		q.Add("updateMask.fieldPaths", name)
	}

	body, err := json.Marshal(document{Fields: fields})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to encode document: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL()+"/"+path+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(ctx, req, nil)
}

// createDoc appends a new document with an auto-generated id to a collection.
func (c *StoreClient) createDoc(ctx context.Context, collectionPath string, fields map[string]value) error {
	body, err := json.Marshal(document{Fields: fields})
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to encode document: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/"+collectionPath, bytes.NewReader(body))
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(ctx, req, nil)
}

// listDocs returns all documents of a collection. Ordering is done by the callers:
// the collections read here stay small (one ride's chat thread, one rider's feed).
func (c *StoreClient) listDocs(ctx context.Context, collectionPath string) ([]document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/"+collectionPath+"?pageSize=300", nil)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("failed to build request: %w", err))
	}

	var out struct {
		Documents []document `json:"documents"`
	}
	if err := c.send(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *StoreClient) send(ctx context.Context, req *http.Request, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("%w: %s", types.ErrUnauthenticated, err))
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("document store request failed: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return wrap.Error(ctx, types.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return wrap.Error(ctx, fmt.Errorf("%w: status %d", types.ErrUnauthenticated, resp.StatusCode))
	default:
		ctx = wrap.WithAction(ctx, types.ActionExternalServiceFailed)
		return wrap.Error(ctx, fmt.Errorf("document store returned status %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return wrap.Error(ctx, fmt.Errorf("failed to decode document store response: %w", err))
		}
	}
	return nil
}
