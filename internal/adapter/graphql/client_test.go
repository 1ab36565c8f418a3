package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
)

type staticTokens struct{ token string }

func (s staticTokens) Token(_ context.Context) (string, error) {
	return s.token, nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, 5*time.Second, staticTokens{token: "id-token"}, logger.InitLogger("graphql-test", logger.LevelError))
	return c, srv
}

func respond(t *testing.T, w http.ResponseWriter, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("failed to write response: %v", err)
	}
}

func TestDo_SendsBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		respond(t, w, `{"data":{"availableRides":[]}}`)
	})

	if _, err := c.AvailableRides(context.Background()); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if gotAuth != "Bearer id-token" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
}

func TestActiveRide_NullMeansNoActiveRide(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, `{"data":{"activeRiderRide":null}}`)
	})

	ride, err := c.ActiveRide(context.Background())
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if ride != nil {
		t.Fatalf("null active ride must decode to nil, got %+v", ride)
	}
}

func TestRide_NullIsNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, `{"data":{"ride":null}}`)
	})

	if _, err := c.Ride(context.Background(), "R1"); !errors.Is(err, types.ErrRideNotFound) {
		t.Fatalf("expected ErrRideNotFound, got %v", err)
	}
}

func TestDo_HTTPUnauthorized(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := c.ActiveRide(context.Background()); !errors.Is(err, types.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestClassify_ErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{
			"extension code unauthenticated",
			`{"errors":[{"message":"bad token","extensions":{"code":"UNAUTHENTICATED"}}]}`,
			types.ErrUnauthenticated,
		},
		{
			"extension code not found",
			`{"errors":[{"message":"no such ride","extensions":{"code":"NOT_FOUND"}}]}`,
			types.ErrRideNotFound,
		},
		{
			"already claimed message",
			`{"errors":[{"message":"Ride already claimed by another rider"}]}`,
			types.ErrRideAlreadyTaken,
		},
		{
			"rejected delivery code",
			`{"errors":[{"message":"Invalid delivery code"}]}`,
			types.ErrCodeRejected,
		},
		{
			"invalid transition",
			`{"errors":[{"message":"Illegal status transition"}]}`,
			types.ErrInvalidTransition,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				respond(t, w, tc.body)
			})

			_, err := c.Accept(context.Background(), "R1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateStatus_CodeOnlyOnCompletion(t *testing.T) {
	var gotVars map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotVars = req.Variables
		respond(t, w, `{"data":{"updateRideStatus":{"id":"R1","status":"PICKED_UP"}}}`)
	})

	if _, err := c.UpdateStatus(context.Background(), "R1", types.StatusPickedUp, ""); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, ok := gotVars["confirmCode"]; ok {
		t.Fatalf("empty confirm code must be omitted from variables, got %v", gotVars)
	}
}
