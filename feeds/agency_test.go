package feeds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchLines(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"K","name":"K Ingleside","color":"#529bb0"},{"id":"N","name":"N Judah"}]`))
	}))
	defer upstream.Close()

	c := NewAgencyClient(upstream.URL, upstream.URL, 5*time.Second)
	lines, err := c.FetchLines(context.Background())
	if err != nil {
		t.Fatalf("FetchLines: %v", err)
	}
	if len(lines) != 2 || lines[0].ID != "K" || lines[1].Name != "N Judah" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestFetchPattern(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("line"); got != "K" {
			t.Errorf("pattern request for line %q, want K", got)
		}
		_, _ = w.Write([]byte(`{"line":"K","points":[{"lat":37.7407,"lon":-122.4663},{"lat":37.7312,"lon":-122.4593}]}`))
	}))
	defer upstream.Close()

	c := NewAgencyClient(upstream.URL, upstream.URL, 5*time.Second)
	p, err := c.FetchPattern(context.Background(), "K")
	if err != nil {
		t.Fatalf("FetchPattern: %v", err)
	}
	if p.Line != "K" || len(p.Points) != 2 {
		t.Fatalf("unexpected pattern: %+v", p)
	}
}

func TestFetchPattern_EmptyGeometryIsMalformed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"line":"K","points":[]}`))
	}))
	defer upstream.Close()

	c := NewAgencyClient(upstream.URL, upstream.URL, 5*time.Second)
	_, err := c.FetchPattern(context.Background(), "K")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("expected ErrMalformedPayload, got %v", err)
	}
}
