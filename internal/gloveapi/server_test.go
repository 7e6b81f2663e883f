package gloveapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/glove.report/internal/glove"
)

func newTestServer() (*Server, *Feed) {
	feed := NewFeed()
	return NewServer(feed, Config{
		Model:      glove.Model18,
		Channels:   18,
		Port:       "/dev/ttyUSB0",
		Calibrated: true,
		SessionID:  "abc123",
	}), feed
}

func TestShowConfig(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var cfg Config
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg.Channels != 18 || !cfg.Calibrated || cfg.SessionID != "abc123" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestShowLatest(t *testing.T) {
	srv, feed := newTestServer()
	mux := srv.ServeMux()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status before any reading = %d, want 404", rec.Code)
	}

	feed.Publish(glove.Reading{Time: time.Unix(5, 0), Values: []float64{1, 2}})

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var r glove.Reading
	if err := json.NewDecoder(rec.Body).Decode(&r); err != nil {
		t.Fatalf("failed to decode reading: %v", err)
	}
	if len(r.Values) != 2 || r.Values[1] != 2 {
		t.Errorf("reading = %+v", r)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer()
	mux := srv.ServeMux()

	for _, path := range []string{"/api/latest", "/api/config", "/api/stream"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", path, rec.Code)
		}
	}
}

func TestStreamDeliversSSE(t *testing.T) {
	srv, feed := newTestServer()
	ts := httptest.NewServer(srv.ServeMux())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("stream request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	// Publish until the subscriber is registered and a data event
	// makes it through.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				feed.Publish(glove.Reading{Time: time.Now(), Values: []float64{42}})
			}
		}
	}()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var r glove.Reading
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &r); err != nil {
			t.Fatalf("failed to decode SSE payload %q: %v", line, err)
		}
		if r.Values[0] != 42 {
			t.Errorf("streamed values = %v, want [42]", r.Values)
		}
		return
	}
	t.Fatalf("no data event received: %v", scanner.Err())
}
