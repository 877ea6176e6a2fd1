package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/vidparse/internal/errors"
	"github.com/Iron-Ham/vidparse/internal/taskqueue"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestClient_ResolveSendsRequest(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotURL string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		gotURL = body.URL
		respond(http.StatusOK, `{"platform":"douyin","result":{"title":"clip","author":"me","video_url":"https://cdn.test/v.mp4","cover":"https://cdn.test/c.jpg"}}`)(w, r)
	})

	c := New(Options{BaseURL: srv.URL + "/api/", Token: "tok"})
	result, err := c.Resolve(context.Background(), "https://v.douyin.com/abc")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotPath != "/api/parse" {
		t.Errorf("path = %s, want /api/parse", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok")
	}
	if gotURL != "https://v.douyin.com/abc" {
		t.Errorf("body url = %q", gotURL)
	}

	want := taskqueue.Result{
		Title:    "clip",
		Author:   "me",
		VideoURL: "https://cdn.test/v.mp4",
		CoverURL: "https://cdn.test/c.jpg",
		Platform: "douyin",
	}
	if *result != want {
		t.Errorf("Resolve() = %+v, want %+v", *result, want)
	}
}

func TestClient_ResolveWithoutToken(t *testing.T) {
	var hasAuth bool
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		respond(http.StatusOK, `{"result":{"video_url":"https://cdn.test/v.mp4"}}`)(w, r)
	})

	result, err := New(Options{BaseURL: srv.URL}).Resolve(context.Background(), "https://www.kuaishou.com/short-video/1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if hasAuth {
		t.Error("Authorization header sent without a token")
	}
	if result.Platform != PlatformKuaishou {
		t.Errorf("Platform = %q, want fallback to %q", result.Platform, PlatformKuaishou)
	}
}

func TestClient_ResolveFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
		wantIs     error
	}{
		{
			name:       "service msg on 400",
			status:     http.StatusBadRequest,
			body:       `{"msg":"unsupported platform"}`,
			wantMsg:    "unsupported platform",
			wantStatus: 400,
		},
		{
			name:       "error field on 500",
			status:     http.StatusInternalServerError,
			body:       `{"error":"browser crashed"}`,
			wantMsg:    "browser crashed",
			wantStatus: 500,
		},
		{
			name:       "status text when body is not json",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantMsg:    "Bad Gateway",
			wantStatus: 502,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"msg":"Missing Authorization Header"}`,
			wantMsg:    "Missing Authorization Header",
			wantStatus: 401,
			wantIs:     errors.ErrUnauthorized,
		},
		{
			name:       "error inside a 200 result",
			status:     http.StatusOK,
			body:       `{"platform":"douyin","result":{"error":"video removed"}}`,
			wantMsg:    "video removed",
			wantStatus: 200,
		},
		{
			name:       "result without video url",
			status:     http.StatusOK,
			body:       `{"platform":"douyin","result":{"title":"clip"}}`,
			wantMsg:    "no video link in result",
			wantStatus: 200,
			wantIs:     errors.ErrNoMedia,
		},
		{
			name:       "result as bare string",
			status:     http.StatusOK,
			body:       `{"platform":"douyin","result":"parser not found"}`,
			wantMsg:    "parser not found",
			wantStatus: 200,
		},
		{
			name:       "malformed 200 body",
			status:     http.StatusOK,
			body:       `not json`,
			wantMsg:    "malformed response",
			wantStatus: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, respond(tt.status, tt.body))

			result, err := New(Options{BaseURL: srv.URL}).Resolve(context.Background(), "https://v.douyin.com/x")
			if err == nil {
				t.Fatalf("Resolve() = %+v, want error", result)
			}

			var rf *errors.ResolutionFailure
			if !errors.As(err, &rf) {
				t.Fatalf("error type = %T, want *ResolutionFailure", err)
			}
			if got := errors.UserMessage(err); got != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMsg)
			}
			if rf.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", rf.StatusCode, tt.wantStatus)
			}
			if rf.URL != "https://v.douyin.com/x" {
				t.Errorf("URL = %q", rf.URL)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(err, %v) = false", tt.wantIs)
			}
		})
	}
}

func TestClient_ResolveEncodedStringResult(t *testing.T) {
	srv := newTestServer(t, respond(http.StatusOK,
		`{"platform":"xiaohongshu","result":"{\"title\":\"note\",\"video_url\":\"https://cdn.test/n.mp4\"}"}`))

	result, err := New(Options{BaseURL: srv.URL}).Resolve(context.Background(), "https://xhslink.com/a")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if result.Title != "note" || result.VideoURL != "https://cdn.test/n.mp4" {
		t.Errorf("Resolve() = %+v", result)
	}
}

func TestClient_ResolveTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := New(Options{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Resolve(context.Background(), "https://v.douyin.com/slow")
	if err == nil {
		t.Fatal("Resolve() should time out")
	}
	if got := errors.UserMessage(err); got != "request timed out" {
		t.Errorf("UserMessage() = %q, want %q", got, "request timed out")
	}
}

func TestClient_ResolveContextCancelled(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{BaseURL: srv.URL}).Resolve(ctx, "https://v.douyin.com/x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Resolve() error = %v, want context.Canceled in chain", err)
	}
}

func TestCache(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.URL == "https://v.douyin.com/bad" {
			respond(http.StatusBadRequest, `{"msg":"unsupported platform"}`)(w, r)
			return
		}
		respond(http.StatusOK, `{"result":{"title":"clip","video_url":"https://cdn.test/v.mp4"}}`)(w, r)
	})

	cache := NewCache(New(Options{BaseURL: srv.URL}))
	ctx := context.Background()

	first, err := cache.Resolve(ctx, "https://v.douyin.com/ok")
	if err != nil {
		t.Fatal(err)
	}
	first.Title = "mutated"

	second, err := cache.Resolve(ctx, "https://v.douyin.com/ok")
	if err != nil {
		t.Fatal(err)
	}
	if second.Title != "clip" {
		t.Errorf("cached Title = %q, caller mutation leaked into cache", second.Title)
	}
	if calls.Load() != 1 {
		t.Errorf("service calls = %d, want 1 for a cached link", calls.Load())
	}

	for range 2 {
		if _, err := cache.Resolve(ctx, "https://v.douyin.com/bad"); err == nil {
			t.Fatal("expected failure")
		}
	}
	if calls.Load() != 3 {
		t.Errorf("service calls = %d, failures must not be cached", calls.Load())
	}

	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
	hits, misses := cache.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("Stats() = (%d, %d), want (1, 3)", hits, misses)
	}
}

func TestPlatform(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://v.douyin.com/abc/", PlatformDouyin},
		{"https://www.douyin.com/video/1", PlatformDouyin},
		{"https://v.kuaishou.com/xyz", PlatformKuaishou},
		{"https://www.gifshow.com/s/1", PlatformKuaishou},
		{"http://xhslink.com/a/b", PlatformXiaohongshu},
		{"https://www.xiaohongshu.com/explore/1", PlatformXiaohongshu},
		{"https://example.com/v/1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			if got := Platform(tt.link); got != tt.want {
				t.Errorf("Platform(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}
