package wordpress_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "rental_sync/internal/adapters/redis"
	"rental_sync/internal/adapters/wordpress"
	"rental_sync/internal/domain"
)

func TestMediaClient_FindBySlug(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("rest_route") != "/wp/v2/media" {
			t.Errorf("lost existing query: %s", r.URL.RawQuery)
		}
		switch r.URL.Query().Get("slug") {
		case "front":
			_, _ = w.Write([]byte(`[{"id": 77, "slug": "front", "source_url": "https://wp/front.jpg"}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer ts.Close()

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	mc, err := wordpress.New(wordpress.Config{MediaURL: ts.URL + "/?rest_route=/wp/v2/media"}, cache, time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	it, err := mc.Find(ctx, "front")
	if err != nil || it == nil || it.ID != 77 || it.SourceURL != "https://wp/front.jpg" {
		t.Fatalf("find: %+v, %v", it, err)
	}
	if _, err := mc.Find(ctx, "front"); err != nil {
		t.Fatalf("cached find: %v", err)
	}
	if calls != 1 {
		t.Fatalf("second lookup should be served from cache, got %d calls", calls)
	}

	missing, err := mc.Find(ctx, "back")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for unknown slug, got %+v, %v", missing, err)
	}
}

func TestMediaClient_Upload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method %s", r.Method)
		}
		if u, p, ok := r.BasicAuth(); !ok || u != "editor" || p != "app pass" {
			t.Errorf("basic auth: %q %q %v", u, p, ok)
		}
		if got := r.Header.Get("Content-Disposition"); got != "attachment; filename=front.jpg" {
			t.Errorf("content disposition: %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("content type: %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "bytes" {
			t.Errorf("body: %q", body)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 501, "slug": "front"})
	}))
	defer ts.Close()

	mc, _ := wordpress.New(wordpress.Config{MediaURL: ts.URL, Username: "editor", Password: "app pass"}, nil, 0)
	it, err := mc.Upload(context.Background(), []byte("bytes"), "front.jpg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if it.ID != 501 {
		t.Fatalf("unexpected item %+v", it)
	}
}

func TestMediaClient_UploadDenied(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"rest_cannot_create"}`))
	}))
	defer ts.Close()

	mc, _ := wordpress.New(wordpress.Config{MediaURL: ts.URL}, nil, 0)
	_, err := mc.Upload(context.Background(), []byte("x"), "a.png")
	if !errors.Is(err, domain.ErrImageAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
}

func TestMediaClient_FindIgnoresBrokenCacheEntry(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`[{"id": 42, "slug": "a"}]`))
	}))
	defer ts.Close()

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	mc, _ := wordpress.New(wordpress.Config{MediaURL: ts.URL}, cache, time.Hour)
	ctx := context.Background()

	for _, stored := range []string{`"not an object"`, `{"id": 0, "slug": "a"}`} {
		calls = 0
		if err := mr.Set("media:a", stored); err != nil {
			t.Fatal(err)
		}
		it, err := mc.Find(ctx, "a")
		if err != nil || it == nil || it.ID != 42 {
			t.Fatalf("cached %s: got %+v, %v", stored, it, err)
		}
		if calls != 1 {
			t.Fatalf("cached %s: expected a WordPress lookup, got %d", stored, calls)
		}
		got, _ := mr.Get("media:a")
		var back domain.MediaItem
		if err := json.Unmarshal([]byte(got), &back); err != nil || back.ID != 42 {
			t.Fatalf("cache not repaired: %q", got)
		}
	}
}

func TestMediaClient_ObservesTransportErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	mc, _ := wordpress.New(wordpress.Config{MediaURL: url}, nil, 0)
	var seen []string
	mc.OnCall = func(endpoint string, status int, d time.Duration) {
		if status != 0 {
			t.Errorf("%s: status %d on a failed call", endpoint, status)
		}
		seen = append(seen, endpoint)
	}
	ctx := context.Background()
	if _, err := mc.Find(ctx, "a"); err == nil {
		t.Fatal("find against a closed server should fail")
	}
	if _, err := mc.Upload(ctx, []byte("x"), "a.jpg"); err == nil {
		t.Fatal("upload against a closed server should fail")
	}
	if len(seen) != 2 || seen[0] != "media_find" || seen[1] != "media_upload" {
		t.Fatalf("observed %v", seen)
	}
}
