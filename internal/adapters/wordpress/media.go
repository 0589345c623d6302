// internal/adapters/wordpress/media.go
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"rental_sync/internal/domain"
)

type Config struct {
	MediaURL string // e.g. https://example.org/wp-json/wp/v2/media
	Username string // application password user
	Password string
}

// MediaClient is a domain.MediaService over the WordPress REST media endpoint.
type MediaClient struct {
	cfg      Config
	hc       *http.Client
	cache    domain.Cache
	cacheTTL time.Duration

	OnCall func(endpoint string, status int, d time.Duration)
}

// New returns a media client. cache may be nil.
func New(cfg Config, cache domain.Cache, ttl time.Duration) (*MediaClient, error) {
	if cfg.MediaURL == "" {
		return nil, fmt.Errorf("media URL is required")
	}
	if _, err := url.Parse(cfg.MediaURL); err != nil {
		return nil, fmt.Errorf("media URL: %w", err)
	}
	return &MediaClient{
		cfg:      cfg,
		hc:       &http.Client{Timeout: 60 * time.Second},
		cache:    cache,
		cacheTTL: ttl,
	}, nil
}

type mediaDTO struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	SourceURL string `json:"source_url"`
}

func (m mediaDTO) item() domain.MediaItem {
	return domain.MediaItem{ID: m.ID, Slug: m.Slug, SourceURL: m.SourceURL}
}

func cacheKey(slug string) string { return "media:" + slug }

// Find looks a media item up by slug. It returns nil, nil when there is none.
func (c *MediaClient) Find(ctx context.Context, slug string) (*domain.MediaItem, error) {
	if it, ok := c.cached(ctx, slug); ok {
		return it, nil
	}

	u, _ := url.Parse(c.cfg.MediaURL)
	q := u.Query()
	q.Set("slug", slug)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.observe("media_find", 0, start)
		return nil, err
	}
	defer resp.Body.Close()
	c.observe("media_find", resp.StatusCode, start)

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("media find %s: status %d: %s", slug, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var found []mediaDTO
	if err := json.NewDecoder(resp.Body).Decode(&found); err != nil {
		return nil, fmt.Errorf("media find %s: %w", slug, err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	it := found[0].item()
	c.remember(ctx, slug, it)
	return &it, nil
}

// Upload posts raw image bytes as a new attachment. A non-2xx answer is
// reported as domain.ErrImageAccessDenied.
func (c *MediaClient) Upload(ctx context.Context, data []byte, filename string) (domain.MediaItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.MediaURL, bytes.NewReader(data))
	if err != nil {
		return domain.MediaItem{}, err
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "jpg" {
		ext = "jpeg"
	}
	req.Header.Set("Content-Type", "image/"+ext)
	req.Header.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.observe("media_upload", 0, start)
		return domain.MediaItem{}, err
	}
	defer resp.Body.Close()
	c.observe("media_upload", resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.MediaItem{}, fmt.Errorf("%w: %s: status %d: %s", domain.ErrImageAccessDenied, filename, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var created mediaDTO
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.MediaItem{}, fmt.Errorf("media upload %s: %w", filename, err)
	}
	it := created.item()
	c.remember(ctx, strings.TrimSuffix(filename, path.Ext(filename)), it)
	return it, nil
}

// cached returns the remembered item for slug. Entries that do not decode or
// carry no id are dropped so the next lookup goes to WordPress.
func (c *MediaClient) cached(ctx context.Context, slug string) (*domain.MediaItem, bool) {
	if c.cache == nil {
		return nil, false
	}
	var it domain.MediaItem
	ok, err := c.cache.Get(ctx, cacheKey(slug), &it)
	if !ok {
		return nil, false
	}
	if err != nil || it.ID <= 0 {
		log.Warn().Err(err).Str("slug", slug).Int64("media_id", it.ID).Msg("dropping unusable media cache entry")
		_ = c.cache.Del(ctx, cacheKey(slug))
		return nil, false
	}
	return &it, true
}

func (c *MediaClient) remember(ctx context.Context, slug string, it domain.MediaItem) {
	if c.cache == nil || it.ID <= 0 {
		return
	}
	_ = c.cache.Set(ctx, cacheKey(slug), it, int(c.cacheTTL.Seconds()))
}

func (c *MediaClient) observe(endpoint string, status int, start time.Time) {
	if c.OnCall != nil {
		c.OnCall(endpoint, status, time.Since(start))
	}
}
