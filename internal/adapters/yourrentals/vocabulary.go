package yourrentals

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"golang.org/x/sync/errgroup"

	"rental_sync/internal/domain"
)

const previewPath = "/modules/preview/directives/views/yr-listing-preview.html"

// GetVocabulary assembles the vocabulary for lang from three independent
// sources, fetched concurrently: the values API (grouped variants), the
// booking page (JS strings) and the preview template (HTML labels).
func (c *Client) GetVocabulary(ctx context.Context, number int64, lang string) (domain.Vocabulary, error) {
	var (
		groups map[string]map[string][]domain.Variant
		js     map[string]string
		html   map[string]string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = c.values(ctx, lang)
		return err
	})
	g.Go(func() error {
		var err error
		js, err = c.jsTranslations(ctx, number, lang)
		return err
	})
	g.Go(func() error {
		var err error
		html, err = c.htmlTranslations(ctx, lang)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Vocabulary{}, err
	}
	return domain.Vocabulary{Groups: groups, JS: js, HTML: html}, nil
}

func (c *Client) values(ctx context.Context, lang string) (map[string]map[string][]domain.Variant, error) {
	u := fmt.Sprintf("%s/listing/values?lang=%s", c.cfg.APIURL, url.QueryEscape(lang))
	body, status, err := c.get(ctx, "values", u, func(r *http.Request) {
		r.Header.Set("Accept", "application/json")
		r.Header.Set("Origin", c.cfg.AppURL)
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("values: status %d", status)
	}
	return decodeGroups(body)
}

// decodeGroups keeps group -> category -> variants and drops anything else
// the values API returns alongside.
func decodeGroups(body []byte) (map[string]map[string][]domain.Variant, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	out := make(map[string]map[string][]domain.Variant, len(top))
	for group, msg := range top {
		var cats map[string]json.RawMessage
		if json.Unmarshal(msg, &cats) != nil {
			continue
		}
		for cat, raw := range cats {
			var vs []domain.Variant
			if json.Unmarshal(raw, &vs) != nil {
				continue
			}
			if out[group] == nil {
				out[group] = map[string][]domain.Variant{}
			}
			out[group][cat] = vs
		}
	}
	return out, nil
}

var translationsRe = regexp.MustCompile(`\s+var translations = (.+);`)

// jsTranslations reads the string table the booking page embeds as a JSON
// string holding a JSON object.
func (c *Client) jsTranslations(ctx context.Context, number int64, lang string) (map[string]string, error) {
	u := fmt.Sprintf("%s/book/property/%d?scid=%s&lang=%s", c.cfg.AppURL, number, url.QueryEscape(c.cfg.SiteID), url.QueryEscape(lang))
	body, status, err := c.get(ctx, "booking_page", u, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("booking page: status %d", status)
	}
	return parseJSTranslations(body)
}

var errNoTranslations = errors.New("booking page: no translations table")

func parseJSTranslations(page []byte) (map[string]string, error) {
	sc := bufio.NewScanner(bytes.NewReader(page))
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		m := translationsRe.FindSubmatch(sc.Bytes())
		if m == nil {
			continue
		}
		var inner string
		if err := json.Unmarshal(m[1], &inner); err != nil {
			return nil, fmt.Errorf("booking page translations: %w", err)
		}
		var table map[string]any
		if err := json.Unmarshal([]byte(inner), &table); err != nil {
			return nil, fmt.Errorf("booking page translations: %w", err)
		}
		out := make(map[string]string, len(table))
		for k, v := range table {
			if s, ok := v.(string); ok {
				out[k] = s
			}
		}
		return out, nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, errNoTranslations
}

func (c *Client) htmlTranslations(ctx context.Context, lang string) (map[string]string, error) {
	body, status, err := c.get(ctx, "preview", c.cfg.AppURL+previewPath, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "lang", Value: lang})
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("preview: status %d", status)
	}
	return parsePreview(body)
}
