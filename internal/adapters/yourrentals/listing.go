package yourrentals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"rental_sync/internal/domain"
)

// GetListing fetches the guest payload of a listing. Listings that answer
// with a non-200 status, broken JSON, or that are inactive or were never
// published are reported as domain.ErrPermanentSkip.
func (c *Client) GetListing(ctx context.Context, number int64) (domain.RawRecord, error) {
	url := fmt.Sprintf("%s/listing/guest/%d/%s", c.cfg.APIURL, number, c.cfg.SiteID)
	body, status, err := c.get(ctx, "listing", url, func(r *http.Request) {
		r.Header.Set("Accept", "application/json")
	})
	if err != nil {
		return nil, err
	}

	var raw domain.RawRecord
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: broken listing data: %v", domain.ErrPermanentSkip, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: listing answered %d", domain.ErrPermanentSkip, status)
	}
	if !usable(raw) {
		return nil, fmt.Errorf("%w: listing is inactive or unpublished", domain.ErrPermanentSkip)
	}
	if keys := objectKeyOrder(body, "suitability"); len(keys) > 0 {
		order := make([]any, len(keys))
		for i, k := range keys {
			order[i] = k
		}
		raw[domain.SuitabilityOrderKey] = order
	}
	return raw, nil
}

// objectKeyOrder returns the keys of the top-level object field in payload
// order, first occurrence wins. nil when the field is missing or not an object.
func objectKeyOrder(body []byte, field string) []string {
	dec := json.NewDecoder(bytes.NewReader(body))
	if t, err := dec.Token(); err != nil || t != json.Delim('{') {
		return nil
	}
	var skip json.RawMessage
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil
		}
		if name, _ := t.(string); name != field {
			if dec.Decode(&skip) != nil {
				return nil
			}
			continue
		}
		if t, err := dec.Token(); err != nil || t != json.Delim('{') {
			return nil
		}
		var keys []string
		seen := map[string]bool{}
		for dec.More() {
			t, err := dec.Token()
			if err != nil {
				return nil
			}
			k, _ := t.(string)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
			if dec.Decode(&skip) != nil {
				return nil
			}
		}
		return keys
	}
	return nil
}

// usable: active defaults to true, published/wasPublished to false.
func usable(raw domain.RawRecord) bool {
	active := true
	if v, ok := raw["active"].(bool); ok {
		active = v
	}
	published, _ := raw["published"].(bool)
	wasPublished, _ := raw["wasPublished"].(bool)
	return active && (published || wasPublished)
}

// GetImage downloads image bytes; any non-200 answer is an error.
func (c *Client) GetImage(ctx context.Context, url string) ([]byte, error) {
	body, status, err := c.get(ctx, "image", url, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("image %s: status %d", url, status)
	}
	return body, nil
}
