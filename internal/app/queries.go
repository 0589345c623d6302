package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"rental_sync/internal/domain"
)

type QueryService struct {
	repo     domain.PostMetaRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.PostMetaRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// PostMeta returns the attributes stored for a post, served from cache when possible.
func (s *QueryService) PostMeta(ctx context.Context, postID int64) ([]domain.Attribute, error) {
	key := postMetaCacheKey(postID)
	var out []domain.Attribute
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &out)
		if ok && err == nil {
			return out, nil
		}
		if ok {
			log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
			_ = s.cache.Del(ctx, key)
		}
	}

	rows, err := s.repo.ListPostMeta(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	out = make([]domain.Attribute, len(rows))
	for i, r := range rows {
		out[i] = domain.Attribute{Key: r.Key, Value: r.Value}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
