package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"rental_sync/internal/domain"
)

type ImportRequest struct {
	Number int64  // listing number on the rentals platform
	PostID int64  // WordPress post receiving the attributes
	Lang   string // e.g. "de"
}

type ImportService struct {
	listings domain.ListingSource
	vocab    domain.VocabularySource
	pipeline *Pipeline
	cache    domain.Cache
}

func NewImportService(l domain.ListingSource, v domain.VocabularySource, p *Pipeline, cache domain.Cache) *ImportService {
	return &ImportService{listings: l, vocab: v, pipeline: p, cache: cache}
}

func (s *ImportService) Import(ctx context.Context, req ImportRequest) (Result, error) {
	// 1) Listing. A permanent skip surfaces unchanged so callers can tell it apart.
	raw, err := s.listings.GetListing(ctx, req.Number)
	if err != nil {
		return Result{}, fmt.Errorf("listing %d: %w", req.Number, err)
	}
	log.Info().Int64("number", req.Number).Msg("gotten raw listing")

	// 2) Vocabulary for the requested language.
	vocab, err := s.vocab.GetVocabulary(ctx, req.Number, req.Lang)
	if err != nil {
		return Result{}, fmt.Errorf("vocabulary %d/%s: %w", req.Number, req.Lang, err)
	}
	log.Info().Str("lang", req.Lang).Msg("gotten vocabulary")

	// 3) Transform and persist. Even a failed run may have written keys, so the
	// read cache is dropped either way.
	res, err := s.pipeline.Run(ctx, Input{
		PropertyID: req.Number,
		PostID:     req.PostID,
		Lang:       req.Lang,
		Raw:        raw,
		Vocabulary: vocab,
	})
	if s.cache != nil {
		s.invalidatePostMeta(ctx, req.PostID)
	}
	return res, err
}

func (s *ImportService) invalidatePostMeta(ctx context.Context, postID int64) {
	_ = s.cache.Del(ctx, postMetaCacheKey(postID))
}

func postMetaCacheKey(postID int64) string { return fmt.Sprintf("postmeta:%d", postID) }
