package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"rental_sync/internal/domain"
)

// StepResult lists the keys one topic or script wrote.
type StepResult struct {
	Name string
	Keys []string
}

type Result struct {
	Topics  []StepResult
	Scripts []StepResult
	Images  []ImageResult

	ImagesFound int // image URLs in the listing, resolved or not
}

// Input is everything one pipeline run needs about the property.
type Input struct {
	PropertyID int64
	PostID     int64
	Lang       string
	Raw        domain.RawRecord
	Vocabulary domain.Vocabulary
}

// Pipeline runs topics, scripts and images, in that order, for one post.
type Pipeline struct {
	repo    domain.PostMetaRepository
	topics  []Topic
	scripts []Script
	images  *ImagePipeline
}

func NewPipeline(s Settings, repo domain.PostMetaRepository, media domain.MediaService, source domain.ImageSource, labels domain.Labels) *Pipeline {
	return &Pipeline{
		repo:    repo,
		topics:  DefaultTopics(s, labels),
		scripts: DefaultScripts(s),
		images:  NewImagePipeline(s, media, source, repo),
	}
}

// Run stops at the first topic or script failure; image failures are
// handled per image by the image pipeline.
func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	var res Result

	for _, t := range p.topics {
		attrs, err := t.Transform(in.Raw, in.Lang, in.Vocabulary)
		if err != nil {
			return res, err
		}
		keys, err := p.persist(ctx, in.PostID, attrs)
		if err != nil {
			return res, fmt.Errorf("%s: %w", t.Name(), err)
		}
		res.Topics = append(res.Topics, StepResult{Name: t.Name(), Keys: keys})
		log.Info().Str("topic", t.Name()).Msg("parameter extracted")
	}
	log.Info().Int("topics", len(res.Topics)).Msg("all topics extracted")

	for _, s := range p.scripts {
		markup, err := s.Markup(in.PropertyID, in.Lang, in.Raw)
		if err != nil {
			return res, fmt.Errorf("%s: %w", s.Name(), err)
		}
		keys, err := p.persist(ctx, in.PostID, []domain.Attribute{{Key: s.Key(), Value: markup}})
		if err != nil {
			return res, fmt.Errorf("%s: %w", s.Name(), err)
		}
		res.Scripts = append(res.Scripts, StepResult{Name: s.Name(), Keys: keys})
		log.Info().Str("script", s.Name()).Msg("script added")
	}

	urls := p.images.Extract(in.Raw)
	res.ImagesFound = len(urls)
	images, err := p.images.Upload(ctx, in.PostID, urls)
	res.Images = images
	if err != nil {
		return res, fmt.Errorf("images: %w", err)
	}
	log.Info().Int("found", len(urls)).Int("resolved", len(images)).Msg("all images extracted")

	return res, nil
}

func (p *Pipeline) persist(ctx context.Context, postID int64, attrs []domain.Attribute) ([]string, error) {
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if err := p.repo.UpsertPostMeta(ctx, postID, a.Key, a.Value); err != nil {
			return keys, fmt.Errorf("upsert %s: %w", a.Key, err)
		}
		keys = append(keys, a.Key)
	}
	return keys, nil
}
