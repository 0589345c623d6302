package app

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"rental_sync/internal/domain"
)

type ImageResult struct {
	URL     string
	MediaID int64
	Reused  bool // already present in the media library
	Keys    []string
}

// ImagePipeline resolves listing images to media library ids, uploading the
// ones the library does not have yet, and writes the gallery/slideshow keys.
type ImagePipeline struct {
	baseURL string
	suffix  string
	media   domain.MediaService
	source  domain.ImageSource
	repo    domain.PostMetaRepository
}

func NewImagePipeline(s Settings, media domain.MediaService, source domain.ImageSource, repo domain.PostMetaRepository) *ImagePipeline {
	suffix := s.ImageFallbackSuffix
	if suffix == "" {
		suffix = defaultImageSuffix
	}
	return &ImagePipeline{
		baseURL: strings.TrimRight(s.ImagesBaseURL, "/"),
		suffix:  suffix,
		media:   media,
		source:  source,
		repo:    repo,
	}
}

// Extract builds one source URL per listing image, in listing order.
func (p *ImagePipeline) Extract(raw domain.RawRecord) []string {
	var out []string
	for _, it := range lookupSlice(raw, "images") {
		img, ok := it.(map[string]any)
		if !ok {
			continue
		}
		filename := lookupStr(img, "filename")
		ext := strings.ToLower(filename[strings.LastIndex(filename, ".")+1:])
		out = append(out, fmt.Sprintf("%s/%s.%s", p.baseURL, lookupStr(img, "src"), ext))
	}
	return out
}

// Upload resolves every URL and persists two keys per resolved image. Images
// that cannot be fetched or are refused by the media service are skipped.
func (p *ImagePipeline) Upload(ctx context.Context, postID int64, urls []string) ([]ImageResult, error) {
	var resolved []ImageResult
	for _, u := range urls {
		res, err := p.resolve(ctx, ParseImageRef(u))
		if err != nil {
			if errors.Is(err, domain.ErrImageAccessDenied) || errors.Is(err, domain.ErrImageUnavailable) {
				log.Warn().Err(err).Str("url", u).Msg("unable to upload image, skipped")
				continue
			}
			return resolved, err
		}
		resolved = append(resolved, res)
	}

	for i := range resolved {
		value := strconv.FormatInt(resolved[i].MediaID, 10)
		for _, tpl := range []string{KeySlideImage, KeyGalleryImage} {
			key := fmt.Sprintf(tpl, i)
			if err := p.repo.UpsertPostMeta(ctx, postID, key, value); err != nil {
				return resolved, fmt.Errorf("upsert %s: %w", key, err)
			}
			resolved[i].Keys = append(resolved[i].Keys, key)
		}
	}
	return resolved, nil
}

func (p *ImagePipeline) resolve(ctx context.Context, ref domain.ImageRef) (ImageResult, error) {
	log.Info().Str("url", ref.URL).Msg("start extract image")

	existing, err := p.media.Find(ctx, ref.BaseName)
	if err != nil {
		return ImageResult{}, fmt.Errorf("find media %s: %w", ref.BaseName, err)
	}
	if existing != nil {
		log.Info().Str("file", ref.Filename).Int64("media_id", existing.ID).Msg("image already in media library")
		return ImageResult{URL: ref.URL, MediaID: existing.ID, Reused: true}, nil
	}

	data, err := p.fetch(ctx, ref.URL)
	if err != nil {
		return ImageResult{}, err
	}
	item, err := p.media.Upload(ctx, data, ref.Filename)
	if err != nil {
		return ImageResult{}, err
	}
	log.Info().Str("file", ref.Filename).Int64("media_id", item.ID).Msg("image inserted in media library")
	return ImageResult{URL: ref.URL, MediaID: item.ID}, nil
}

// fetch tries the original URL, then the suffixed variant once.
func (p *ImagePipeline) fetch(ctx context.Context, u string) ([]byte, error) {
	data, err := p.source.GetImage(ctx, u)
	if err == nil {
		return data, nil
	}
	alt := variantURL(u, p.suffix)
	data, altErr := p.source.GetImage(ctx, alt)
	if altErr != nil {
		return nil, fmt.Errorf("%w: %s (%v), %s (%v)", domain.ErrImageUnavailable, u, err, alt, altErr)
	}
	return data, nil
}

// ParseImageRef derives file name, base name and extension from an image URL.
func ParseImageRef(u string) domain.ImageRef {
	filename := path.Base(u)
	base, ext := filename, ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		base, ext = filename[:i], filename[i+1:]
	}
	return domain.ImageRef{URL: u, Filename: filename, BaseName: base, Extension: ext}
}

// variantURL inserts "-suffix" before the extension: a/b.jpg -> a/b-medium.jpg.
func variantURL(u, suffix string) string {
	i := strings.LastIndex(u, ".")
	if i < 0 || i < strings.LastIndex(u, "/") {
		return u + "-" + suffix
	}
	return u[:i] + "-" + suffix + u[i:]
}
