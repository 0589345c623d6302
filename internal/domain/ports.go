package domain

import "context"

type PostMetaRepository interface {
	UpsertPostMeta(ctx context.Context, postID int64, key, value string) error
	ListPostMeta(ctx context.Context, postID int64) ([]PostMeta, error)
}

type ListingSource interface {
	// GetListing returns ErrPermanentSkip (wrapped) for inactive, unpublished or
	// unparsable listings; any other error is a transport failure.
	GetListing(ctx context.Context, number int64) (RawRecord, error)
}

type VocabularySource interface {
	GetVocabulary(ctx context.Context, number int64, lang string) (Vocabulary, error)
}

type ImageSource interface {
	GetImage(ctx context.Context, url string) ([]byte, error)
}

type MediaService interface {
	// Find returns nil, nil when no media item has the given slug.
	Find(ctx context.Context, slug string) (*MediaItem, error)
	Upload(ctx context.Context, data []byte, filename string) (MediaItem, error)
}

// Labels resolves fixed UI strings that the vocabulary does not carry.
type Labels interface {
	Label(lang, id string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
