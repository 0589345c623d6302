package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPermanentSkip marks a listing that must not be imported (inactive,
	// never published, or an unparsable payload). It is never retried.
	ErrPermanentSkip = errors.New("listing: permanent skip")

	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrImageAccessDenied is returned by the media service on a non-2xx upload.
	ErrImageAccessDenied = errors.New("media: upload denied")

	// ErrImageUnavailable is returned when no source variant of an image could be fetched.
	ErrImageUnavailable = errors.New("image: source unavailable")

	ErrNotFound = errors.New("not found")
)

// UnsupportedLanguageError reports a language-specific branch that could not be resolved.
type UnsupportedLanguageError struct {
	Lang  string
	Topic string
	Key   string
	Err   error
}

func (e *UnsupportedLanguageError) Error() string {
	msg := fmt.Sprintf("unsupported language %q for topic %q and meta key %q", e.Lang, e.Topic, e.Key)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnsupportedLanguageError) Unwrap() error { return e.Err }

func (e *UnsupportedLanguageError) Is(target error) bool { return target == ErrUnsupportedLanguage }
