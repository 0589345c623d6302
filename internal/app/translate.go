package app

import "rental_sync/internal/domain"

// Translate returns the value of the first variant named exactly like phrase,
// or phrase itself when no variant matches.
func Translate(phrase string, variants []domain.Variant) string {
	for _, v := range variants {
		if v.Name == phrase {
			return v.Value
		}
	}
	return phrase
}

// label resolves a fixed UI string and tags failures with the topic being built.
func label(labels domain.Labels, lang, id, topic, key string) (string, error) {
	s, err := labels.Label(lang, id)
	if err != nil {
		return "", &domain.UnsupportedLanguageError{Lang: lang, Topic: topic, Key: key, Err: err}
	}
	return s, nil
}
