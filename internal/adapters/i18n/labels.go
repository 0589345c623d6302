package i18n

import (
	"embed"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"rental_sync/internal/domain"
)

//go:embed active.*.toml
var localeFS embed.FS

var _ domain.Labels = (*Labels)(nil)

// Labels serves the fixed UI strings the rentals vocabulary does not carry
// (room type, "No", property type, "None", cleaning).
type Labels struct {
	bundle   *i18n.Bundle
	fallback language.Tag
}

// NewLabels loads the embedded message files; English is the fallback.
func NewLabels() (*Labels, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.de.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: load %s: %w", file, err)
		}
	}
	return &Labels{bundle: bundle, fallback: language.English}, nil
}

// Label resolves id for lang, falling back to English. An unparseable lang
// or an unknown id is an error.
func (l *Labels) Label(lang, id string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", fmt.Errorf("language tag %q: %w", lang, err)
	}
	localizer := i18n.NewLocalizer(l.bundle, tag.String(), l.fallback.String())
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		log.Debug().Err(err).Str("lang", lang).Str("id", id).Msg("label lookup failed")
		return "", err
	}
	return msg, nil
}

// Languages lists the languages with their own message file.
func (l *Labels) Languages() []string {
	tags := l.bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	return out
}
