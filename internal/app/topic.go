package app

import (
	"fmt"
	"strings"

	"rental_sync/internal/domain"
)

const (
	lineBreak = "\n\n<br>"
	paraBreak = "\n\n<br>\n\n<br>"
)

// Transformer is the three-stage contract every topic implements. Localize
// returns a new datum; the extracted value is left untouched.
type Transformer[D any] interface {
	Extract(raw domain.RawRecord) (D, error)
	Localize(d D, lang string, v domain.Vocabulary) (D, error)
	Render(d D) ([]domain.Attribute, error)
}

// Topic is a named transformer with its datum type erased, so the pipeline
// can hold an ordered list of them.
type Topic interface {
	Name() string
	Transform(raw domain.RawRecord, lang string, v domain.Vocabulary) ([]domain.Attribute, error)
}

type topic[D any] struct {
	name string
	t    Transformer[D]
}

func NewTopic[D any](name string, t Transformer[D]) Topic {
	return topic[D]{name: name, t: t}
}

func (t topic[D]) Name() string { return t.name }

func (t topic[D]) Transform(raw domain.RawRecord, lang string, v domain.Vocabulary) ([]domain.Attribute, error) {
	d, err := t.t.Extract(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: extract: %w", t.name, err)
	}
	d, err = t.t.Localize(d, lang, v)
	if err != nil {
		return nil, fmt.Errorf("%s: localize: %w", t.name, err)
	}
	out, err := t.t.Render(d)
	if err != nil {
		return nil, fmt.Errorf("%s: render: %w", t.name, err)
	}
	return out, nil
}

// DefaultTopics returns the topic set in the order the pipeline runs it.
func DefaultTopics(s Settings, labels domain.Labels) []Topic {
	return []Topic{
		NewTopic[DescriptionDatum]("description", Description{}),
		NewTopic[[]Room]("rooms", Bedrooms{Labels: labels}),
		NewTopic[[]Amenity]("amenities", Amenities{Entries: s.Catalog.Amenities, Labels: labels}),
		NewTopic[[]string]("kitchen", FacilityList{Facility: "kitchen", Category: "Kitchen", MetaKey: KeyKitchen}),
		NewTopic[[]string]("livingDining", FacilityList{Facility: "livingDining", Category: "Living Dining", MetaKey: KeyLivingDining}),
		NewTopic[[]string]("outdoor", FacilityList{Facility: "outdoor", Category: "Outdoor", MetaKey: KeyOutdoor}),
		NewTopic[[]string]("miscellaneous", FacilityList{Facility: "miscellaneous", Category: "Miscellaneous", MetaKey: KeyMiscellaneous}),
		NewTopic[DetailsDatum]("details", Details{Catalog: s.Catalog, Labels: labels}),
	}
}

// joinLead joins parts with sep after a leading empty element, so the
// rendered value starts with sep.
func joinLead(parts []string, sep string) string {
	return strings.Join(append([]string{""}, parts...), sep)
}
