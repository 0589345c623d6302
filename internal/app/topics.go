package app

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"rental_sync/internal/domain"
)

/********** description **********/

type DescriptionEntry struct {
	Code     string
	Headline string
	Summary  string
	Body     string
}

type DescriptionDatum struct {
	Entries []DescriptionEntry
	Chosen  DescriptionEntry
}

// Description renders the page body and the slide headlines.
type Description struct{}

func (Description) Extract(raw domain.RawRecord) (DescriptionDatum, error) {
	var d DescriptionDatum
	var items []any
	items = append(items, lookupSlice(raw, "translatedDescriptions.translated")...)
	items = append(items, lookupSlice(raw, "description")...)
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		d.Entries = append(d.Entries, DescriptionEntry{
			Code:     lookupStr(m, "code"),
			Headline: lookupStr(m, "headline"),
			Summary:  lookupStr(m, "summary"),
			Body:     lookupStr(m, "description"),
		})
	}
	return d, nil
}

// Localize picks the entry for lang, then an English one, then the first.
func (Description) Localize(d DescriptionDatum, lang string, _ domain.Vocabulary) (DescriptionDatum, error) {
	if _, err := language.Parse(lang); err != nil {
		return d, &domain.UnsupportedLanguageError{Lang: lang, Topic: "description", Key: KeyDescription, Err: err}
	}
	if len(d.Entries) == 0 {
		return d, errors.New("listing has no description")
	}
	out := DescriptionDatum{Entries: d.Entries, Chosen: d.Entries[0]}
	want := strings.ToUpper(lang)
	for _, e := range d.Entries {
		if e.Code == want {
			out.Chosen = e
			return out, nil
		}
		if e.Code == "en" || e.Code == "EN" {
			out.Chosen = e
		}
	}
	return out, nil
}

func (Description) Render(d DescriptionDatum) ([]domain.Attribute, error) {
	e := d.Chosen
	body := fmt.Sprintf("<h1>%s</h1>\n\n<br><strong>%s</strong>\n\n<br>\n\n<br>%s",
		e.Headline,
		strings.ReplaceAll(e.Summary, "\n- ", "\n\n<br>\n- "),
		strings.ReplaceAll(e.Body, "\n", "\n\n<br>\n"),
	)
	out := []domain.Attribute{{Key: KeyDescription, Value: body}}
	for i := 0; i < slideSlots; i++ {
		out = append(out, domain.Attribute{Key: fmt.Sprintf(KeySlideTitle, i), Value: e.Headline})
	}
	return out, nil
}

/********** bedrooms **********/

type Room struct {
	Type     string
	Index    int
	BedName  string
	BedCount string
}

// Bedrooms lists every bedroom, numbering rooms of the same type 1, 2, 3…
type Bedrooms struct {
	Labels domain.Labels
}

func (Bedrooms) Extract(raw domain.RawRecord) ([]Room, error) {
	var out []Room
	counter := map[string]int{}
	for _, it := range lookupSlice(raw, "rooms.bedrooms.rooms") {
		m, ok := it.(map[string]any)
		if !ok || len(m) == 0 {
			continue
		}
		rawType := lookupStr(m, "type")
		counter[rawType]++

		typ := rawType
		if typ == "" {
			typ = lookupStr(m, "name")
		}
		r := Room{Type: typ, Index: counter[rawType]}
		if beds := lookupSlice(m, "beds"); len(beds) > 0 {
			if bed, ok := beds[0].(map[string]any); ok {
				r.BedName = lookupStr(bed, "name")
				r.BedCount = numText(bed["number"])
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (b Bedrooms) Localize(rooms []Room, lang string, v domain.Vocabulary) ([]Room, error) {
	beds := v.Category("Beds", "Bedroom beds")
	out := make([]Room, len(rooms))
	for i, r := range rooms {
		r.BedName = Translate(r.BedName, beds)
		if r.Type == "Bedroom" {
			s, err := label(b.Labels, lang, "bedroom", "rooms", KeyBedrooms)
			if err != nil {
				return nil, err
			}
			r.Type = s
		}
		out[i] = r
	}
	return out, nil
}

func (Bedrooms) Render(rooms []Room) ([]domain.Attribute, error) {
	texts := make([]string, 0, len(rooms))
	for _, r := range rooms {
		texts = append(texts, fmt.Sprintf("%s %d:\n\n<br>%s %s", r.Type, r.Index, r.BedCount, strings.ToLower(r.BedName)))
	}
	return []domain.Attribute{{Key: KeyBedrooms, Value: joinLead(texts, paraBreak)}}, nil
}

/********** amenities **********/

type Amenity struct {
	Key         string
	Name        string
	Description *string
	Available   bool
	NoLabel     string
}

// Amenities renders the configured amenity set; missing ones are greyed out.
type Amenities struct {
	Entries []domain.Entry
	Labels  domain.Labels
}

func (a Amenities) Extract(raw domain.RawRecord) ([]Amenity, error) {
	facilities, ok := lookupMap(raw, "facilities")
	if !ok {
		return nil, errors.New("listing has no facilities")
	}
	out := make([]Amenity, 0, len(a.Entries))
	for _, e := range a.Entries {
		am := Amenity{Key: e.Key}
		if s, ok := facilities[e.Key].(string); ok {
			am.Description = &s
			am.Available = !strings.HasPrefix(s, "No ")
		}
		out = append(out, am)
	}
	return out, nil
}

func (a Amenities) Localize(items []Amenity, lang string, v domain.Vocabulary) ([]Amenity, error) {
	no, err := label(a.Labels, lang, "no", "amenities", KeyAmenities)
	if err != nil {
		return nil, err
	}
	out := make([]Amenity, len(items))
	for i, am := range items {
		am.Name = v.HTMLLabel(am.Key)
		if am.Description != nil {
			cat, _ := domain.CategoryFor(a.Entries, am.Key)
			s := Translate(*am.Description, v.Category("Facilities", cat))
			am.Description = &s
		}
		am.NoLabel = no
		out[i] = am
	}
	return out, nil
}

func (Amenities) Render(items []Amenity) ([]domain.Attribute, error) {
	texts := make([]string, 0, len(items))
	for _, am := range items {
		style, text := "", am.Name
		if !am.Available {
			style = `style="color: #999999;opacity: 0.5;"`
			text = am.NoLabel + " " + am.Name
		}
		texts = append(texts, fmt.Sprintf("<span %s>%s</span>", style, text))
	}
	return []domain.Attribute{{Key: KeyAmenities, Value: joinLead(texts, lineBreak)}}, nil
}

/********** facility lists **********/

// FacilityList covers kitchen, living/dining, outdoor and miscellaneous, which
// differ only in the facility key and the vocabulary category.
type FacilityList struct {
	Facility string
	Category string
	MetaKey  string
}

func (f FacilityList) Extract(raw domain.RawRecord) ([]string, error) {
	return lookupStrings(raw, "facilities."+f.Facility), nil
}

func (f FacilityList) Localize(items []string, _ string, v domain.Vocabulary) ([]string, error) {
	variants := v.Category("Facilities", f.Category)
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = Translate(s, variants)
	}
	return out, nil
}

func (f FacilityList) Render(items []string) ([]domain.Attribute, error) {
	return []domain.Attribute{{Key: f.MetaKey, Value: joinLead(items, lineBreak)}}, nil
}
