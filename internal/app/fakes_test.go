package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"rental_sync/internal/app"
	"rental_sync/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	rows  map[int64]map[string]string
	calls int
	fail  map[string]error
}

func newFakeRepo() *fakeRepo { return &fakeRepo{rows: map[int64]map[string]string{}} }

func (f *fakeRepo) UpsertPostMeta(ctx context.Context, postID int64, key, value string) error {
	f.calls++
	if err := f.fail[key]; err != nil {
		return err
	}
	if f.rows[postID] == nil {
		f.rows[postID] = map[string]string{}
	}
	f.rows[postID][key] = value
	return nil
}

func (f *fakeRepo) ListPostMeta(ctx context.Context, postID int64) ([]domain.PostMeta, error) {
	var out []domain.PostMeta
	for k, v := range f.rows[postID] {
		out = append(out, domain.PostMeta{PostID: postID, Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type fakeLabels map[string]map[string]string

var testLabels = fakeLabels{
	"en": {"bedroom": "Bedroom", "no": "No", "property_type": "Type", "none": "None", "cleaning": "Cleaning"},
	"de": {"bedroom": "Schlafzimmer", "no": "Keine", "property_type": "Immobilie", "none": "Keine", "cleaning": "Endreinigung"},
}

func (f fakeLabels) Label(lang, id string) (string, error) {
	if lang == "" || lang == "??" {
		return "", errors.New("bad language tag")
	}
	if s, ok := f[lang][id]; ok {
		return s, nil
	}
	if s, ok := f["en"][id]; ok {
		return s, nil
	}
	return "", errors.New("message not found")
}

type fakeMedia struct {
	existing map[string]int64
	nextID   int64
	denied   map[string]bool
	uploads  []string
}

func (f *fakeMedia) Find(ctx context.Context, slug string) (*domain.MediaItem, error) {
	if id, ok := f.existing[slug]; ok {
		return &domain.MediaItem{ID: id, Slug: slug}, nil
	}
	return nil, nil
}

func (f *fakeMedia) Upload(ctx context.Context, data []byte, filename string) (domain.MediaItem, error) {
	f.uploads = append(f.uploads, filename)
	if f.denied[filename] {
		return domain.MediaItem{}, domain.ErrImageAccessDenied
	}
	f.nextID++
	return domain.MediaItem{ID: f.nextID}, nil
}

type fakeSource struct {
	missing map[string]bool
	calls   []string
}

func (f *fakeSource) GetImage(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	if f.missing[url] {
		return nil, errors.New("status 404")
	}
	return []byte("img:" + url), nil
}

// ---- fixtures ----

var testCatalog = domain.Catalog{
	Amenities: []domain.Entry{
		{Key: "internet", Category: "Internet"},
		{Key: "washingMachine", Category: "Washing machine"},
		{Key: "swimmingPool", Category: "Swimming pool"},
	},
	Suitability: []domain.Entry{
		{Key: "smoking", Category: "Smoking"},
		{Key: "pets", Category: "Pets"},
		{Key: "wheelchair", Category: "Wheelchair access"},
		{Key: "eventsOrParties", Category: "Events or parties"},
		{Key: "children", Category: "Children"},
	},
	SuitabilityIgnore: []string{"petsCount", "petFeeBasis"},
}

func testSettings() app.Settings {
	return app.Settings{
		Catalog:          testCatalog,
		ImagesBaseURL:    "https://img.example/listing",
		GoogleMapsKey:    "maps-key",
		BookingWidgetURL: "https://app.example/widget.js",
		BookingSiteID:    "AUTE",
		BookingTheme:     "theme1",
	}
}

const listingJSON = `{
  "active": true,
  "published": true,
  "rentalType": "Apartment",
  "floorspace": {"amount": 80, "units": "m2"},
  "basicRates": {"maximumGuests": 4},
  "translatedDescriptions": {"translated": [
    {"code": "FR", "headline": "Bonjour", "summary": "Résumé", "description": "Texte"}
  ]},
  "description": [
    {"code": "EN", "headline": "Hello", "summary": "Intro\n- a", "description": "Line1\nLine2"}
  ],
  "rooms": {
    "bedrooms": {"numbers": 2, "rooms": [
      {"type": "Bedroom", "beds": [{"name": "Double bed", "number": 1}]},
      {"type": "Studio", "beds": [{"name": "Sofa bed", "number": 2}]}
    ]},
    "bathrooms": {"numbers": 1}
  },
  "facilities": {
    "internet": "Wifi",
    "washingMachine": "No washing machine",
    "swimmingPool": null,
    "kitchen": ["Oven", "Fridge"],
    "livingDining": ["Sofa"],
    "outdoor": [],
    "miscellaneous": ["Iron"]
  },
  "suitability": {
    "smoking": "Smoking not allowed",
    "pets": "Pets allowed",
    "petsCount": 2,
    "children": true,
    "wheelchair": "",
    "eventsOrParties": "Events allowed"
  },
  "location": {"latitude": 52.52, "longitude": 13.405},
  "images": [
    {"filename": "front.JPG", "src": "p/1/a"},
    {"filename": "back.jpg", "src": "p/1/b"}
  ]
}`

func decodeRaw(t *testing.T, s string) domain.RawRecord {
	t.Helper()
	var raw domain.RawRecord
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return raw
}

func testVocabulary() domain.Vocabulary {
	return domain.Vocabulary{
		Groups: map[string]map[string][]domain.Variant{
			"Facilities": {
				"Kitchen":         {{Name: "Oven", Value: "Backofen"}, {Name: "Fridge", Value: "Kühlschrank"}},
				"Internet":        {{Name: "Wifi", Value: "WLAN"}},
				"Washing machine": {{Name: "No washing machine", Value: "Keine Waschmaschine"}},
			},
			"Beds": {
				"Bedroom beds": {{Name: "Double bed", Value: "Doppelbett"}},
			},
			"House rules": {
				"Smoking": {{Name: "Smoking not allowed", Value: "Rauchen verboten"}},
			},
			"Extras": {
				"OptionalExtras":      {{Name: "Towels", Value: "Handtücher"}},
				"OptionalExtrasBasis": {{Name: "per day", Value: "pro Tag"}},
			},
		},
		JS: map[string]string{"maximum": "max", "bedrooms": "bedrooms", "beds": "beds", "per stay": "pro Aufenthalt"},
		HTML: map[string]string{
			"space": "Space", "guests": "guests", "bathroom": "bathrooms",
			"houseRules": "House rules", "eventsOrParties": "(on request)",
			"feesAndExtras": "Fees", "free": "free",
			"internet": "Internet", "washingMachine": "Washing machine", "swimmingPool": "Pool",
		},
	}
}

func attrValue(t *testing.T, attrs []domain.Attribute, key string) string {
	t.Helper()
	for _, a := range attrs {
		if a.Key == key {
			return a.Value
		}
	}
	t.Fatalf("key %s not rendered; got %+v", key, attrs)
	return ""
}
