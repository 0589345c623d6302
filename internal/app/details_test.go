package app_test

import (
	"strings"
	"testing"

	"rental_sync/internal/app"
	"rental_sync/internal/domain"
)

func renderDetails(t *testing.T, raw domain.RawRecord, lang string) string {
	t.Helper()
	d := app.Details{Catalog: testCatalog, Labels: testLabels}
	attrs, err := app.NewTopic[app.DetailsDatum]("details", d).Transform(raw, lang, testVocabulary())
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	return attrValue(t, attrs, app.KeyDetails)
}

func TestDetails_FactsAndRules(t *testing.T) {
	raw := decodeRaw(t, `{
		"rentalType": "Apartment",
		"floorspace": {"amount": 80, "units": "m2"},
		"basicRates": {"maximumGuests": 4},
		"rooms": {"bedrooms": {"numbers": 0, "rooms": []}, "bathrooms": {"numbers": 1}},
		"suitability": {
			"smoking": "Smoking not allowed",
			"pets": "Pets allowed",
			"petsCount": 2,
			"petFeeBasis": "per pet",
			"children": true,
			"wheelchair": "",
			"eventsOrParties": "Events allowed"
		}
	}`)

	got := renderDetails(t, raw, "en")
	facts := "\n\n<br>Type: Apartment\n\n<br>Space: 80m²\n\n<br>4 guests (max: 4)\n\n<br>0 bedrooms\n\n<br>0 beds\n\n<br>1 bathrooms"
	rules := "<strong>House rules</strong>\n\n<br>\n\n<br>Rauchen verboten\n\n<br>Pets allowed\n\n<br>Events allowed (on request)"
	if want := facts + "\n\n<br>\n\n<br>" + rules; got != want {
		t.Fatalf("details:\n got %q\nwant %q", got, want)
	}
}

func TestDetails_GermanTypeLabelAndMaxBeds(t *testing.T) {
	raw := decodeRaw(t, `{
		"rentalType": "Villa",
		"rooms": {"bedrooms": {"numbers": 2, "rooms": [
			{"type": "Bedroom", "beds": [{"number": 1}, {"number": 3}]},
			null,
			{"type": "Bedroom", "beds": [{"number": 2}]}
		]}}
	}`)
	got := renderDetails(t, raw, "de")
	if !strings.HasPrefix(got, "\n\n<br>Immobilie: Villa\n\n<br>2 bedrooms\n\n<br>3 beds\n\n<br>0 bathrooms") {
		t.Fatalf("facts: %q", got)
	}
	// no floorspace / basicRates: optional lines omitted
	if strings.Contains(got, "Space") || strings.Contains(got, "guests") {
		t.Fatalf("optional facts rendered: %q", got)
	}
	// no extras section: block omitted
	if strings.Contains(got, "Fees") {
		t.Fatalf("extras block rendered without section: %q", got)
	}
}

func TestDetails_ExtrasAndServices(t *testing.T) {
	raw := decodeRaw(t, `{
		"rentalType": "Apartment",
		"rooms": {},
		"extrasAndServices": {
			"cleaning": {"fee": 50, "feeBasis": "per stay"},
			"taxes": {"fee": 3, "feeBasis": "per night"},
			"extras": [
				{"name": "Towels", "fee": 0, "feeBasis": "per person"},
				{"name": "Bike", "fee": 12.5, "feeBasis": "per day"},
				{"name": "Crib", "feeBasis": "on request"}
			]
		}
	}`)
	got := renderDetails(t, raw, "de")
	want := "<strong>Fees</strong>\n\n<br>" +
		"\n\n<br>Endreinigung: 50 € (pro Aufenthalt)" +
		"\n\n<br>Handtücher: <b>free</b>" +
		"\n\n<br>Bike: <b>12.5 € pro Tag</b>" +
		"\n\n<br>Crib: on request"
	if !strings.Contains(got, want) {
		t.Fatalf("extras block missing:\n got %q\nwant substring %q", got, want)
	}
	if strings.Contains(got, "per night") {
		t.Fatalf("taxes must not be rendered: %q", got)
	}
}

func TestDetails_EmptyExtrasFallback(t *testing.T) {
	raw := decodeRaw(t, `{"rentalType": "Apartment", "rooms": {}, "extrasAndServices": {"taxes": {"fee": 1}}}`)
	got := renderDetails(t, raw, "de")
	if !strings.Contains(got, "<strong>Fees</strong>\n\n<br>\n\n<br>Keine\n\n<br>\n\n<br><strong>House rules</strong>") {
		t.Fatalf("zero extras fallback missing: %q", got)
	}
}

func TestDetails_LocalizeDoesNotMutate(t *testing.T) {
	d := app.Details{Catalog: testCatalog, Labels: testLabels}
	raw := decodeRaw(t, `{"rentalType": "Apartment", "floorspace": {"amount": 1, "units": "m2"}, "rooms": {},
		"extrasAndServices": {"cleaning": {"fee": 5, "feeBasis": "per stay"}}}`)
	ex, err := d.Extract(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if _, err := d.Localize(ex, "de", testVocabulary()); err != nil {
		t.Fatalf("localize: %v", err)
	}
	if ex.Facts.TypeLabel != "Type" || ex.Facts.Floorspace.Label != "" || ex.Extras.Cleaning.Name != "Cleaning" {
		t.Fatalf("extracted datum changed: %+v", ex)
	}
}

func TestDetails_MissingRooms(t *testing.T) {
	d := app.Details{Catalog: testCatalog, Labels: testLabels}
	if _, err := d.Extract(domain.RawRecord{"rentalType": "Apartment"}); err == nil {
		t.Fatalf("expected error without rooms section")
	}
}

func TestDetails_RulesFollowPayloadOrder(t *testing.T) {
	raw := decodeRaw(t, `{
		"rentalType": "Apartment",
		"rooms": {"bathrooms": {"numbers": 1}},
		"suitability": {
			"eventsOrParties": "Events allowed",
			"pets": "Pets allowed",
			"smoking": "Smoking not allowed"
		}
	}`)
	raw[domain.SuitabilityOrderKey] = []any{"eventsOrParties", "pets", "smoking"}

	got := renderDetails(t, raw, "en")
	want := "<strong>House rules</strong>\n\n<br>\n\n<br>Events allowed (on request)\n\n<br>Pets allowed\n\n<br>Rauchen verboten"
	if !strings.HasSuffix(got, want) {
		t.Fatalf("rules:\n got %q\nwant suffix %q", got, want)
	}
}
