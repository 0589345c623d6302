package app

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rental_sync/internal/domain"
)

type CountFact struct {
	Number int
	Label  string
}

type Floorspace struct {
	Amount string
	Units  string
	Label  string
}

type GuestFact struct {
	Number   int
	Label    string
	MaxLabel string
}

type Facts struct {
	TypeLabel  string
	RentalType string
	Floorspace *Floorspace
	Guests     *GuestFact
	Bedrooms   CountFact
	Beds       CountFact
	Bathrooms  CountFact
}

type Extra struct {
	Name     string
	Fee      *float64 // nil when the extra has no fee field
	FeeBasis string
}

type ExtrasAndServices struct {
	Title     string
	FreeLabel string
	NoneLabel string
	Cleaning  *Extra
	Extras    []Extra
}

type RuleItem struct {
	Key  string
	Text string
}

type Rules struct {
	Title string
	Items []RuleItem
}

type DetailsDatum struct {
	Facts  Facts
	Extras *ExtrasAndServices // nil when the listing has no extras section
	Rules  Rules
}

// Details renders the facts, fees and house rules block.
type Details struct {
	Catalog domain.Catalog
	Labels  domain.Labels
}

func (d Details) Extract(raw domain.RawRecord) (DetailsDatum, error) {
	facts, err := extractFacts(raw)
	if err != nil {
		return DetailsDatum{}, err
	}
	return DetailsDatum{
		Facts:  facts,
		Extras: extractExtras(raw),
		Rules:  Rules{Title: "houseRules", Items: d.extractRules(raw)},
	}, nil
}

func extractFacts(raw domain.RawRecord) (Facts, error) {
	if _, ok := lookupMap(raw, "rooms"); !ok {
		return Facts{}, errors.New("listing has no rooms section")
	}
	f := Facts{
		TypeLabel:  "Type",
		RentalType: lookupStr(raw, "rentalType"),
		Bedrooms:   CountFact{Number: lookupInt(raw, "rooms.bedrooms.numbers", 0)},
		Bathrooms:  CountFact{Number: lookupInt(raw, "rooms.bathrooms.numbers", 0)},
	}
	if fs, ok := lookupMap(raw, "floorspace"); ok && len(fs) > 0 {
		amount := "0"
		if v, ok := fs["amount"]; ok {
			amount = numText(v)
		}
		f.Floorspace = &Floorspace{Amount: amount, Units: lookupStr(fs, "units")}
	}
	if _, ok := lookupMap(raw, "basicRates"); ok {
		f.Guests = &GuestFact{Number: lookupInt(raw, "basicRates.maximumGuests", 0)}
	}

	maxBeds := 0
	for _, it := range lookupSlice(raw, "rooms.bedrooms.rooms") {
		room, ok := it.(map[string]any)
		if !ok || len(room) == 0 {
			continue
		}
		for _, b := range lookupSlice(room, "beds") {
			if bed, ok := b.(map[string]any); ok {
				if n := lookupInt(bed, "number", 0); n > maxBeds {
					maxBeds = n
				}
			}
		}
	}
	f.Beds = CountFact{Number: maxBeds}
	return f, nil
}

func extractExtras(raw domain.RawRecord) *ExtrasAndServices {
	section, ok := lookupMap(raw, "extrasAndServices")
	if !ok {
		return nil
	}
	es := &ExtrasAndServices{Title: "feesAndExtras"}
	// taxes are never shown
	if c, ok := section["cleaning"].(map[string]any); ok {
		cleaning := toExtra(c)
		cleaning.Name = "Cleaning"
		es.Cleaning = &cleaning
	}
	for _, it := range lookupSlice(section, "extras") {
		if m, ok := it.(map[string]any); ok {
			es.Extras = append(es.Extras, toExtra(m))
		}
	}
	return es
}

func toExtra(m map[string]any) Extra {
	e := Extra{Name: lookupStr(m, "name"), FeeBasis: lookupStr(m, "feeBasis")}
	switch v := m["fee"].(type) {
	case float64:
		e.Fee = &v
	case int:
		f := float64(v)
		e.Fee = &f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			e.Fee = &f
		}
	}
	return e
}

func (d Details) extractRules(raw domain.RawRecord) []RuleItem {
	suitability, _ := lookupMap(raw, "suitability")
	ignore := make(map[string]struct{}, len(d.Catalog.SuitabilityIgnore))
	for _, k := range d.Catalog.SuitabilityIgnore {
		ignore[k] = struct{}{}
	}

	var items []RuleItem
	for k, v := range suitability {
		if _, skip := ignore[k]; skip || isScalar(v) || isFalsy(v) {
			continue
		}
		items = append(items, RuleItem{Key: k, Text: numText(v)})
	}

	// payload order when the source recorded it, catalog order otherwise;
	// keys missing from either go last by name
	order := lookupStrings(raw, domain.SuitabilityOrderKey)
	if len(order) == 0 {
		for _, e := range d.Catalog.Suitability {
			order = append(order, e.Key)
		}
	}
	rank := func(k string) int {
		for i, o := range order {
			if o == k {
				return i
			}
		}
		return len(order)
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := rank(items[i].Key), rank(items[j].Key)
		if ri != rj {
			return ri < rj
		}
		return items[i].Key < items[j].Key
	})
	return items
}

func (d Details) Localize(in DetailsDatum, lang string, v domain.Vocabulary) (DetailsDatum, error) {
	out := DetailsDatum{}

	facts, err := d.localizeFacts(in.Facts, lang, v)
	if err != nil {
		return out, err
	}
	out.Facts = facts

	if in.Extras != nil {
		es, err := d.localizeExtras(*in.Extras, lang, v)
		if err != nil {
			return out, err
		}
		out.Extras = &es
	}

	out.Rules = d.localizeRules(in.Rules, v)
	return out, nil
}

func (d Details) localizeFacts(f Facts, lang string, v domain.Vocabulary) (Facts, error) {
	typeLabel, err := label(d.Labels, lang, "property_type", "details", KeyDetails)
	if err != nil {
		return f, err
	}
	f.TypeLabel = typeLabel
	if f.Floorspace != nil {
		fs := *f.Floorspace
		fs.Label = v.HTMLLabel("space")
		f.Floorspace = &fs
	}
	if f.Guests != nil {
		g := *f.Guests
		g.Label = v.HTMLLabel("guests")
		g.MaxLabel = v.JSLabel("maximum")
		f.Guests = &g
	}
	f.Bedrooms.Label = v.JSLabel("bedrooms")
	f.Beds.Label = v.JSLabel("beds")
	f.Bathrooms.Label = v.HTMLLabel("bathroom")
	return f, nil
}

func (d Details) localizeExtras(es ExtrasAndServices, lang string, v domain.Vocabulary) (ExtrasAndServices, error) {
	es.Title = v.HTMLLabel(es.Title)
	es.FreeLabel = v.HTMLLabel("free")

	none, err := label(d.Labels, lang, "none", "details", KeyDetails)
	if err != nil {
		return es, err
	}
	es.NoneLabel = none

	if es.Cleaning != nil {
		c := *es.Cleaning
		if c.Name, err = label(d.Labels, lang, "cleaning", "details", KeyDetails); err != nil {
			return es, err
		}
		if c.FeeBasis != "" {
			c.FeeBasis = v.JSLabel(c.FeeBasis)
		}
		es.Cleaning = &c
	}

	names := v.Category("Extras", "OptionalExtras")
	bases := v.Category("Extras", "OptionalExtrasBasis")
	extras := make([]Extra, len(es.Extras))
	for i, e := range es.Extras {
		e.Name = Translate(e.Name, names)
		if e.FeeBasis != "" {
			e.FeeBasis = Translate(e.FeeBasis, bases)
		}
		extras[i] = e
	}
	es.Extras = extras
	return es, nil
}

func (d Details) localizeRules(r Rules, v domain.Vocabulary) Rules {
	out := Rules{Title: v.HTMLLabel(r.Title), Items: make([]RuleItem, len(r.Items))}
	for i, it := range r.Items {
		if cat, ok := domain.CategoryFor(d.Catalog.Suitability, it.Key); ok {
			it.Text = Translate(it.Text, v.Category("House rules", cat))
			if it.Key == "eventsOrParties" {
				it.Text += " " + v.HTMLLabel("eventsOrParties")
			}
		}
		out.Items[i] = it
	}
	return out
}

func (Details) Render(d DetailsDatum) ([]domain.Attribute, error) {
	blocks := []string{renderFacts(d.Facts)}
	if d.Extras != nil {
		blocks = append(blocks, renderExtras(*d.Extras))
	}
	blocks = append(blocks, renderRules(d.Rules))
	return []domain.Attribute{{Key: KeyDetails, Value: strings.Join(blocks, paraBreak)}}, nil
}

func renderFacts(f Facts) string {
	texts := []string{fmt.Sprintf("%s: %s", f.TypeLabel, f.RentalType)}
	if fs := f.Floorspace; fs != nil {
		texts = append(texts, fmt.Sprintf("%s: %s%s", fs.Label, fs.Amount, strings.ReplaceAll(fs.Units, "2", "²")))
	}
	if g := f.Guests; g != nil {
		texts = append(texts, fmt.Sprintf("%d %s (%s: %d)", g.Number, g.Label, g.MaxLabel, g.Number))
	}
	for _, c := range []CountFact{f.Bedrooms, f.Beds, f.Bathrooms} {
		texts = append(texts, fmt.Sprintf("%d %s", c.Number, c.Label))
	}
	return joinLead(texts, lineBreak)
}

func renderExtras(es ExtrasAndServices) string {
	texts := []string{fmt.Sprintf("<strong>%s</strong>\n\n<br>", es.Title)}
	if es.Cleaning != nil {
		texts = append(texts, extraText(*es.Cleaning, es.FreeLabel, true))
	}
	for _, e := range es.Extras {
		texts = append(texts, extraText(e, es.FreeLabel, false))
	}
	if len(texts) == 1 {
		texts = append(texts, es.NoneLabel)
	}
	return strings.Join(texts, lineBreak)
}

func extraText(e Extra, free string, cleaning bool) string {
	switch {
	case e.Fee == nil:
		return fmt.Sprintf("%s: %s", e.Name, e.FeeBasis)
	case *e.Fee == 0:
		return fmt.Sprintf("%s: <b>%s</b>", e.Name, free)
	case cleaning:
		return fmt.Sprintf("%s: %s € (%s)", e.Name, formatFee(*e.Fee), e.FeeBasis)
	default:
		return fmt.Sprintf("%s: <b>%s € %s</b>", e.Name, formatFee(*e.Fee), e.FeeBasis)
	}
}

func formatFee(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func renderRules(r Rules) string {
	values := make([]string, len(r.Items))
	for i, it := range r.Items {
		values[i] = it.Text
	}
	return fmt.Sprintf("<strong>%s</strong>\n\n<br>\n\n<br>%s", r.Title, strings.Join(values, lineBreak))
}
