package domain

// RawRecord is the decoded listing payload as returned by the rentals API.
type RawRecord = map[string]any

// SuitabilityOrderKey holds the payload order of the suitability keys as a
// list of strings; the decoded map does not keep it.
const SuitabilityOrderKey = "_suitabilityOrder"

// Variant is one {name, value} pair of a vocabulary category.
type Variant struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Vocabulary is the localization table for one (property, language) pair.
type Vocabulary struct {
	Groups map[string]map[string][]Variant // "Facilities" -> "Kitchen" -> variants
	JS     map[string]string               // strings scraped from the booking page
	HTML   map[string]string               // strings scraped from the preview template
}

// Category returns the variants of group/name, nil when either is missing.
func (v Vocabulary) Category(group, name string) []Variant {
	if v.Groups == nil {
		return nil
	}
	return v.Groups[group][name]
}

// JSLabel returns the JS string for key, or key itself when absent.
func (v Vocabulary) JSLabel(key string) string {
	if s, ok := v.JS[key]; ok {
		return s
	}
	return key
}

// HTMLLabel returns the preview-template string for key, or key itself when absent.
func (v Vocabulary) HTMLLabel(key string) string {
	if s, ok := v.HTML[key]; ok {
		return s
	}
	return key
}

// Attribute is a rendered value bound to its post meta key.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type PostMeta struct {
	PostID int64
	Key    string
	Value  string
}

type ImageRef struct {
	URL       string
	Filename  string // "abc.jpg"
	BaseName  string // "abc"
	Extension string // "jpg"
}

type MediaItem struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	SourceURL string `json:"source_url"`
}
