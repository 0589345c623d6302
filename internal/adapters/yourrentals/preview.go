package yourrentals

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Binding markers of the preview template. The label sits in the same text
// node, before the marker (leading) or after it (trailing).
var factMarkers = []struct {
	key     string
	marker  string
	leading bool
}{
	{"space", "{{previewVm.floorspace.amount}}", true},
	{"guests", "maximumGuests}}", false},
	{"maximum", "maximumAdditionalGuests}}", false},
	{"bathroom", "numberOfBathrooms}}", false},
	{"eventsOrParties", ".eventsOrParties]}}", false},
}

var previewAmenities = []string{"internet", "parking", "washingMachine", "heating", "airConditioning", "swimmingPool"}

// parsePreview pulls the translated UI labels out of the listing preview
// template. Labels that cannot be found are left out; lookups then fall back
// to the key.
func parsePreview(page []byte) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	out := map[string]string{}

	var texts []string
	doc.Find("*").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "#text" {
			texts = append(texts, s.Text())
		}
	})
	for _, f := range factMarkers {
		for _, t := range texts {
			i := strings.Index(t, f.marker)
			if i < 0 {
				continue
			}
			var v string
			if f.leading {
				v = strings.TrimSuffix(strings.TrimSpace(t[:i]), ":")
			} else {
				v = firstLine(t[i+len(f.marker):])
			}
			if v != "" {
				out[f.key] = v
				break
			}
		}
	}

	setHeading := func(key, iconClass string) {
		doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if h.Find("span[class*='" + iconClass + "']").Length() == 0 {
				return true
			}
			if v := strings.TrimSpace(h.Text()); v != "" {
				out[key] = v
			}
			return false
		})
	}
	setHeading("houseRules", "check")
	setHeading("feesAndExtras", "dollar")

	if s := doc.Find("p > strong").First(); s.Length() > 0 {
		out["additionalRules"] = strings.TrimSuffix(strings.TrimSpace(s.Text()), ":")
	}

	doc.Find("b.lower-case").EachWithBreak(func(_ int, b *goquery.Selection) bool {
		if cond, _ := b.Attr("ng-if"); !strings.Contains(cond, "fee === 0") {
			return true
		}
		out["free"] = strings.TrimSpace(b.Text())
		return false
	})

	doc.Find(".amen-tex").Each(func(_ int, s *goquery.Selection) {
		for _, key := range previewAmenities {
			if _, done := out[key]; done || !mentions(s, key) {
				continue
			}
			if v := strings.TrimSpace(s.Text()); v != "" {
				out[key] = v
			}
		}
	})
	return out, nil
}

// mentions reports whether any attribute of s references key.
func mentions(s *goquery.Selection, key string) bool {
	if len(s.Nodes) == 0 {
		return false
	}
	for _, a := range s.Nodes[0].Attr {
		if strings.Contains(a.Val, key) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
