package app

import (
	"errors"
	"fmt"

	"rental_sync/internal/domain"
)

// Script produces embeddable markup straight from the raw record.
type Script interface {
	Name() string
	Key() string
	Markup(propertyID int64, lang string, raw domain.RawRecord) (string, error)
}

func DefaultScripts(s Settings) []Script {
	return []Script{
		BookingScript{WidgetURL: s.BookingWidgetURL, SiteID: s.BookingSiteID, Theme: s.BookingTheme},
		MapScript{APIKey: s.GoogleMapsKey},
	}
}

/********** booking widget **********/

const bookingTemplate = `<script>(function(d, s, id) {
if (d.getElementById(id)) return;
var js, fjs = d.getElementsByTagName(s)[0];
js = d.createElement(s); js.id = id;
js.src = '%s';
fjs.parentNode.insertBefore(js, fjs);
}(document, 'script', 'yr-direct-booking-widget-bootstrap'));</script>
<div class="yr-widget-direct-booking" data-yrscid="%s" data-yrlang="%s" data-yrlid="%d" data-yrtheme="%s"></div>`

type BookingScript struct {
	WidgetURL string
	SiteID    string
	Theme     string
}

func (BookingScript) Name() string { return "booking_script" }
func (BookingScript) Key() string  { return KeyBookingScript }

func (b BookingScript) Markup(propertyID int64, lang string, _ domain.RawRecord) (string, error) {
	return fmt.Sprintf(bookingTemplate, b.WidgetURL, b.SiteID, lang, propertyID, b.Theme), nil
}

/********** google map **********/

const mapTemplate = `<style>
  #map{
    <br>height: 400px;
    <br>width: 100%%;
  <br>}
<br></style>
<div id="map"></div>
<script>
  function initMap() {
    var uluru = {lat: %s, lng: %s};
    var map = new google.maps.Map(document.getElementById('map'), {
      zoom: 11,
      center: uluru
    });
    var marker = new google.maps.Marker({
      position: uluru,
      map: map
    });
  }
</script>
<script async defer
    src="https://maps.googleapis.com/maps/api/js?key=%s&callback=initMap">
</script>`

type MapScript struct {
	APIKey string
}

func (MapScript) Name() string { return "map_script" }
func (MapScript) Key() string  { return KeyMapScript }

func (m MapScript) Markup(_ int64, _ string, raw domain.RawRecord) (string, error) {
	loc, ok := lookupMap(raw, "location")
	if !ok {
		return "", errors.New("listing has no location")
	}
	return fmt.Sprintf(mapTemplate, numText(loc["latitude"]), numText(loc["longitude"]), m.APIKey), nil
}
