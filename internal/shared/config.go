package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"rental_sync/internal/app"
	"rental_sync/internal/domain"
)

//go:embed catalog.toml
var defaultCatalog []byte

type Config struct {
	AppEnv      string
	HTTPAddr    string
	HTTPTimeout time.Duration

	MySQLDSN      string
	PostMetaTable string
	SQLitePath    string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	RentalAPIURL string
	RentalAppURL string
	RentalRPS    int
	DefaultLang  string

	BookingSiteID    string
	BookingTheme     string
	BookingWidgetURL string
	GoogleMapsKey    string

	ImagesBaseURL       string
	ImageFallbackSuffix string

	WPMediaURL  string
	WPUser      string
	WPPassword  string
	CatalogFile string

	warnings []string
}

// Load reads the environment, after an optional .env file in the working
// directory. Variables already set win over .env.
func Load() Config {
	dotenvErr := godotenv.Load()
	if os.IsNotExist(dotenvErr) {
		dotenvErr = nil
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		HTTPTimeout: time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 120)) * time.Second,

		MySQLDSN:      env("MYSQL_DSN", "wordpress:wordpress@tcp(localhost:3306)/wordpress?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		PostMetaTable: env("POSTMETA_TABLE", "wp_postmeta"),
		SQLitePath:    env("SQLITE_PATH", "rental-sync.db"),

		RedisAddr: env("REDIS_ADDR", "localhost:6379"),
		RedisDB:   atoi("REDIS_DB", 0),
		RedisPass: env("REDIS_PASSWORD", ""),
		CacheTTL:  time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		RentalAPIURL: env("RENTAL_API_URL", "https://api-internal.your.rentals"),
		RentalAppURL: env("RENTAL_APP_URL", "https://app.your.rentals"),
		RentalRPS:    atoi("RENTAL_RPS", 5),
		DefaultLang:  env("DEFAULT_LANG", "de"),

		BookingSiteID:    env("BOOKING_SITE_ID", "AUTE"),
		BookingTheme:     env("BOOKING_THEME", "z1ahkgnjt5"),
		BookingWidgetURL: env("BOOKING_WIDGET_URL", "https://app.your.rentals/public/assets/scripts/direct-booking-widget.js"),
		GoogleMapsKey:    env("GOOGLE_MAPS_API_KEY", ""),

		ImagesBaseURL:       env("IMAGES_BASE_URL", "https://s3-eu-central-1.amazonaws.com/images.your.rentals"),
		ImageFallbackSuffix: env("IMAGE_FALLBACK_SUFFIX", "medium"),

		WPMediaURL:  env("WP_MEDIA_URL", "http://localhost:8000/wp-json/wp/v2/media"),
		WPUser:      env("WP_USERNAME", ""),
		WPPassword:  env("WP_APP_PASSWORD", ""),
		CatalogFile: env("CATALOG_FILE", ""),
	}
	if dotenvErr != nil {
		c.warnings = append(c.warnings, ".env could not be read: "+dotenvErr.Error())
	}
	if c.GoogleMapsKey == "" {
		c.warnings = append(c.warnings, "GOOGLE_MAPS_API_KEY is empty")
	}
	if c.WPUser == "" || c.WPPassword == "" {
		c.warnings = append(c.warnings, "WP_USERNAME/WP_APP_PASSWORD are empty; media uploads will be refused")
	}
	return c
}

// Warnings lists what Load found questionable. Callers log them once the
// application logger is installed.
func (c Config) Warnings() []string { return c.warnings }

// LogWarnings writes Warnings to the global logger.
func (c Config) LogWarnings() {
	for _, w := range c.warnings {
		log.Warn().Msg(w)
	}
}

// Catalog returns the amenity and house-rule tables, from CATALOG_FILE when
// set and from the embedded defaults otherwise.
func (c Config) Catalog() (domain.Catalog, error) {
	data := defaultCatalog
	if c.CatalogFile != "" {
		b, err := os.ReadFile(c.CatalogFile)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("catalog: %w", err)
		}
		data = b
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (domain.Catalog, error) {
	var cat domain.Catalog
	if err := toml.Unmarshal(data, &cat); err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog: %w", err)
	}
	if len(cat.Amenities) == 0 || len(cat.Suitability) == 0 {
		return domain.Catalog{}, fmt.Errorf("catalog: amenities and suitability must not be empty")
	}
	for _, e := range append(append([]domain.Entry{}, cat.Amenities...), cat.Suitability...) {
		if e.Key == "" || e.Category == "" {
			return domain.Catalog{}, fmt.Errorf("catalog: entry %+v needs key and category", e)
		}
	}
	return cat, nil
}

// PipelineSettings bundles what the pipeline is constructed with.
func (c Config) PipelineSettings() (app.Settings, error) {
	cat, err := c.Catalog()
	if err != nil {
		return app.Settings{}, err
	}
	return app.Settings{
		Catalog:             cat,
		ImagesBaseURL:       c.ImagesBaseURL,
		ImageFallbackSuffix: c.ImageFallbackSuffix,
		GoogleMapsKey:       c.GoogleMapsKey,
		BookingWidgetURL:    c.BookingWidgetURL,
		BookingSiteID:       c.BookingSiteID,
		BookingTheme:        c.BookingTheme,
	}, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
