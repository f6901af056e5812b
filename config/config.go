// Package config loads deployment configuration for the camera-trap
// catalog tools from a TOML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains filesystem locations used by the tools.
type Paths struct {
	// The SQLite database holding the record tables.
	Database string `toml:"database"`
	// The ffmpeg binary used by the video splitter.
	FFmpeg string `toml:"ffmpeg"`
}

// Catalog contains the names and sources of the reference tables.
type Catalog struct {
	// The table whose schema is cloned when a new record table is created.
	TemplateTable string `toml:"template_table"`
	// A gocloud.dev/blob URI for the camera-location reference table (GeoJSON).
	CameraTableURI string `toml:"camera_table_uri"`
	// A gocloud.dev/blob URI for the species/shortcode reference table (CSV).
	SpeciesTableURI string `toml:"species_table_uri"`
	// The IANA timezone capture times are recorded in. Fixed per deployment.
	Timezone string `toml:"timezone"`
}

// Review contains settings for the interactive review session.
type Review struct {
	SlideshowIntervalSeconds int     `toml:"slideshow_interval_seconds"`
	ZoomInFactor             float64 `toml:"zoom_in_factor"`
	ZoomOutFactor            float64 `toml:"zoom_out_factor"`
}

// Split contains settings for the video frame splitter.
type Split struct {
	FrameRate   float64 `toml:"frame_rate"`
	JPEGQuality int     `toml:"jpeg_quality"`
}

// Config is the top-level deployment configuration.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Catalog Catalog `toml:"catalog"`
	Review  Review  `toml:"review"`
	Split   Split   `toml:"split"`
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {

	cfg := &Config{
		Paths: Paths{
			Database: "cameratrap.db",
			FFmpeg:   "ffmpeg",
		},
		Catalog: Catalog{
			TemplateTable: "image_classification",
			Timezone:      "Pacific/Auckland",
		},
		Review: Review{
			SlideshowIntervalSeconds: 2,
			ZoomInFactor:             1.2,
			ZoomOutFactor:            0.8,
		},
		Split: Split{
			FrameRate:   1.0,
			JPEGQuality: 2,
		},
	}

	return cfg
}

// Load reads a TOML configuration file from path, layered over the
// defaults. A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {

	cfg := Default()

	body, err := os.ReadFile(path)

	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	if err != nil {
		return nil, fmt.Errorf("Failed to read config %s, %w", path, err)
	}

	err = toml.Unmarshal(body, cfg)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse config %s, %w", path, err)
	}

	err = cfg.Validate()

	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (cfg *Config) Validate() error {

	_, err := time.LoadLocation(cfg.Catalog.Timezone)

	if err != nil {
		return fmt.Errorf("Failed to load timezone '%s', %w", cfg.Catalog.Timezone, err)
	}

	if cfg.Catalog.TemplateTable == "" {
		return errors.New("Missing template table name")
	}

	if cfg.Review.SlideshowIntervalSeconds <= 0 {
		return errors.New("Slideshow interval must be positive")
	}

	if cfg.Review.ZoomInFactor <= 0 || cfg.Review.ZoomOutFactor <= 0 {
		return errors.New("Zoom factors must be positive")
	}

	return nil
}

// Location returns the time.Location for the configured timezone.
func (cfg *Config) Location() (*time.Location, error) {
	return time.LoadLocation(cfg.Catalog.Timezone)
}

// SampleConfig returns the embedded sample configuration file.
func SampleConfig() string {
	return sampleConfig
}
