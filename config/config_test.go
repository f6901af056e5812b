package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {

	cfg := Default()
	require.NoError(t, cfg.Validate())

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Pacific/Auckland", loc.String())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {

	body := `
[catalog]
template_table = "trap_template"
timezone = "Pacific/Chatham"

[review]
slideshow_interval_seconds = 5
`

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "trap_template", cfg.Catalog.TemplateTable)
	require.Equal(t, "Pacific/Chatham", cfg.Catalog.Timezone)
	require.Equal(t, 5, cfg.Review.SlideshowIntervalSeconds)

	// untouched sections keep their defaults
	require.Equal(t, 1.2, cfg.Review.ZoomInFactor)
	require.Equal(t, "ffmpeg", cfg.Paths.FFmpeg)
}

func TestLoadRejectsBadTimezone(t *testing.T) {

	body := `
[catalog]
timezone = "Mars/Olympus_Mons"
`

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSampleConfigParses(t *testing.T) {

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(SampleConfig()), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}
