package record

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewFeature(t *testing.T) {

	r := &Record{
		FID:           7,
		FolderPath:    "/data/CAM01-2025-11-12",
		MediaPath:     "/data/CAM01-2025-11-12/a.jpg",
		CameraID:      "CAM01",
		Timezone:      "Pacific/Auckland",
		Captured:      "2025-11-12 08:00:00",
		LocalTime:     "12/11/2025 08:00:00",
		Location:      orb.Point{174.0, -41.0},
		Species:       "Banded Rail",
		SpeciesCount:  2,
		SpeciesSecond: "Pukeko",
		Comment:       "pair at low tide",
		Shortcode:     "BR",
		Shortcode2:    "PK",
	}

	enc_f, err := NewFeature(r)
	require.NoError(t, err)

	require.Equal(t, "Feature", gjson.GetBytes(enc_f, "type").String())
	require.Equal(t, "Point", gjson.GetBytes(enc_f, "geometry.type").String())

	coords := gjson.GetBytes(enc_f, "geometry.coordinates").Array()
	require.Len(t, coords, 2)
	require.Equal(t, 174.0, coords[0].Float())
	require.Equal(t, -41.0, coords[1].Float())

	require.Equal(t, int64(7), gjson.GetBytes(enc_f, `properties.cameratrap:fid`).Int())
	require.Equal(t, "CAM01", gjson.GetBytes(enc_f, `properties.cameratrap:camera_id`).String())
	require.Equal(t, "image", gjson.GetBytes(enc_f, `properties.media:medium`).String())
	require.Equal(t, "2025-11-12 08:00:00", gjson.GetBytes(enc_f, `properties.media:created`).String())

	require.Equal(t, "Banded Rail", gjson.GetBytes(enc_f, `properties.cameratrap:species`).String())
	require.Equal(t, "BR", gjson.GetBytes(enc_f, `properties.cameratrap:shortcode`).String())
	require.Equal(t, int64(2), gjson.GetBytes(enc_f, `properties.cameratrap:species_count`).Int())
}

func TestNewFeatureOmitsAbsentFields(t *testing.T) {

	r := &Record{
		FID:       3,
		MediaPath: "/data/CAM02/b.mp4",
		CameraID:  "CAM02",
	}

	enc_f, err := NewFeature(r)
	require.NoError(t, err)

	require.Equal(t, "video", gjson.GetBytes(enc_f, `properties.media:medium`).String())
	require.False(t, gjson.GetBytes(enc_f, `properties.media:created`).Exists())
	require.False(t, gjson.GetBytes(enc_f, `properties.cameratrap:species`).Exists())
	require.False(t, gjson.GetBytes(enc_f, `properties.cameratrap:species_count`).Exists())
}
