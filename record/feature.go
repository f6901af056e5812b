package record

import (
	"encoding/json"
	"fmt"

	"github.com/sfomuseum/go-camera-trap/media"
	"github.com/tidwall/sjson"
)

// type Coordinates stores a single longitude, latitude coordinate pair.
type Coordinates []float64

// type Geometry stores a GeoJSON geometry dictionary.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates Coordinates `json:"coordinates"`
}

// type Properties stores a GeoJSON properties dictionary.
type Properties map[string]interface{}

// type Feature provides a GeoJSON struct.
type Feature struct {
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Geometry   Geometry   `json:"geometry"`
}

// NewFeature encodes r as a GeoJSON Feature. The geometry is the camera's
// point coordinate; annotation fields are patched in as properties so a
// partially reviewed record round-trips losslessly.
func NewFeature(r *Record) ([]byte, error) {

	coords := Coordinates{
		r.Location[0],
		r.Location[1],
	}

	geom := Geometry{
		Type:        "Point",
		Coordinates: coords,
	}

	props := make(map[string]interface{})

	props["cameratrap:fid"] = r.FID
	props["cameratrap:camera_id"] = r.CameraID

	props["media:path"] = r.MediaPath
	props["media:folder"] = r.FolderPath
	props["media:medium"] = media.Classify(r.MediaPath).String()

	if r.Captured != "" {
		props["media:created"] = r.Captured
		props["media:created_local"] = r.LocalTime
		props["media:timezone"] = r.Timezone
	}

	if r.Fingerprint != "" {
		props["media:fingerprint"] = r.Fingerprint
	}

	if r.ImageHashAvg != "" {
		props["media:imagehash_avg"] = r.ImageHashAvg
	}

	if r.ImageHashDiff != "" {
		props["media:imagehash_diff"] = r.ImageHashDiff
	}

	f := &Feature{
		Type:       "Feature",
		Geometry:   geom,
		Properties: props,
	}

	enc_f, err := json.Marshal(f)

	if err != nil {
		return nil, err
	}

	annotations := map[string]string{
		"species":        r.Species,
		"species_second": r.SpeciesSecond,
		"comment":        r.Comment,
		"shortcode":      r.Shortcode,
		"shortcode2":     r.Shortcode2,
	}

	for k, v := range annotations {

		if v == "" {
			continue
		}

		path := fmt.Sprintf("properties.cameratrap:%s", k)

		enc_f, err = sjson.SetBytes(enc_f, path, v)

		if err != nil {
			return nil, fmt.Errorf("Failed to assign %s, %w", path, err)
		}
	}

	if r.SpeciesCount > 0 {

		enc_f, err = sjson.SetBytes(enc_f, "properties.cameratrap:species_count", r.SpeciesCount)

		if err != nil {
			return nil, fmt.Errorf("Failed to assign species count, %w", err)
		}
	}

	return enc_f, nil
}
