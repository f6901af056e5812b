package lookup

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/tidwall/gjson"
)

// AppendLookupFunc parses a reference-table document and appends whatever it
// finds to a lookup map.
type AppendLookupFunc func(context.Context, *sync.Map, io.ReadCloser) error

// SpeciesAppendLookupFunc parses a CSV species vocabulary and appends
// species name -> shortcode pairs. The columns are expected to be named
// "species" and "shortcode"; when they are not, the first and last columns
// are used instead and a warning names the columns actually picked, since a
// malformed vocabulary would otherwise be misread silently.
func SpeciesAppendLookupFunc(ctx context.Context, lu *sync.Map, fh io.ReadCloser) error {

	r := csv.NewReader(fh)

	header, err := r.Read()

	if err == io.EOF {
		return nil
	}

	if err != nil {
		return fmt.Errorf("Failed to read species table header, %w", err)
	}

	if len(header) < 2 {
		return fmt.Errorf("Species table needs at least two columns, got %d", len(header))
	}

	species_col := -1
	shortcode_col := -1

	for i, name := range header {

		switch strings.ToLower(strings.TrimSpace(name)) {
		case "species":
			species_col = i
		case "shortcode":
			shortcode_col = i
		default:
			// pass
		}
	}

	if species_col == -1 || shortcode_col == -1 {

		if species_col == -1 {
			species_col = 0
		}

		if shortcode_col == -1 {
			shortcode_col = len(header) - 1
		}

		slog.Warn("Species table is missing named columns, falling back to positional columns",
			"species_column", header[species_col],
			"shortcode_column", header[shortcode_col])
	}

	for {

		row, err := r.Read()

		if err == io.EOF {
			break
		}

		if err != nil {
			return fmt.Errorf("Failed to read species table row, %w", err)
		}

		species := strings.TrimSpace(row[species_col])
		shortcode := strings.TrimSpace(row[shortcode_col])

		if species == "" {
			continue
		}

		_, exists := lu.LoadOrStore(species, shortcode)

		if exists {
			return fmt.Errorf("Existing species key for %s", species)
		}
	}

	return nil
}

// CameraAppendLookupFunc parses a GeoJSON camera-location table and appends
// camera name -> point pairs. Both a FeatureCollection and a single Feature
// are accepted.
func CameraAppendLookupFunc(ctx context.Context, lu *sync.Map, fh io.ReadCloser) error {

	body, err := io.ReadAll(fh)

	if err != nil {
		return err
	}

	var features []gjson.Result

	switch gjson.GetBytes(body, "type").String() {
	case "FeatureCollection":
		features = gjson.GetBytes(body, "features").Array()
	case "Feature":
		features = []gjson.Result{gjson.ParseBytes(body)}
	default:
		return fmt.Errorf("Unsupported camera table document type '%s'", gjson.GetBytes(body, "type").String())
	}

	for _, f := range features {

		name_rsp := f.Get("properties.name")

		if !name_rsp.Exists() {
			slog.Warn("Camera feature is missing a name property, skipping")
			continue
		}

		coords := f.Get("geometry.coordinates").Array()

		if f.Get("geometry.type").String() != "Point" || len(coords) < 2 {
			return fmt.Errorf("Camera '%s' does not have a point geometry", name_rsp.String())
		}

		pt := orb.Point{
			coords[0].Float(),
			coords[1].Float(),
		}

		_, exists := lu.LoadOrStore(name_rsp.String(), pt)

		if exists {
			return fmt.Errorf("Existing camera key for %s", name_rsp.String())
		}
	}

	return nil
}
