package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/sfomuseum/go-camera-trap/operations/export"
	"github.com/sfomuseum/go-camera-trap/record"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/whosonfirst/go-writer/v3"
)

func TestExportTable(t *testing.T) {

	ctx := context.Background()

	store, err := record.Open(filepath.Join(t.TempDir(), "test.db"), "image_classification")
	require.NoError(t, err)

	defer store.Close()

	require.NoError(t, store.CreateTable(ctx, "soldiers_bay"))

	staged := []*record.Record{
		{
			FolderPath: "/data/CAM01-2025-11-12",
			MediaPath:  "/data/CAM01-2025-11-12/a.jpg",
			CameraID:   "CAM01",
			Timezone:   "Pacific/Auckland",
			Captured:   "2025-11-12 08:00:00",
			Location:   orb.Point{174.0, -41.0},
		},
		{
			FolderPath: "/data/CAM01-2025-11-12",
			MediaPath:  "/data/CAM01-2025-11-12/b.mp4",
			CameraID:   "CAM01",
			Timezone:   "Pacific/Auckland",
		},
	}

	_, err = store.Append(ctx, "soldiers_bay", staged)
	require.NoError(t, err)

	records, err := store.Records(ctx, "soldiers_bay")
	require.NoError(t, err)

	a := &record.Annotations{
		Species:      "Banded Rail",
		SpeciesCount: 2,
		Comment:      "pair at low tide",
	}

	require.NoError(t, store.UpdateAnnotations(ctx, "soldiers_bay", records[0].FID, a))

	out_dir := t.TempDir()

	wr, err := writer.NewWriter(ctx, "fs://"+out_dir)
	require.NoError(t, err)

	opts := &export.ExportOptions{
		Store:  store,
		Table:  "soldiers_bay",
		Writer: wr,
	}

	count, err := export.ExportTable(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	names, err := filepath.Glob(filepath.Join(out_dir, "soldiers_bay-*.geojson"))
	require.NoError(t, err)
	require.Len(t, names, 2)

	body, err := os.ReadFile(filepath.Join(out_dir, "soldiers_bay-1.geojson"))
	require.NoError(t, err)

	require.Equal(t, "Feature", gjson.GetBytes(body, "type").String())
	require.Equal(t, "CAM01", gjson.GetBytes(body, `properties.cameratrap:camera_id`).String())
	require.Equal(t, "Banded Rail", gjson.GetBytes(body, `properties.cameratrap:species`).String())
	require.Equal(t, int64(2), gjson.GetBytes(body, `properties.cameratrap:species_count`).Int())
	require.Equal(t, 174.0, gjson.GetBytes(body, "geometry.coordinates.0").Float())
}

func TestExportMissingTable(t *testing.T) {

	ctx := context.Background()

	store, err := record.Open(filepath.Join(t.TempDir(), "test.db"), "image_classification")
	require.NoError(t, err)

	defer store.Close()

	wr, err := writer.NewWriter(ctx, "null://")
	require.NoError(t, err)

	opts := &export.ExportOptions{
		Store:  store,
		Table:  "nope",
		Writer: wr,
	}

	_, err = export.ExportTable(ctx, opts)
	require.ErrorIs(t, err, record.ErrNoSuchTable)
}
