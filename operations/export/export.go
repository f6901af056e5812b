// Package export publishes reviewed media records as GeoJSON Feature
// documents, one per record, so a record table can be inspected in desktop
// GIS tooling alongside the camera-location layer.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/sfomuseum/go-camera-trap/record"
	"github.com/whosonfirst/go-ioutil"
	"github.com/whosonfirst/go-writer/v3"
)

// ExportOptions is a struct containing application-specific options for
// exporting a record table.
type ExportOptions struct {
	// The store records are read from.
	Store record.Store
	// The record table to export.
	Table string
	// A valid whosonfirst/go-writer Writer for publishing feature
	// documents.
	Writer writer.Writer
}

// ExportTable writes every record in the table as a GeoJSON feature named
// "<table>-<fid>.geojson" and returns the number written.
func ExportTable(ctx context.Context, opts *ExportOptions) (int, error) {

	records, err := opts.Store.Records(ctx, opts.Table)

	if err != nil {
		return 0, fmt.Errorf("Failed to enumerate '%s', %w", opts.Table, err)
	}

	count := 0

	for _, r := range records {

		select {
		case <-ctx.Done():
			return count, nil
		default:
			// pass
		}

		err := exportRecord(ctx, opts, r)

		if err != nil {
			return count, err
		}

		count += 1
	}

	slog.Info("Export complete", "table", opts.Table, "written", count)
	return count, nil
}

func exportRecord(ctx context.Context, opts *ExportOptions, r *record.Record) error {

	enc_f, err := record.NewFeature(r)

	if err != nil {
		return fmt.Errorf("Failed to encode feature for fid %d, %w", r.FID, err)
	}

	fname := fmt.Sprintf("%s-%d.geojson", opts.Table, r.FID)

	br := bytes.NewReader(enc_f)
	fh, err := ioutil.NewReadSeekCloser(br)

	if err != nil {
		return fmt.Errorf("Failed to create reader for %s, %w", fname, err)
	}

	defer fh.Close()

	_, err = opts.Writer.Write(ctx, fname, fh)

	if err != nil {
		return fmt.Errorf("Failed to write %s, %w", fname, err)
	}

	return nil
}
