// Package ingest discovers media files in a camera's source folder, matches
// them to a known camera location, filters out files already cataloged and
// appends the remainder to a record table in one transaction.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/sfomuseum/go-camera-trap/common"
	"github.com/sfomuseum/go-camera-trap/lookup"
	"github.com/sfomuseum/go-camera-trap/media"
	"github.com/sfomuseum/go-camera-trap/record"
	"gocloud.dev/blob"
)

// ErrNoTableName indicates no destination table name could be resolved.
var ErrNoTableName = errors.New("no destination table name")

// ErrNoCamera indicates no valid camera id could be resolved for the source
// folder, from its name or from the caller.
var ErrNoCamera = errors.New("no valid camera id")

// IngestOptions is a struct containing application-specific options for a
// single ingestion run.
type IngestOptions struct {
	// The store records are appended to.
	Store record.Store
	// The camera-location registry, loaded at session start.
	Cameras *lookup.CameraRegistry
	// The gocloud.dev/blob.Bucket rooted at the source folder.
	Bucket *blob.Bucket
	// The absolute path of the source folder. Its base name is used to
	// infer the camera id and it is recorded on every record.
	Folder string
	// The destination table name. When empty the Prompter is asked.
	TableName string
	// An explicit camera id for non-interactive runs, used when the
	// folder name does not match a known camera.
	CameraID string
	// The Prompter consulted for a table name or camera id when neither
	// can be resolved otherwise. Optional for fully specified runs.
	Prompter Prompter
	// The timezone capture times are interpreted in.
	Location *time.Location
	// The IANA zone name recorded on every record.
	Timezone string
	// Whether to compute SHA-1 fingerprints and perceptual hashes for
	// ingested media.
	HashMedia bool
	// The number of files whose metadata is extracted concurrently.
	// Zero or less means one at a time.
	MaxWorkers int
}

// Ingest runs the ingestion pipeline described by opts and returns the
// number of records added. Configuration failures (missing template table,
// unresolvable camera id, table creation failure) abort the run before
// anything is inserted; per-file metadata failures are logged and the file
// is ingested with an absent timestamp.
func Ingest(ctx context.Context, opts *IngestOptions) (int, error) {

	table, err := resolveTableName(ctx, opts)

	if err != nil {
		return 0, err
	}

	camera_id, pt, err := resolveCamera(ctx, opts)

	if err != nil {
		return 0, err
	}

	err = opts.Store.CreateTable(ctx, table)

	if err != nil {
		return 0, fmt.Errorf("Failed to create or open table '%s', %w", table, err)
	}

	existing, err := opts.Store.MediaPaths(ctx, table)

	if err != nil {
		return 0, fmt.Errorf("Failed to read existing media paths, %w", err)
	}

	folder := filepath.ToSlash(opts.Folder)

	candidates, err := listFolder(ctx, opts.Bucket)

	if err != nil {
		return 0, fmt.Errorf("Failed to list folder %s, %w", folder, err)
	}

	// Filter before staging so the worker pool only ever sees files that
	// will actually be inserted.

	stage := make([]string, 0, len(candidates))

	for _, name := range candidates {

		if media.Classify(name) == media.Unsupported {
			continue
		}

		media_path := path.Join(folder, name)

		if !IsNew(media_path, existing) {
			slog.Debug("Skipping duplicate", "path", media_path)
			continue
		}

		stage = append(stage, name)
	}

	records := extractAll(ctx, opts, folder, camera_id, pt, stage)

	count, err := opts.Store.Append(ctx, table, records)

	if err != nil {
		return 0, fmt.Errorf("Failed to append records to '%s', %w", table, err)
	}

	slog.Info("Ingestion complete", "table", table, "camera", camera_id, "added", count)
	return count, nil
}

func resolveTableName(ctx context.Context, opts *IngestOptions) (string, error) {

	table := strings.TrimSpace(opts.TableName)

	if table == "" && opts.Prompter != nil {

		answer, err := opts.Prompter.TableName(ctx)

		if err != nil {
			return "", fmt.Errorf("Failed to prompt for table name, %w", err)
		}

		table = strings.TrimSpace(answer)
	}

	if table == "" {
		return "", ErrNoTableName
	}

	return table, nil
}

// resolveCamera derives the camera id for the run: the substring of the
// source folder's base name before the first hyphen, falling back to an
// explicitly supplied id and then to the Prompter. Whatever is resolved
// must name a known camera.
func resolveCamera(ctx context.Context, opts *IngestOptions) (string, orb.Point, error) {

	var pt orb.Point

	folder_name := path.Base(filepath.ToSlash(opts.Folder))
	candidate, _, _ := strings.Cut(folder_name, "-")

	if loc, ok := opts.Cameras.Locate(candidate); ok {
		return candidate, loc, nil
	}

	candidate = strings.TrimSpace(opts.CameraID)

	if candidate == "" && opts.Prompter != nil {

		answer, err := opts.Prompter.CameraID(ctx, folder_name)

		if err != nil {
			return "", pt, fmt.Errorf("Failed to prompt for camera id, %w", err)
		}

		candidate = strings.TrimSpace(answer)
	}

	if candidate == "" {
		return "", pt, fmt.Errorf("%w: folder '%s' does not match any camera", ErrNoCamera, folder_name)
	}

	loc, ok := opts.Cameras.Locate(candidate)

	if !ok {
		return "", pt, fmt.Errorf("%w: '%s' is not a known camera", ErrNoCamera, candidate)
	}

	return candidate, loc, nil
}

// listFolder enumerates the files directly inside the bucket, in listing
// order. Subfolders are not descended in to.
func listFolder(ctx context.Context, bucket *blob.Bucket) ([]string, error) {

	iter := bucket.List(&blob.ListOptions{
		Delimiter: "/",
	})

	names := make([]string, 0)

	for {

		obj, err := iter.Next(ctx)

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, err
		}

		if obj.IsDir {
			continue
		}

		names = append(names, obj.Key)
	}

	return names, nil
}

// extractAll extracts metadata for each staged file, fanning out to a
// bounded worker pool. Results are reassembled in enumeration order so the
// final record set is deterministic.
func extractAll(ctx context.Context, opts *IngestOptions, folder string, camera_id string, pt orb.Point, stage []string) []*record.Record {

	workers := opts.MaxWorkers

	if workers <= 0 {
		workers = 1
	}

	results := make([]*record.Record, len(stage))

	throttle := make(chan bool, workers)
	wg := new(sync.WaitGroup)

	for i, name := range stage {

		wg.Add(1)
		throttle <- true

		go func(i int, name string) {

			defer func() {
				<-throttle
				wg.Done()
			}()

			results[i] = buildRecord(ctx, opts, folder, camera_id, pt, name)

		}(i, name)
	}

	wg.Wait()

	records := make([]*record.Record, 0, len(results))

	for _, r := range results {

		if r != nil {
			records = append(records, r)
		}
	}

	return records
}

func buildRecord(ctx context.Context, opts *IngestOptions, folder string, camera_id string, pt orb.Point, name string) *record.Record {

	media_path := path.Join(folder, name)

	r := &record.Record{
		FolderPath: folder,
		MediaPath:  media_path,
		CameraID:   camera_id,
		Timezone:   opts.Timezone,
	}

	r.Location = pt

	ts, err := media.ExtractTimestamp(ctx, opts.Bucket, name, opts.Location)

	if err != nil {
		slog.Warn("Failed to extract timestamp", "path", media_path, "error", err)
	}

	if ts != nil {
		r.Captured = ts.ISO()
		r.LocalTime = ts.Display()
	}

	if opts.HashMedia {
		hashMedia(ctx, opts.Bucket, name, r)
	}

	return r
}

// hashMedia computes a SHA-1 fingerprint for any media file and perceptual
// hashes for images. Failures are logged and the record is kept without
// hashes.
func hashMedia(ctx context.Context, bucket *blob.Bucket, name string, r *record.Record) {

	fp, err := common.FingerprintFile(ctx, bucket, name)

	if err != nil {
		slog.Warn("Failed to fingerprint media", "path", r.MediaPath, "error", err)
	} else {
		r.Fingerprint = fp
	}

	if media.Classify(name) != media.Image {
		return
	}

	hashes, err := common.ImageHashes(ctx, bucket, name)

	if err != nil {
		slog.Warn("Failed to hash image", "path", r.MediaPath, "error", err)
		return
	}

	for _, h := range hashes {

		switch h.Approach {
		case "avg":
			r.ImageHashAvg = h.Hash
		case "diff":
			r.ImageHashDiff = h.Hash
		default:
			// pass
		}
	}
}
