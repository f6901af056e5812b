package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"gocloud.dev/blob"
)

// remember these datetime formats are Go's internal cray-cray
// for working with time...
const exifLayout = "2006:01:02 15:04:05"

const isoLayout = "2006-01-02 15:04:05"

const displayLayout = "02/01/2006 15:04:05"

// Timestamp is the best-available estimate of when a media file was
// recorded: embedded metadata for images, file modification time for video.
type Timestamp struct {
	Captured time.Time
}

// ISO returns the timestamp formatted for the record's datetime field.
func (ts *Timestamp) ISO() string {
	return ts.Captured.Format(isoLayout)
}

// Display returns the timestamp formatted for the record's local-time
// display field.
func (ts *Timestamp) Display() string {
	return ts.Captured.Format(displayLayout)
}

// ExtractTimestamp derives a capture Timestamp for the media file stored at
// path in bucket, interpreted in loc. Images are read for an embedded
// "DateTimeOriginal" tag; a missing or unparseable tag yields a nil
// Timestamp and a nil error since fabricating a capture time for an image
// would be worse than recording none. Videos use the file's
// last-modification time; recording time is unavailable without deeper
// container parsing so precision is traded for simplicity.
func ExtractTimestamp(ctx context.Context, bucket *blob.Bucket, path string, loc *time.Location) (*Timestamp, error) {

	switch Classify(path) {
	case Image:
		return imageTimestamp(ctx, bucket, path, loc)
	case Video:
		return videoTimestamp(ctx, bucket, path, loc)
	default:
		return nil, fmt.Errorf("Unsupported media type for %s", path)
	}
}

func imageTimestamp(ctx context.Context, bucket *blob.Bucket, path string, loc *time.Location) (*Timestamp, error) {

	r, err := bucket.NewReader(ctx, path, nil)

	if err != nil {
		return nil, fmt.Errorf("Failed to create reader for %s, %w", path, err)
	}

	defer r.Close()

	exif.RegisterParsers(mknote.All...)

	exif_data, err := exif.Decode(r)

	if err != nil {
		// No (readable) EXIF. Not fatal; the file is still ingested
		// with an absent timestamp.
		return nil, nil
	}

	tag, err := exif_data.Get("DateTimeOriginal")

	if err != nil {
		return nil, nil
	}

	str_dt := tag.String()
	str_dt = strings.Trim(str_dt, "\"") // see this? it's important

	t, err := time.ParseInLocation(exifLayout, str_dt, loc)

	if err != nil {
		return nil, nil
	}

	return &Timestamp{Captured: t}, nil
}

func videoTimestamp(ctx context.Context, bucket *blob.Bucket, path string, loc *time.Location) (*Timestamp, error) {

	attrs, err := bucket.Attributes(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to read attributes for %s, %w", path, err)
	}

	return &Timestamp{Captured: attrs.ModTime.In(loc)}, nil
}
