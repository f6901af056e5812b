// Package record defines the catalog row model for field-camera media and
// the persistent store those rows live in.
package record

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Record is one row in a record table, describing a single media file
// captured by a stationary field camera. Its geometry is the camera's
// geometry, not the subject's.
type Record struct {
	// FID is the stable row identifier assigned by the store.
	FID int64
	// FolderPath is the folder the media file was ingested from.
	FolderPath string
	// MediaPath is the absolute path of the media file, in canonical
	// forward-slash form. It is unique within a table.
	MediaPath string
	// CameraID names the camera that captured the file.
	CameraID string
	// Timezone is the IANA zone name capture times are recorded in.
	Timezone string
	// Captured is the capture timestamp ("2006-01-02 15:04:05"), empty
	// when no timestamp could be determined.
	Captured string
	// LocalTime is the display form of the capture timestamp
	// ("02/01/2006 15:04:05"), empty when unknown.
	LocalTime string
	// Location is the camera's point coordinate, copied at ingestion time.
	Location orb.Point
	// Annotation fields, populated during review.
	Species       string
	SpeciesCount  int64
	SpeciesSecond string
	Comment       string
	// Shortcode fields are derived from the species fields via the
	// species lookup. They are never edited directly.
	Shortcode  string
	Shortcode2 string
	// Fingerprint is the SHA-1 hash of the media file, when computed.
	Fingerprint string
	// Perceptual hashes for images, when computed.
	ImageHashAvg  string
	ImageHashDiff string
}

// Annotations is the subset of record fields written back by the review
// workflow. Shortcodes are carried for display but are never persisted by a
// save; they are recomputed from the species fields.
type Annotations struct {
	Species       string
	SpeciesCount  int64
	SpeciesSecond string
	Comment       string
	Shortcode     string
	Shortcode2    string
}

// ParseCount parses a species count typed by a reviewer. A blank or
// non-numeric value is treated as absent (zero) rather than an error, per
// the save contract. Negative counts are also treated as absent.
func ParseCount(s string) int64 {

	s = strings.TrimSpace(s)

	if s == "" {
		return 0
	}

	i, err := strconv.ParseInt(s, 10, 64)

	if err != nil || i < 0 {
		return 0
	}

	return i
}
