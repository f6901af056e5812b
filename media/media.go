// Package media classifies field-camera media files and extracts capture
// timestamps from them.
package media

import (
	"path/filepath"
	"strings"
)

// Type describes how a media file is handled by the catalog.
type Type int

const (
	// Unsupported media is excluded from ingestion.
	Unsupported Type = iota
	// Image media carries an embedded capture timestamp when one exists.
	Image
	// Video media is timestamped from its last-modification time.
	Video
)

// String implements the fmt.Stringer interface.
func (t Type) String() string {

	switch t {
	case Image:
		return "image"
	case Video:
		return "video"
	default:
		return "unsupported"
	}
}

var image_ext = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var video_ext = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mpeg": true,
	".mpg":  true,
}

// Classify returns the media Type for path. Classification is by filename
// extension only, case-insensitive.
func Classify(path string) Type {

	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case image_ext[ext]:
		return Image
	case video_ext[ext]:
		return Video
	default:
		return Unsupported
	}
}
