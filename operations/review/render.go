package review

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/sfomuseum/go-camera-trap/media"
)

// RenderKind selects how the current record is displayed.
type RenderKind int

const (
	// RenderNoMedia displays a "no media linked" placeholder.
	RenderNoMedia RenderKind = iota
	// RenderImage displays the image scaled by the current scale factor,
	// preserving aspect ratio.
	RenderImage
	// RenderVideo displays a placeholder plus an affordance to launch
	// external playback.
	RenderVideo
)

// String implements the fmt.Stringer interface.
func (k RenderKind) String() string {

	switch k {
	case RenderImage:
		return "image"
	case RenderVideo:
		return "video"
	default:
		return "no media"
	}
}

// Plan describes how to display a record's media. It is a pure function of
// the media path and the scale factor.
type Plan struct {
	Kind  RenderKind
	Path  string
	Scale float64
}

// RenderPlan returns the display plan for a media path at a scale factor:
// images render scaled, videos render a placeholder with a playback
// affordance, anything else (missing path, unknown extension) renders a "no
// media" placeholder.
func RenderPlan(media_path string, scale float64) *Plan {

	p := &Plan{
		Path:  media_path,
		Scale: scale,
	}

	if media_path == "" {
		p.Kind = RenderNoMedia
		return p
	}

	switch media.Classify(media_path) {
	case media.Image:
		p.Kind = RenderImage
	case media.Video:
		p.Kind = RenderVideo
	default:
		p.Kind = RenderNoMedia
	}

	return p
}

// ScaledBounds probes an image's dimensions from r and returns them scaled
// by the plan's scale factor, aspect ratio preserved.
func (p *Plan) ScaledBounds(r io.Reader) (int, int, error) {

	if p.Kind != RenderImage {
		return 0, 0, fmt.Errorf("Not an image plan")
	}

	cfg, _, err := image.DecodeConfig(r)

	if err != nil {
		return 0, 0, fmt.Errorf("Failed to decode image config, %w", err)
	}

	w := int(math.Round(float64(cfg.Width) * p.Scale))
	h := int(math.Round(float64(cfg.Height) * p.Scale))

	return w, h, nil
}
