package review_test

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/sfomuseum/go-camera-trap/operations/review"
	"github.com/stretchr/testify/require"
)

func TestRenderPlan(t *testing.T) {

	tests := []struct {
		path  string
		kind  review.RenderKind
		label string
	}{
		{"/data/CAM01/a.jpg", review.RenderImage, "image"},
		{"/data/CAM01/a.PNG", review.RenderImage, "image"},
		{"/data/CAM01/b.mp4", review.RenderVideo, "video"},
		{"/data/CAM01/notes.txt", review.RenderNoMedia, "no media"},
		{"", review.RenderNoMedia, "no media"},
	}

	for _, tc := range tests {

		plan := review.RenderPlan(tc.path, 1.0)

		require.Equal(t, tc.kind, plan.Kind, tc.path)
		require.Equal(t, tc.label, plan.Kind.String())
		require.Equal(t, tc.path, plan.Path)
	}
}

func TestScaledBounds(t *testing.T) {

	var buf bytes.Buffer

	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	require.NoError(t, png.Encode(&buf, img))

	plan := review.RenderPlan("/data/CAM01/a.png", 0.5)

	w, h, err := plan.ScaledBounds(&buf)
	require.NoError(t, err)
	require.Equal(t, 50, w)
	require.Equal(t, 20, h)
}

func TestScaledBoundsRejectsNonImage(t *testing.T) {

	plan := review.RenderPlan("/data/CAM01/b.mp4", 1.0)

	_, _, err := plan.ScaledBounds(bytes.NewReader(nil))
	require.Error(t, err)
}
