package review_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sfomuseum/go-camera-trap/lookup"
	"github.com/sfomuseum/go-camera-trap/operations/review"
	"github.com/sfomuseum/go-camera-trap/record"
	"github.com/stretchr/testify/require"
)

func testSpecies() *lookup.SpeciesLookup {

	lu := new(sync.Map)
	lu.Store("Banded Rail", "BR")
	lu.Store("Pukeko", "PK")

	return lookup.NewSpeciesLookupWithMap(lu)
}

// testSession seeds a table with n records and returns a loaded session
// over it.
func testSession(t *testing.T, ctx context.Context, n int, opts *review.SessionOptions) (*review.Session, record.Store) {

	t.Helper()

	store, err := record.Open(filepath.Join(t.TempDir(), "test.db"), "image_classification")
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	require.NoError(t, store.CreateTable(ctx, "soldiers_bay"))

	staged := make([]*record.Record, 0, n)

	for i := 0; i < n; i++ {

		staged = append(staged, &record.Record{
			FolderPath: "/data/CAM01-2025-11-12",
			MediaPath:  fmt.Sprintf("/data/CAM01-2025-11-12/%03d.jpg", i),
			CameraID:   "CAM01",
			Timezone:   "Pacific/Auckland",
		})
	}

	if n > 0 {
		_, err = store.Append(ctx, "soldiers_bay", staged)
		require.NoError(t, err)
	}

	if opts == nil {
		opts = &review.SessionOptions{}
	}

	opts.Store = store
	opts.Species = testSpecies()
	opts.Table = "soldiers_bay"

	s := review.NewSession(opts)
	require.NoError(t, s.Load(ctx))

	return s, store
}

func TestSessionLoad(t *testing.T) {

	ctx := context.Background()
	s, _ := testSession(t, ctx, 3, nil)

	require.Equal(t, 3, s.Len())
	require.Equal(t, 0, s.Index())
	require.Equal(t, 1.0, s.Scale())
	require.Equal(t, "Record 1 of 3", s.Status())

	_, _, count, _, _, _ := s.Annotations()
	require.Equal(t, "0", count)
}

func TestNavigationSavesBeforeMoving(t *testing.T) {

	ctx := context.Background()
	s, store := testSession(t, ctx, 3, nil)

	first := s.Current()

	s.SetSpecies("Banded Rail")
	s.SetComment("pair at low tide")

	require.NoError(t, s.Next(ctx))
	require.Equal(t, 1, s.Index())

	// the edits landed in the store before the move
	r, err := store.GetByFID(ctx, "soldiers_bay", first.FID)
	require.NoError(t, err)
	require.Equal(t, "Banded Rail", r.Species)
	require.Equal(t, int64(1), r.SpeciesCount)
	require.Equal(t, "pair at low tide", r.Comment)

	// the new record starts with its own (empty) draft
	species, _, count, comment, _, _ := s.Annotations()
	require.Equal(t, "", species)
	require.Equal(t, "0", count)
	require.Equal(t, "", comment)
}

func TestNavigationBoundaries(t *testing.T) {

	ctx := context.Background()
	s, _ := testSession(t, ctx, 3, nil)

	require.NoError(t, s.Previous(ctx))
	require.Equal(t, 0, s.Index(), "previous at the first record stays put")

	require.NoError(t, s.Last(ctx))
	require.Equal(t, 2, s.Index())

	require.NoError(t, s.Next(ctx))
	require.Equal(t, 2, s.Index(), "next at the last record stays put")

	require.NoError(t, s.First(ctx))
	require.Equal(t, 0, s.Index())
}

func TestCountDefaultsOnSpeciesSelection(t *testing.T) {

	ctx := context.Background()
	s, _ := testSession(t, ctx, 1, nil)

	s.SetSpecies("Pukeko")

	_, _, count, _, _, _ := s.Annotations()
	require.Equal(t, "1", count, "zero count defaults to 1 on selection")

	// a count the reviewer typed is left alone
	s.SetCount("3")
	s.SetSpecies("Banded Rail")

	_, _, count, _, _, _ = s.Annotations()
	require.Equal(t, "3", count)

	// clearing the species does not touch the count
	s.SetSpecies("")

	_, _, count, _, _, _ = s.Annotations()
	require.Equal(t, "3", count)
}

func TestShortcodesFollowSpecies(t *testing.T) {

	ctx := context.Background()
	s, _ := testSession(t, ctx, 1, nil)

	s.SetSpecies("Banded Rail")
	s.SetSpeciesSecond("Pukeko")

	_, _, _, _, code, code2 := s.Annotations()
	require.Equal(t, "BR", code)
	require.Equal(t, "PK", code2)

	s.SetSpecies("Moa")

	_, _, _, _, code, _ = s.Annotations()
	require.Equal(t, "", code, "unmatched species derives an empty shortcode")
}

func TestSavedShortcodesAreRederivedOnLoad(t *testing.T) {

	ctx := context.Background()
	s, store := testSession(t, ctx, 2, nil)

	s.SetSpecies("Banded Rail")
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Previous(ctx))

	_, _, _, _, code, _ := s.Annotations()
	require.Equal(t, "BR", code)

	// shortcodes are display state only, never written
	r, err := store.GetByFID(ctx, "soldiers_bay", s.Current().FID)
	require.NoError(t, err)
	require.Equal(t, "", r.Shortcode)
}

func TestNonNumericCountSavesAsAbsent(t *testing.T) {

	ctx := context.Background()
	s, store := testSession(t, ctx, 1, nil)

	s.SetSpecies("Pukeko")
	s.SetCount("several")

	require.NoError(t, s.Save(ctx))

	r, err := store.GetByFID(ctx, "soldiers_bay", s.Current().FID)
	require.NoError(t, err)
	require.Equal(t, "Pukeko", r.Species)
	require.Equal(t, int64(0), r.SpeciesCount)
}

func TestJumpToFID(t *testing.T) {

	ctx := context.Background()
	s, store := testSession(t, ctx, 3, nil)

	target := s.Current().FID + 2

	s.SetSpecies("Pukeko")

	require.NoError(t, s.JumpToFID(ctx, fmt.Sprintf("%d", target)))
	require.Equal(t, 2, s.Index())

	// the jump committed the pending edits on the record we left
	r, err := store.GetByFID(ctx, "soldiers_bay", target-2)
	require.NoError(t, err)
	require.Equal(t, "Pukeko", r.Species)
}

func TestJumpToFIDInvalidInput(t *testing.T) {

	ctx := context.Background()
	s, store := testSession(t, ctx, 3, nil)

	fid := s.Current().FID
	s.SetSpecies("Pukeko")

	err := s.JumpToFID(ctx, "abc")
	require.ErrorIs(t, err, review.ErrInvalidFID)
	require.Equal(t, 0, s.Index(), "invalid input does not move")

	// and does not save
	r, err := store.GetByFID(ctx, "soldiers_bay", fid)
	require.NoError(t, err)
	require.Equal(t, "", r.Species)
}

func TestJumpToFIDNotFound(t *testing.T) {

	ctx := context.Background()
	s, store := testSession(t, ctx, 3, nil)

	fid := s.Current().FID
	s.SetSpecies("Pukeko")

	err := s.JumpToFID(ctx, "99999")
	require.ErrorIs(t, err, review.ErrFIDNotFound)
	require.Equal(t, 0, s.Index())

	r, err := store.GetByFID(ctx, "soldiers_bay", fid)
	require.NoError(t, err)
	require.Equal(t, "", r.Species)
}

func TestClearFields(t *testing.T) {

	ctx := context.Background()
	s, store := testSession(t, ctx, 1, nil)

	s.SetSpecies("Banded Rail")
	s.SetSpeciesSecond("Pukeko")
	s.SetComment("pair at low tide")

	require.NoError(t, s.Save(ctx))

	s.ClearFields()

	species, second, count, comment, code, code2 := s.Annotations()
	require.Equal(t, "", species)
	require.Equal(t, "", second)
	require.Equal(t, "0", count)
	require.Equal(t, "", comment)
	require.Equal(t, "", code)
	require.Equal(t, "", code2)

	// clearing is in-memory until the next save
	r, err := store.GetByFID(ctx, "soldiers_bay", s.Current().FID)
	require.NoError(t, err)
	require.Equal(t, "Banded Rail", r.Species)

	require.NoError(t, s.Save(ctx))

	r, err = store.GetByFID(ctx, "soldiers_bay", s.Current().FID)
	require.NoError(t, err)
	require.Equal(t, "", r.Species)
	require.Equal(t, int64(0), r.SpeciesCount)
}

func TestEmptySession(t *testing.T) {

	ctx := context.Background()
	s, _ := testSession(t, ctx, 0, nil)

	require.Equal(t, 0, s.Len())
	require.Nil(t, s.Current())
	require.Equal(t, "No records loaded", s.Status())

	// navigation and save are no-ops rather than errors
	require.NoError(t, s.Next(ctx))
	require.NoError(t, s.Previous(ctx))
	require.NoError(t, s.First(ctx))
	require.NoError(t, s.Last(ctx))
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.OpenMedia(ctx))

	plan := s.Render()
	require.Equal(t, review.RenderNoMedia, plan.Kind)
}

func TestZoom(t *testing.T) {

	ctx := context.Background()
	s, _ := testSession(t, ctx, 1, nil)

	s.AdjustZoom(1.25)
	s.AdjustZoom(1.25)
	require.InDelta(t, 1.5625, s.Scale(), 0.0001)

	s.FitToWindow()
	require.Equal(t, 1.0, s.Scale())

	plan := s.Render()
	require.Equal(t, review.RenderImage, plan.Kind)
	require.Equal(t, 1.0, plan.Scale)
}

func TestSlideshowStopsAtEnd(t *testing.T) {

	ctx := context.Background()

	s, _ := testSession(t, ctx, 3, &review.SessionOptions{
		SlideshowInterval: 10 * time.Millisecond,
	})

	require.True(t, s.ToggleSlideshow(ctx))
	require.True(t, s.SlideshowActive())

	require.Eventually(t, func() bool {
		return !s.SlideshowActive()
	}, 2*time.Second, 10*time.Millisecond, "slideshow stops when it reaches the end")

	require.Equal(t, 2, s.Index())
}

func TestToggleSlideshowCancels(t *testing.T) {

	ctx := context.Background()

	s, _ := testSession(t, ctx, 3, &review.SessionOptions{
		SlideshowInterval: time.Hour,
	})

	require.True(t, s.ToggleSlideshow(ctx))
	require.False(t, s.ToggleSlideshow(ctx))
	require.False(t, s.SlideshowActive())
	require.Equal(t, 0, s.Index())
}

func TestOpenMedia(t *testing.T) {

	ctx := context.Background()

	opened := make([]string, 0)

	s, _ := testSession(t, ctx, 1, &review.SessionOptions{
		Opener: func(ctx context.Context, path string) error {
			opened = append(opened, path)
			return nil
		},
	})

	require.NoError(t, s.OpenMedia(ctx))
	require.Equal(t, []string{s.Current().MediaPath}, opened)
}

func TestOpenMediaWithoutOpener(t *testing.T) {

	ctx := context.Background()
	s, _ := testSession(t, ctx, 1, nil)

	require.ErrorIs(t, s.OpenMedia(ctx), review.ErrNoOpener)
}
