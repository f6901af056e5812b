// Package review implements the interactive review workflow over an ordered
// set of media records: navigation with save-before-move semantics, species
// annotation with derived shortcodes, zoom state and a slideshow timer.
package review

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sfomuseum/go-camera-trap/lookup"
	"github.com/sfomuseum/go-camera-trap/record"
)

// ErrInvalidFID indicates a jump target that is not numeric.
var ErrInvalidFID = errors.New("invalid fid")

// ErrFIDNotFound indicates a numeric jump target matching no record in the
// session's snapshot.
var ErrFIDNotFound = errors.New("fid not found")

// ErrNoOpener indicates the session has no external viewer configured.
var ErrNoOpener = errors.New("no media opener configured")

// OpenMediaFunc hands a media path to an external viewer or player.
type OpenMediaFunc func(context.Context, string) error

// SessionOptions is a struct containing application-specific options for a
// review session.
type SessionOptions struct {
	// The store edits are committed to.
	Store record.Store
	// The species vocabulary shortcodes are derived from.
	Species *lookup.SpeciesLookup
	// The record table under review.
	Table string
	// How often an active slideshow advances. Defaults to 2 seconds.
	SlideshowInterval time.Duration
	// Optional hook for launching external playback of the current
	// media file.
	Opener OpenMediaFunc
}

// draft holds the in-memory (not yet saved) annotation edits for the
// current record. The count is kept as typed text; it is parsed at save
// time per the save contract.
type draft struct {
	species        string
	species_second string
	count          string
	comment        string
	shortcode      string
	shortcode2     string
}

// Session holds an ordered snapshot of media records, the current position,
// the display scale and the slideshow timer state. The snapshot is taken at
// load time; external changes to the store are not reflected until reload.
// All operations are safe to call from the slideshow timer and from user
// input; both paths share the same code.
type Session struct {
	store    record.Store
	species  *lookup.SpeciesLookup
	table    string
	interval time.Duration
	opener   OpenMediaFunc

	mu        sync.Mutex
	records   []*record.Record
	index     int
	scale     float64
	edits     draft
	slideshow chan bool
}

// NewSession creates a review session. Records are not loaded until Load or
// LoadRecords is called.
func NewSession(opts *SessionOptions) *Session {

	interval := opts.SlideshowInterval

	if interval <= 0 {
		interval = 2 * time.Second
	}

	s := &Session{
		store:    opts.Store,
		species:  opts.Species,
		table:    opts.Table,
		interval: interval,
		opener:   opts.Opener,
		scale:    1.0,
	}

	return s
}

// Load snapshots the session's table from the store and resets position and
// scale. An empty table is not an error; navigation and save become no-ops
// until a non-empty set is loaded.
func (s *Session) Load(ctx context.Context) error {

	records, err := s.store.Records(ctx, s.table)

	if err != nil {
		return fmt.Errorf("Failed to load records from '%s', %w", s.table, err)
	}

	s.LoadRecords(records)
	return nil
}

// LoadRecords snapshots an explicit ordered record set.
func (s *Session) LoadRecords(records []*record.Record) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = records
	s.index = 0
	s.scale = 1.0
	s.loadDraft()
}

// loadDraft seeds the edit state from the current record, recomputing
// shortcodes from the species fields. The caller holds s.mu.
func (s *Session) loadDraft() {

	if len(s.records) == 0 {
		s.edits = draft{count: "0"}
		return
	}

	r := s.records[s.index]

	code, code2 := DeriveShortcodes(s.species, r.Species, r.SpeciesSecond)

	s.edits = draft{
		species:        r.Species,
		species_second: r.SpeciesSecond,
		count:          strconv.FormatInt(r.SpeciesCount, 10),
		comment:        r.Comment,
		shortcode:      code,
		shortcode2:     code2,
	}
}

// Len returns the number of records in the snapshot.
func (s *Session) Len() int {

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// Current returns the record at the session's position, or nil when the
// snapshot is empty.
func (s *Session) Current() *record.Record {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return nil
	}

	return s.records[s.index]
}

// Index returns the session's position.
func (s *Session) Index() int {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index
}

// Scale returns the display scale factor.
func (s *Session) Scale() float64 {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scale
}

// Status describes the session's position, "Record 3 of 17" style.
func (s *Session) Status() string {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return "No records loaded"
	}

	return fmt.Sprintf("Record %d of %d", s.index+1, len(s.records))
}

// Annotations returns the in-memory edit state for display: species fields,
// count as typed, comment and the derived shortcodes.
func (s *Session) Annotations() (species string, species_second string, count string, comment string, shortcode string, shortcode2 string) {

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.edits
	return d.species, d.species_second, d.count, d.comment, d.shortcode, d.shortcode2
}

// SetSpecies records a primary species selection, rederiving the shortcode.
// On transition in to a non-empty selection a zero or absent count defaults
// to 1, so a single-animal sighting is one edit rather than two. A count the
// reviewer already entered is left alone.
func (s *Session) SetSpecies(name string) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.edits.species = name
	s.edits.shortcode = s.species.Shortcode(name)

	if name != "" && DefaultCount(s.edits.count) {
		s.edits.count = "1"
	}
}

// SetSpeciesSecond records a secondary species selection, rederiving its
// shortcode.
func (s *Session) SetSpeciesSecond(name string) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.edits.species_second = name
	s.edits.shortcode2 = s.species.Shortcode(name)
}

// SetCount records the count field as typed. It is parsed at save time.
func (s *Session) SetCount(text string) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.edits.count = text
}

// SetComment records the comment field.
func (s *Session) SetComment(text string) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.edits.comment = text
}

// ClearFields resets the in-memory annotation fields for the current record
// to their defaults. The store is not touched until the next save.
func (s *Session) ClearFields() {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return
	}

	s.edits = draft{count: "0"}
}

// Save commits the current record's pending edits to the store and to the
// in-memory snapshot. Shortcodes and the FID are never written; a
// non-numeric count is saved as absent rather than failing the save. Saving
// with no records loaded is a no-op.
func (s *Session) Save(ctx context.Context) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(ctx)
}

func (s *Session) saveLocked(ctx context.Context) error {

	if len(s.records) == 0 {
		return nil
	}

	r := s.records[s.index]

	a := &record.Annotations{
		Species:       s.edits.species,
		SpeciesCount:  record.ParseCount(s.edits.count),
		SpeciesSecond: s.edits.species_second,
		Comment:       s.edits.comment,
	}

	err := s.store.UpdateAnnotations(ctx, s.table, r.FID, a)

	if err != nil {
		return fmt.Errorf("Failed to save record %d, %w", r.FID, err)
	}

	r.Species = a.Species
	r.SpeciesCount = a.SpeciesCount
	r.SpeciesSecond = a.SpeciesSecond
	r.Comment = a.Comment

	return nil
}

// Next commits pending edits then advances one record. At the last record
// the position is unchanged and an active slideshow stops. The slideshow
// timer invokes this same method.
func (s *Session) Next(ctx context.Context) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return nil
	}

	err := s.saveLocked(ctx)

	if err != nil {
		return err
	}

	if s.index < len(s.records)-1 {
		s.index += 1
		s.loadDraft()
	} else {
		s.stopSlideshowLocked()
	}

	return nil
}

// Previous commits pending edits then moves back one record. At the first
// record the position is unchanged.
func (s *Session) Previous(ctx context.Context) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return nil
	}

	err := s.saveLocked(ctx)

	if err != nil {
		return err
	}

	if s.index > 0 {
		s.index -= 1
		s.loadDraft()
	}

	return nil
}

// First commits pending edits then jumps to the first record.
func (s *Session) First(ctx context.Context) error {
	return s.jumpTo(ctx, 0)
}

// Last commits pending edits then jumps to the last record.
func (s *Session) Last(ctx context.Context) error {

	s.mu.Lock()
	n := len(s.records)
	s.mu.Unlock()

	return s.jumpTo(ctx, n-1)
}

func (s *Session) jumpTo(ctx context.Context, index int) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return nil
	}

	err := s.saveLocked(ctx)

	if err != nil {
		return err
	}

	s.index = index
	s.loadDraft()
	return nil
}

// JumpToFID moves to the record whose FID matches target. A non-numeric
// target is an invalid-input error: nothing moves and nothing is saved. A
// numeric target matching no record is a not-found error and nothing moves;
// pending edits are only committed when a match is found.
func (s *Session) JumpToFID(ctx context.Context, target string) error {

	fid, err := strconv.ParseInt(target, 10, 64)

	if err != nil {
		return fmt.Errorf("%w: '%s'", ErrInvalidFID, target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {

		if r.FID != fid {
			continue
		}

		err := s.saveLocked(ctx)

		if err != nil {
			return err
		}

		s.index = i
		s.loadDraft()
		return nil
	}

	return fmt.Errorf("%w: %d", ErrFIDNotFound, fid)
}

// AdjustZoom multiplies the display scale by factor. Position is unchanged
// and no save is triggered.
func (s *Session) AdjustZoom(factor float64) {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scale *= factor
}

// FitToWindow resets the display scale to 1.0.
func (s *Session) FitToWindow() {

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scale = 1.0
}

// SlideshowActive reports whether the slideshow timer is running.
func (s *Session) SlideshowActive() bool {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.slideshow != nil
}

// ToggleSlideshow starts a recurring timer that advances the session every
// interval, or cancels it if one is running. Reaching the end of the record
// set also stops the timer; manual navigation while it runs does not. The
// returned boolean reports whether the slideshow is now active.
func (s *Session) ToggleSlideshow(ctx context.Context) bool {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slideshow != nil {
		s.stopSlideshowLocked()
		return false
	}

	stop := make(chan bool)
	s.slideshow = stop

	go func() {

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:

				err := s.Next(ctx)

				if err != nil {
					return
				}
			}
		}
	}()

	return true
}

// stopSlideshowLocked cancels the slideshow timer. The caller holds s.mu.
func (s *Session) stopSlideshowLocked() {

	if s.slideshow == nil {
		return
	}

	close(s.slideshow)
	s.slideshow = nil
}

// OpenMedia hands the current record's media path to the external viewer.
func (s *Session) OpenMedia(ctx context.Context) error {

	s.mu.Lock()
	r := (*record.Record)(nil)

	if len(s.records) > 0 {
		r = s.records[s.index]
	}

	opener := s.opener
	s.mu.Unlock()

	if r == nil {
		return nil
	}

	if opener == nil {
		return ErrNoOpener
	}

	return opener(ctx, r.MediaPath)
}

// Render returns the display plan for the current record at the current
// scale.
func (s *Session) Render() *Plan {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.records) == 0 {
		return &Plan{Kind: RenderNoMedia, Scale: s.scale}
	}

	return RenderPlan(s.records[s.index].MediaPath, s.scale)
}
