package review

import (
	"strings"

	"github.com/sfomuseum/go-camera-trap/lookup"
)

// DeriveShortcodes maps a primary and secondary species name to their
// shortcodes. An absent or unmatched name maps to an empty shortcode;
// shortcodes are never edited directly, only recomputed from the species
// fields.
func DeriveShortcodes(sp *lookup.SpeciesLookup, species string, species_second string) (string, string) {
	return sp.Shortcode(species), sp.Shortcode(species_second)
}

// DefaultCount reports whether a count field currently reading zero or
// absent should default to 1 when a primary species is selected.
func DefaultCount(count string) bool {

	count = strings.TrimSpace(count)
	return count == "" || count == "0"
}
