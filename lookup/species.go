package lookup

import (
	"context"
	"sort"
	"sync"
)

// SpeciesLookup is the controlled species vocabulary: a static mapping from
// a species name to its shortcode.
type SpeciesLookup struct {
	lu *sync.Map
}

// NewSpeciesLookup loads the species vocabulary from one or more
// LookerUpper instances.
func NewSpeciesLookup(ctx context.Context, looker_uppers ...LookerUpper) (*SpeciesLookup, error) {

	append_funcs := []AppendLookupFunc{
		SpeciesAppendLookupFunc,
	}

	lu, err := NewLookupMap(ctx, looker_uppers, append_funcs)

	if err != nil {
		return nil, err
	}

	return NewSpeciesLookupWithMap(lu), nil
}

// NewSpeciesLookupWithMap wraps an already-populated lookup map.
func NewSpeciesLookupWithMap(lu *sync.Map) *SpeciesLookup {
	return &SpeciesLookup{lu: lu}
}

// Shortcode returns the shortcode for a species name. An unmatched or empty
// name maps to an empty shortcode.
func (s *SpeciesLookup) Shortcode(name string) string {

	if name == "" {
		return ""
	}

	v, ok := s.lu.Load(name)

	if !ok {
		return ""
	}

	return v.(string)
}

// Names returns the vocabulary's species names, sorted.
func (s *SpeciesLookup) Names() []string {

	names := make([]string, 0)

	s.lu.Range(func(k interface{}, v interface{}) bool {
		names = append(names, k.(string))
		return true
	})

	sort.Strings(names)
	return names
}
