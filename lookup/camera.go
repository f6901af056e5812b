package lookup

import (
	"context"
	"sort"
	"sync"

	"github.com/paulmach/orb"
)

// CameraRegistry maps camera identifiers to their fixed geographic
// coordinates. Cameras are stationary; the registry is immutable for the
// session once loaded.
type CameraRegistry struct {
	lu *sync.Map
}

// NewCameraRegistry loads the camera-location table from one or more
// LookerUpper instances.
func NewCameraRegistry(ctx context.Context, looker_uppers ...LookerUpper) (*CameraRegistry, error) {

	append_funcs := []AppendLookupFunc{
		CameraAppendLookupFunc,
	}

	lu, err := NewLookupMap(ctx, looker_uppers, append_funcs)

	if err != nil {
		return nil, err
	}

	return NewCameraRegistryWithMap(lu), nil
}

// NewCameraRegistryWithMap wraps an already-populated lookup map.
func NewCameraRegistryWithMap(lu *sync.Map) *CameraRegistry {
	return &CameraRegistry{lu: lu}
}

// Locate returns the coordinate of a camera and whether it is known.
func (r *CameraRegistry) Locate(camera_id string) (orb.Point, bool) {

	v, ok := r.lu.Load(camera_id)

	if !ok {
		return orb.Point{}, false
	}

	return v.(orb.Point), true
}

// IDs returns the registry's camera identifiers, sorted.
func (r *CameraRegistry) IDs() []string {

	ids := make([]string, 0)

	r.lu.Range(func(k interface{}, v interface{}) bool {
		ids = append(ids, k.(string))
		return true
	})

	sort.Strings(ids)
	return ids
}
