/*
Copyright © 2026 the PoreWalk authors.
This file is part of PoreWalk.

PoreWalk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreWalk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreWalk.  If not, see <http://www.gnu.org/licenses/>.
*/

package porewalk

import (
	"context"
	"fmt"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/golang/groupcache/lru"
	"github.com/spatialmodel/porewalk/internal/hash"
)

// SurfaceCacheStore builds surface caches on demand and keeps the most
// recently used ones in memory, so that repeated calculations on the
// same field and cutoff (for example, with different walker settings)
// share one surface cache. Concurrent requests for the same surface
// cache are deduplicated. Fields must be comparable (for example, a
// *Field) and must not be modified after they are passed to the store.
type SurfaceCacheStore struct {
	cache  *requestcache.Cache
	nprocs int

	// keys remembers the content keys of recently seen fields so that
	// they do not need to be hashed again.
	keys   *lru.Cache
	keysMu sync.Mutex
}

type surfaceRequest struct {
	field  GrayscaleField
	cutoff Cutoff
}

// NewSurfaceCacheStore creates a store that holds up to maxEntries
// surface caches in memory and builds each one using nprocs goroutines.
func NewSurfaceCacheStore(nprocs, maxEntries int) *SurfaceCacheStore {
	s := &SurfaceCacheStore{
		nprocs: nprocs,
		keys:   lru.New(maxEntries),
	}
	s.cache = requestcache.NewCache(s.build, 1, requestcache.Deduplicate(),
		requestcache.Memory(maxEntries))
	return s
}

func (s *SurfaceCacheStore) build(ctx context.Context, request interface{}) (interface{}, error) {
	r := request.(surfaceRequest)
	return BuildSurfaceCache(r.field, r.cutoff, s.nprocs), nil
}

// Key returns the content key of field.
func (s *SurfaceCacheStore) Key(field GrayscaleField) string {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	if k, ok := s.keys.Get(field); ok {
		return k.(string)
	}
	k := hash.Grid(field.X(), field.Y(), field.Z(), field.Get, field.VoxelLength())
	s.keys.Add(field, k)
	return k
}

// Get returns the surface cache for field at cutoff, building it if
// necessary.
func (s *SurfaceCacheStore) Get(ctx context.Context, field GrayscaleField, cutoff Cutoff) (*SurfaceCache, error) {
	key := s.Key(field) + hash.Hash(cutoff)
	req := s.cache.NewRequest(ctx, surfaceRequest{field: field, cutoff: cutoff}, key)
	result, err := req.Result()
	if err != nil {
		return nil, fmt.Errorf("porewalk: building surface cache: %v", err)
	}
	return result.(*SurfaceCache), nil
}

// Requests returns the number of requests received by the
// deduplicator, the memory cache, and the surface builder, in that order.
func (s *SurfaceCacheStore) Requests() []int {
	return s.cache.Requests()
}
