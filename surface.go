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
	"runtime"
	"sync"
)

// SurfaceCache holds, for every unit cell of a field, the triangles
// approximating the pore surface within that cell in the cell's local
// unit-cube frame. It is never modified after it is built and is safe
// for concurrent use.
type SurfaceCache struct {
	PeriodicCellIndex

	// Cells holds the triangles for each cell, indexed by
	// PeriodicCellIndex.Flat.
	Cells [][]Triangle
}

// BuildSurfaceCache triangulates every cell of field at the cutoff's
// lower bound after reflecting the corner values around the cutoff
// midpoint. Cells are processed concurrently on nprocs goroutines;
// if nprocs < 1, GOMAXPROCS is used.
func BuildSurfaceCache(field GrayscaleField, cutoff Cutoff, nprocs int) *SurfaceCache {
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	nx, ny, nz := field.X(), field.Y(), field.Z()
	sc := &SurfaceCache{PeriodicCellIndex: NewPeriodicCellIndex(nx, ny, nz)}
	if nx < 2 || ny < 2 || nz < 2 {
		return sc
	}
	sc.Cells = make([][]Triangle, sc.Len())
	level := float64(cutoff.Low)

	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			var corners [8]float64
			for ii := pp; ii < len(sc.Cells); ii += nprocs {
				k := ii % sc.nz
				j := (ii / sc.nz) % sc.ny
				i := ii / (sc.nz * sc.ny)
				for c := 0; c < 8; c++ {
					corners[c] = cutoff.remap(field.Get(i+c&1, j+(c>>1)&1, k+(c>>2)&1))
				}
				sc.Cells[ii] = triangulateCell(corners, level)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
	return sc
}

// Triangles returns the triangles in unbounded cell (i, j, k),
// mirrored as necessary into the cell's own frame. The returned
// slice must not be modified.
func (sc *SurfaceCache) Triangles(i, j, k int) []Triangle {
	flat, rx, ry, rz := sc.Resolve(i, j, k)
	tris := sc.Cells[flat]
	if len(tris) == 0 || (rx > 0 && ry > 0 && rz > 0) {
		return tris
	}
	out := make([]Triangle, len(tris))
	for n, t := range tris {
		out[n] = t.reflect(rx, ry, rz)
	}
	return out
}

// HasSurface returns whether cell (i, j, k) contains any triangles.
func (sc *SurfaceCache) HasSurface(i, j, k int) bool {
	flat, _, _, _ := sc.Resolve(i, j, k)
	return len(sc.Cells[flat]) > 0
}

// NumTriangles returns the total number of triangles in the cache.
func (sc *SurfaceCache) NumTriangles() int {
	n := 0
	for _, c := range sc.Cells {
		n += len(c)
	}
	return n
}
