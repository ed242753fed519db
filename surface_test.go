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
	"reflect"
	"testing"
)

// In wallField the remapped pore value is 155 and the level is 100,
// so the surface crosses each edge 55/155 of the way from the pore voxel.
const (
	wallLow  = 55.0 / 155.0
	wallHigh = 100.0 / 155.0
)

func TestSurfaceCacheWall(t *testing.T) {
	sc := BuildSurfaceCache(wallField(), wallCutoff, 2)
	if n := sc.NumTriangles(); n != 324 {
		t.Errorf("have %d triangles, want 324", n)
	}
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			for k := 0; k < 9; k++ {
				tris := sc.Triangles(i, j, k)
				switch k {
				case 4, 5:
					if len(tris) != 2 {
						t.Fatalf("cell (%d,%d,%d): have %d triangles, want 2", i, j, k, len(tris))
					}
					want := wallLow
					if k == 5 {
						want = wallHigh
					}
					for _, tri := range tris {
						for _, v := range tri {
							if absDifferent(v.Z, want) {
								t.Errorf("cell (%d,%d,%d): vertex z=%g, want %g", i, j, k, v.Z, want)
							}
						}
					}
				default:
					if len(tris) != 0 || sc.HasSurface(i, j, k) {
						t.Errorf("cell (%d,%d,%d): have %d triangles, want 0", i, j, k, len(tris))
					}
				}
			}
		}
	}
}

func TestSurfaceCacheMirror(t *testing.T) {
	sc := BuildSurfaceCache(wallField(), wallCutoff, 1)
	// Cell k=-5 is the mirror image of cell k=4.
	tris := sc.Triangles(2, 3, -5)
	if len(tris) != 2 {
		t.Fatalf("have %d triangles, want 2", len(tris))
	}
	for _, tri := range tris {
		for _, v := range tri {
			if absDifferent(v.Z, 1-wallLow) {
				t.Errorf("vertex z=%g, want %g", v.Z, 1-wallLow)
			}
		}
	}
	// The cached triangles must not be modified by mirroring.
	for _, tri := range sc.Triangles(2, 3, 4) {
		for _, v := range tri {
			if absDifferent(v.Z, wallLow) {
				t.Errorf("cached vertex z=%g, want %g", v.Z, wallLow)
			}
		}
	}
	// Cell k=13 is the mirror image of cell k=4 on the other side.
	if !reflect.DeepEqual(sc.Triangles(2, 3, 13), tris) {
		t.Error("cells -5 and 13 should hold the same triangles")
	}
}

func TestSurfaceCacheOpen(t *testing.T) {
	sc := BuildSurfaceCache(openField(), Cutoff{Low: 0, High: MaxGrayscale}, 0)
	if n := sc.NumTriangles(); n != 0 {
		t.Errorf("have %d triangles, want 0", n)
	}
	if sc.Len() != 729 {
		t.Errorf("have %d cells, want 729", sc.Len())
	}
}

func TestSurfaceCacheThreads(t *testing.T) {
	f := wallField()
	f.Set(150, 2, 2, 2)
	f.Set(300, 7, 1, 8)
	a := BuildSurfaceCache(f, wallCutoff, 1)
	b := BuildSurfaceCache(f, wallCutoff, 7)
	if !reflect.DeepEqual(a, b) {
		t.Error("surface cache depends on the number of goroutines")
	}
}

// Values above the cutoff are treated the same as values below it.
func TestSurfaceCacheUpperBound(t *testing.T) {
	f := openField()
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			f.Set(MaxGrayscale, i, j, 5)
		}
	}
	sc := BuildSurfaceCache(f, wallCutoff, 3)
	if n := sc.NumTriangles(); n != 324 {
		t.Errorf("have %d triangles, want 324", n)
	}
}
