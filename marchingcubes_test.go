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
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCubeTables(t *testing.T) {
	for n, e := range cubeEdges {
		if e.b != e.a|1<<uint(e.axis) {
			t.Errorf("edge %d: corners %d and %d do not differ along axis %d", n, e.a, e.b, e.axis)
		}
		if edgeIndex[e.a][e.b] != n || edgeIndex[e.b][e.a] != n {
			t.Errorf("edge %d: bad edge index", n)
		}
	}
	for n, f := range cubeFaces {
		for i := 0; i < 4; i++ {
			c1, c2 := f[i], f[(i+1)%4]
			d := c1 ^ c2
			if d != 1 && d != 2 && d != 4 {
				t.Errorf("face %d: corners %d and %d are not adjacent", n, c1, c2)
			}
		}
	}
}

// Every edge whose corners straddle the surface must appear in exactly
// one polygon, and no other edge may appear at all. Because each edge
// is shared by two faces that each link it once, this means the
// polygons are closed.
func TestPolygonTableEdges(t *testing.T) {
	for mask := 0; mask < 256; mask++ {
		count := make(map[int]int)
		for _, poly := range polygonTable[mask] {
			if len(poly) < 3 {
				t.Errorf("mask %08b: polygon %v has fewer than 3 vertices", mask, poly)
			}
			for _, e := range poly {
				count[e]++
			}
		}
		for n, e := range cubeEdges {
			in1 := mask&(1<<uint(e.a)) != 0
			in2 := mask&(1<<uint(e.b)) != 0
			want := 0
			if in1 != in2 {
				want = 1
			}
			if count[n] != want {
				t.Errorf("mask %08b: edge %d appears %d times, want %d", mask, n, count[n], want)
			}
		}
	}
}

func TestTriangulateCellEmpty(t *testing.T) {
	var inside, outside [8]float64
	for c := range inside {
		inside[c] = 10
	}
	if tris := triangulateCell(inside, 5); len(tris) != 0 {
		t.Errorf("all inside: have %d triangles, want 0", len(tris))
	}
	if tris := triangulateCell(outside, 5); len(tris) != 0 {
		t.Errorf("all outside: have %d triangles, want 0", len(tris))
	}
}

func TestTriangulateCellCorner(t *testing.T) {
	var corners [8]float64
	corners[0] = 4
	tris := triangulateCell(corners, 1)
	if len(tris) != 1 {
		t.Fatalf("have %d triangles, want 1", len(tris))
	}
	want := map[r3.Vec]bool{
		{X: 0.75}: true,
		{Y: 0.75}: true,
		{Z: 0.75}: true,
	}
	for _, v := range tris[0] {
		if !want[v] {
			t.Errorf("unexpected vertex %v", v)
		}
		delete(want, v)
	}
}

func TestTriangulateCellPlane(t *testing.T) {
	var corners [8]float64
	for c := 0; c < 4; c++ {
		corners[c] = 1
	}
	tris := triangulateCell(corners, 0.25)
	if len(tris) != 2 {
		t.Fatalf("have %d triangles, want 2", len(tris))
	}
	var area float64
	for _, tri := range tris {
		for _, v := range tri {
			if absDifferent(v.Z, 0.75) {
				t.Errorf("vertex %v is not on the plane z=0.75", v)
			}
		}
		area += tri.Area()
	}
	if absDifferent(area, 1) {
		t.Errorf("area: have %g, want 1", area)
	}
}

// Two diagonal corners on a face are cut off separately.
func TestTriangulateCellAmbiguousFace(t *testing.T) {
	var corners [8]float64
	corners[0] = 1
	corners[3] = 1
	tris := triangulateCell(corners, 0.5)
	if len(tris) != 2 {
		t.Fatalf("have %d triangles, want 2", len(tris))
	}
	var area float64
	for _, tri := range tris {
		area += tri.Area()
	}
	// Each corner cut at half an edge has area sqrt(3)/8.
	if different(area, 2*0.21650635094610965, 1e-10) {
		t.Errorf("area: have %g", area)
	}
}
