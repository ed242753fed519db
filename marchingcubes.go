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

import "gonum.org/v1/gonum/spatial/r3"

// Cube corners are numbered so that bit 0 of the corner number is the
// x coordinate, bit 1 is y, and bit 2 is z.

// cubeEdge is an edge of the unit cube, running from corner a to
// corner b along axis.
type cubeEdge struct {
	a, b, axis int
}

// cubeEdges holds the 12 edges of the unit cube.
var cubeEdges [12]cubeEdge

// edgeIndex maps a pair of corners to the index of the edge between them.
var edgeIndex [8][8]int

// cubeFaces holds the corners of each cube face in cyclic order.
var cubeFaces [6][4]int

// polygonTable holds, for each of the 256 inside/outside corner
// configurations, the closed polygons (as cycles of edge indices) that
// separate the inside corners from the outside corners.
var polygonTable [256][][]int

func init() {
	n := 0
	for axis := 0; axis < 3; axis++ {
		for c := 0; c < 8; c++ {
			if c&(1<<uint(axis)) != 0 {
				continue
			}
			b := c | 1<<uint(axis)
			cubeEdges[n] = cubeEdge{a: c, b: b, axis: axis}
			edgeIndex[c][b], edgeIndex[b][c] = n, n
			n++
		}
	}

	n = 0
	for axis := 0; axis < 3; axis++ {
		u, v := uint((axis+1)%3), uint((axis+2)%3)
		for side := 0; side < 2; side++ {
			base := side << uint(axis)
			cubeFaces[n] = [4]int{base, base | 1<<u, base | 1<<u | 1<<v, base | 1<<v}
			n++
		}
	}

	for mask := 0; mask < 256; mask++ {
		polygonTable[mask] = buildPolygons(mask)
	}
}

// buildPolygons walks the faces of the cube for corner configuration
// mask, joining the crossing points on each face into segments and then
// chaining the segments into closed loops. On faces where two diagonal
// corners are inside, each inside corner is cut off separately. The
// choice depends only on the face's corners, so neighboring cells agree
// on it and the resulting surface is watertight.
func buildPolygons(mask int) [][]int {
	inside := func(c int) bool { return mask&(1<<uint(c)) != 0 }
	var link [12][]int
	connect := func(e1, e2 int) {
		link[e1] = append(link[e1], e2)
		link[e2] = append(link[e2], e1)
	}
	for _, f := range cubeFaces {
		var crossing []int
		for i := 0; i < 4; i++ {
			c1, c2 := f[i], f[(i+1)%4]
			if inside(c1) != inside(c2) {
				crossing = append(crossing, edgeIndex[c1][c2])
			}
		}
		switch len(crossing) {
		case 2:
			connect(crossing[0], crossing[1])
		case 4:
			for i := 0; i < 4; i++ {
				if inside(f[i]) {
					prev := f[(i+3)%4]
					next := f[(i+1)%4]
					connect(edgeIndex[prev][f[i]], edgeIndex[f[i]][next])
				}
			}
		}
	}

	var polygons [][]int
	var visited [12]bool
	for start := 0; start < 12; start++ {
		if visited[start] || len(link[start]) == 0 {
			continue
		}
		loop := []int{start}
		visited[start] = true
		prev, cur := start, link[start][0]
		for cur != start {
			loop = append(loop, cur)
			visited[cur] = true
			next := link[cur][0]
			if next == prev {
				next = link[cur][1]
			}
			prev, cur = cur, next
		}
		polygons = append(polygons, loop)
	}
	return polygons
}

// cornerPosition returns the location of corner c in the unit cube.
func cornerPosition(c int) r3.Vec {
	return r3.Vec{X: float64(c & 1), Y: float64((c >> 1) & 1), Z: float64((c >> 2) & 1)}
}

// triangulateCell returns the triangles approximating the iso-surface
// at level within a unit cube with the given corner values.
// A corner is inside when its value is >= level.
func triangulateCell(corners [8]float64, level float64) []Triangle {
	mask := 0
	for c, v := range corners {
		if v >= level {
			mask |= 1 << uint(c)
		}
	}
	polygons := polygonTable[mask]
	if len(polygons) == 0 {
		return nil
	}

	var vertex [12]r3.Vec
	var tris []Triangle
	for _, poly := range polygons {
		for _, e := range poly {
			edge := cubeEdges[e]
			va, vb := corners[edge.a], corners[edge.b]
			t := (level - va) / (vb - va)
			p := cornerPosition(edge.a)
			switch edge.axis {
			case 0:
				p.X = t
			case 1:
				p.Y = t
			case 2:
				p.Z = t
			}
			vertex[e] = p
		}
		for i := 1; i < len(poly)-1; i++ {
			tris = append(tris, Triangle{vertex[poly[0]], vertex[poly[i]], vertex[poly[i+1]]})
		}
	}
	return tris
}
