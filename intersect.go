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
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// parallelTolerance is the magnitude below which a segment is
	// considered parallel to a triangle's plane.
	parallelTolerance = 1e-12

	// minHitDistance is the distance below which an intersection is
	// treated as the surface the walker is leaving.
	minHitDistance = 1e-9

	// maxHitParameter is the largest plane intersection parameter
	// that is considered numerically valid.
	maxHitParameter = 1e12
)

// Triangle is a triangle in a cell's local unit-cube frame.
type Triangle [3]r3.Vec

// Normal returns the (non-normalized) normal vector of t.
func (t Triangle) Normal() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Area returns the area of t.
func (t Triangle) Area() float64 {
	return r3.Norm(t.Normal()) / 2
}

// reflect returns t mirrored along each axis whose sign is negative.
func (t Triangle) reflect(rx, ry, rz int) Triangle {
	if rx > 0 && ry > 0 && rz > 0 {
		return t
	}
	for i := range t {
		if rx < 0 {
			t[i].X = 1 - t[i].X
		}
		if ry < 0 {
			t[i].Y = 1 - t[i].Y
		}
		if rz < 0 {
			t[i].Z = 1 - t[i].Z
		}
	}
	return t
}

// Intersection is the location where a segment crosses a triangle.
type Intersection struct {
	// T is the position of the intersection along the segment,
	// where 0 is the segment start and 1 is the segment end.
	T float64

	// Point is the intersection point.
	Point r3.Vec
}

// Intersect returns where the line beginning at start and passing
// through end crosses triangle tri, and whether it does so.
// Intersections behind start are rejected, but intersections beyond
// end are not: the caller is responsible for checking T against the
// extent of the segment. Degenerate triangles and segments parallel to
// the triangle's plane never intersect.
func Intersect(start, end r3.Vec, tri Triangle) (Intersection, bool) {
	u := r3.Sub(tri[1], tri[0])
	v := r3.Sub(tri[2], tri[0])
	n := r3.Cross(u, v)
	if n == (r3.Vec{}) {
		return Intersection{}, false
	}

	dir := r3.Sub(end, start)
	w0 := r3.Sub(start, tri[0])
	a := -r3.Dot(n, w0)
	b := r3.Dot(n, dir)
	if b < parallelTolerance && b > -parallelTolerance {
		return Intersection{}, false
	}

	r := a / b
	if r < 0 {
		return Intersection{}, false
	}
	p := r3.Add(start, r3.Scale(r, dir))

	uu := r3.Dot(u, u)
	uv := r3.Dot(u, v)
	vv := r3.Dot(v, v)
	w := r3.Sub(p, tri[0])
	wu := r3.Dot(w, u)
	wv := r3.Dot(w, v)
	d := uv*uv - uu*vv

	s := (uv*wv - vv*wu) / d
	if s < 0 || s > 1 {
		return Intersection{}, false
	}
	t := (uv*wu - uu*wv) / d
	if t < 0 || s+t > 1 {
		return Intersection{}, false
	}
	return Intersection{T: r, Point: p}, true
}
