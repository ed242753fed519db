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

import "math"

// TrilinearSampler interpolates a GrayscaleField at fractional voxel
// coordinates, extending the field beyond its bounds by mirror
// reflection. A sampler is created once with NewTrilinearSampler and
// may then be evaluated concurrently.
type TrilinearSampler struct {
	field      GrayscaleField
	nx, ny, nz int
}

// NewTrilinearSampler initializes a sampler for field.
func NewTrilinearSampler(field GrayscaleField) *TrilinearSampler {
	return &TrilinearSampler{
		field: field,
		nx:    field.X(),
		ny:    field.Y(),
		nz:    field.Z(),
	}
}

// Evaluate returns the interpolated field value at (x, y, z).
func (s *TrilinearSampler) Evaluate(x, y, z float64) float64 {
	i, fx := s.locate(x, s.nx)
	j, fy := s.locate(y, s.ny)
	k, fz := s.locate(z, s.nz)

	var v float64
	for c := 0; c < 8; c++ {
		dx, dy, dz := c&1, (c>>1)&1, (c>>2)&1
		w := weight(fx, dx) * weight(fy, dy) * weight(fz, dz)
		if w == 0 {
			continue
		}
		v += w * s.field.Get(i+dx, j+dy, k+dz)
	}
	return v
}

// locate folds x onto an axis with n samples and returns the index of
// the lower bracketing sample and the fractional distance from it.
func (s *TrilinearSampler) locate(x float64, n int) (int, float64) {
	if n < 2 {
		return 0, 0
	}
	x = foldCoord(x, n-1)
	i := int(math.Floor(x))
	if i >= n-1 {
		i = n - 2
	}
	return i, x - float64(i)
}

func weight(f float64, d int) float64 {
	if d == 0 {
		return 1 - f
	}
	return f
}
