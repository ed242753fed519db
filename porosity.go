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

// Porosity returns the fraction of voxels in field whose values are
// within cutoff.
func Porosity(field GrayscaleField, cutoff Cutoff) float64 {
	nx, ny, nz := field.X(), field.Y(), field.Z()
	total := nx * ny * nz
	if total <= 0 {
		return 0
	}
	n := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				if cutoff.Contains(field.Get(i, j, k)) {
					n++
				}
			}
		}
	}
	return float64(n) / float64(total)
}
