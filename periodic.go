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

// PeriodicCellIndex maps unbounded cell coordinates onto the cells
// of a field that is tiled infinitely with alternating mirror images.
type PeriodicCellIndex struct {
	// nx, ny, and nz are the number of cells along each axis,
	// one fewer than the number of voxels.
	nx, ny, nz int
}

// NewPeriodicCellIndex returns an index for a field with the given
// number of voxels along each axis.
func NewPeriodicCellIndex(x, y, z int) PeriodicCellIndex {
	return PeriodicCellIndex{nx: x - 1, ny: y - 1, nz: z - 1}
}

// Len returns the total number of cells.
func (p PeriodicCellIndex) Len() int { return p.nx * p.ny * p.nz }

// Flat returns the flat index of in-range cell (i, j, k).
func (p PeriodicCellIndex) Flat(i, j, k int) int {
	return (i*p.ny+j)*p.nz + k
}

// Resolve folds cell (i, j, k) into range and returns its flat index
// along with a reflection sign for each axis. A sign of -1 means the
// cell is a mirror image along that axis, so local coordinates along
// that axis must be transformed as x' = 1 - x.
func (p PeriodicCellIndex) Resolve(i, j, k int) (flat, rx, ry, rz int) {
	i, rx = foldCell(i, p.nx)
	j, ry = foldCell(j, p.ny)
	k, rz = foldCell(k, p.nz)
	return p.Flat(i, j, k), rx, ry, rz
}

// foldCell folds cell coordinate c into [0, m).
func foldCell(c, m int) (int, int) {
	if c >= 0 && c < m {
		return c, 1
	}
	period := 2 * m
	c %= period
	if c < 0 {
		c += period
	}
	if c >= m {
		return period - 1 - c, -1
	}
	return c, 1
}

// foldCoord folds continuous coordinate x into [0, m], where m is the
// number of cells along the axis.
func foldCoord(x float64, m int) float64 {
	fm := float64(m)
	if x >= 0 && x <= fm {
		return x
	}
	period := 2 * fm
	x = math.Mod(x, period)
	if x < 0 {
		x += period
	}
	if x > fm {
		return period - x
	}
	return x
}
