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
	"fmt"

	"github.com/ctessum/sparse"
)

// MaxGrayscale is the largest grayscale value a Cutoff may select.
const MaxGrayscale = 32767

// GrayscaleField is a read-only three-dimensional array of intensity
// samples with a physical voxel edge length.
type GrayscaleField interface {
	// Get returns the value at voxel (i, j, k).
	Get(i, j, k int) float64

	// X, Y, and Z return the number of voxels along each axis.
	X() int
	Y() int
	Z() int

	// VoxelLength returns the edge length of a voxel [m].
	VoxelLength() float64
}

// Field is a GrayscaleField backed by a dense array with
// shape [X, Y, Z].
type Field struct {
	Data *sparse.DenseArray

	// Length is the voxel edge length [m].
	Length float64
}

// NewField creates a new field of zeros with the given dimensions and
// voxel edge length.
func NewField(x, y, z int, voxelLength float64) *Field {
	return &Field{
		Data:   sparse.ZerosDense(x, y, z),
		Length: voxelLength,
	}
}

// Get returns the value at voxel (i, j, k).
func (f *Field) Get(i, j, k int) float64 {
	s := f.Data.Shape
	return f.Data.Elements[(i*s[1]+j)*s[2]+k]
}

// Set sets the value at voxel (i, j, k). Unlike sparse.DenseArray.Set,
// zero values are stored.
func (f *Field) Set(v float64, i, j, k int) {
	f.Data.Elements[f.Data.Index1d(i, j, k)] = v
}

// X returns the number of voxels in the x direction.
func (f *Field) X() int { return f.Data.Shape[0] }

// Y returns the number of voxels in the y direction.
func (f *Field) Y() int { return f.Data.Shape[1] }

// Z returns the number of voxels in the z direction.
func (f *Field) Z() int { return f.Data.Shape[2] }

// VoxelLength returns the voxel edge length [m].
func (f *Field) VoxelLength() float64 { return f.Length }

// Cutoff is an inclusive grayscale range defining the pore phase.
type Cutoff struct {
	Low, High int
}

// Check returns an error if the cutoff is inverted or outside of
// [0, MaxGrayscale].
func (c Cutoff) Check() error {
	if c.Low < 0 || c.High > MaxGrayscale {
		return fmt.Errorf("porewalk: cutoff [%d, %d] is outside of [0, %d]", c.Low, c.High, MaxGrayscale)
	}
	if c.Low > c.High {
		return fmt.Errorf("porewalk: cutoff low value %d is greater than high value %d", c.Low, c.High)
	}
	return nil
}

// Contains returns whether v is within the cutoff range.
func (c Cutoff) Contains(v float64) bool {
	return v >= float64(c.Low) && v <= float64(c.High)
}

// interior returns whether v is strictly inside the cutoff range.
func (c Cutoff) interior(v float64) bool {
	return v > float64(c.Low) && v < float64(c.High)
}

// Mid returns the midpoint of the cutoff range.
func (c Cutoff) Mid() float64 {
	return float64(c.Low+c.High) / 2
}

// remap reflects v around the cutoff midpoint so that the pore phase
// is the region where the remapped value is >= Low.
func (c Cutoff) remap(v float64) float64 {
	if mid := c.Mid(); v > mid {
		return 2*mid - v
	}
	return v
}

// String returns a representation of the cutoff usable as a cache key.
func (c Cutoff) String() string {
	return fmt.Sprintf("[%d,%d]", c.Low, c.High)
}
