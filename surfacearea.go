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
	"strings"

	"gonum.org/v1/gonum/floats"
)

// SurfaceAreaMethod specifies how pore surface area is estimated.
type SurfaceAreaMethod int

const (
	// VoxelMethod counts the voxel faces separating pore voxels from
	// solid voxels.
	VoxelMethod SurfaceAreaMethod = iota

	// MarchingCubesMethod sums the areas of the triangles of the
	// per-cell iso-surface.
	MarchingCubesMethod
)

func (m SurfaceAreaMethod) String() string {
	switch m {
	case VoxelMethod:
		return "voxel"
	case MarchingCubesMethod:
		return "marchingcubes"
	default:
		return fmt.Sprintf("SurfaceAreaMethod(%d)", int(m))
	}
}

// ParseSurfaceAreaMethod returns the method with the given name.
func ParseSurfaceAreaMethod(name string) (SurfaceAreaMethod, error) {
	switch strings.ToLower(name) {
	case "voxel":
		return VoxelMethod, nil
	case "marchingcubes":
		return MarchingCubesMethod, nil
	default:
		return 0, fmt.Errorf("porewalk: invalid surface area method '%s'; valid options are 'voxel' and 'marchingcubes'", name)
	}
}

// SurfaceArea returns the area [m²] of the surface of the pore phase of
// field, using the given method. nprocs is the number of goroutines used
// to build the iso-surface for MarchingCubesMethod.
func SurfaceArea(field GrayscaleField, cutoff Cutoff, method SurfaceAreaMethod, nprocs int) (float64, error) {
	if err := cutoff.Check(); err != nil {
		return 0, err
	}
	vl2 := field.VoxelLength() * field.VoxelLength()
	switch method {
	case VoxelMethod:
		return float64(exposedFaces(field, cutoff)) * vl2, nil
	case MarchingCubesMethod:
		cache := BuildSurfaceCache(field, cutoff, nprocs)
		areas := make([]float64, 0, cache.NumTriangles())
		for _, tris := range cache.Cells {
			for _, t := range tris {
				areas = append(areas, t.Area())
			}
		}
		return floats.Sum(areas) * vl2, nil
	default:
		return 0, fmt.Errorf("porewalk: invalid surface area method %v", method)
	}
}

// exposedFaces counts the faces of pore voxels that border a non-pore
// voxel. The field is mirrored at its edges, so faces on the domain
// boundary are never exposed.
func exposedFaces(field GrayscaleField, cutoff Cutoff) int {
	nx, ny, nz := field.X(), field.Y(), field.Z()
	pore := func(i, j, k int) bool {
		if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
			return true
		}
		return cutoff.Contains(field.Get(i, j, k))
	}
	n := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				if !pore(i, j, k) {
					continue
				}
				for _, d := range [6][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}} {
					if !pore(i+d[0], j+d[1], k+d[2]) {
						n++
					}
				}
			}
		}
	}
	return n
}
