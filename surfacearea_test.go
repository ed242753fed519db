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

import "testing"

func TestSurfaceArea(t *testing.T) {
	const vl2 = testVoxelLength * testVoxelLength
	tests := []struct {
		name   string
		field  *Field
		method SurfaceAreaMethod
		want   float64
	}{
		// Both sides of the 10×10 wall are exposed.
		{name: "wall voxel", field: wallField(), method: VoxelMethod, want: 200 * vl2},
		// Two 9×9 planes of cells.
		{name: "wall marching cubes", field: wallField(), method: MarchingCubesMethod, want: 162 * vl2},
		{name: "open voxel", field: openField(), method: VoxelMethod, want: 0},
		{name: "open marching cubes", field: openField(), method: MarchingCubesMethod, want: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			have, err := SurfaceArea(test.field, wallCutoff, test.method, 2)
			if err != nil {
				t.Fatal(err)
			}
			if test.want == 0 {
				if have != 0 {
					t.Errorf("have %g, want 0", have)
				}
				return
			}
			if different(have, test.want, 1e-10) {
				t.Errorf("have %g, want %g", have, test.want)
			}
		})
	}
}

func TestSurfaceAreaSingleVoxel(t *testing.T) {
	f := NewField(5, 5, 5, 1)
	f.Set(200, 2, 2, 2)
	a, err := SurfaceArea(f, wallCutoff, VoxelMethod, 1)
	if err != nil {
		t.Fatal(err)
	}
	if a != 6 {
		t.Errorf("have %g, want 6", a)
	}
}

func TestSurfaceAreaErrors(t *testing.T) {
	if _, err := SurfaceArea(openField(), Cutoff{Low: 5, High: 1}, VoxelMethod, 1); err == nil {
		t.Error("an invalid cutoff should cause an error")
	}
	if _, err := SurfaceArea(openField(), wallCutoff, SurfaceAreaMethod(7), 1); err == nil {
		t.Error("an invalid method should cause an error")
	}
}

func TestParseSurfaceAreaMethod(t *testing.T) {
	for _, m := range []SurfaceAreaMethod{VoxelMethod, MarchingCubesMethod} {
		have, err := ParseSurfaceAreaMethod(m.String())
		if err != nil {
			t.Fatal(err)
		}
		if have != m {
			t.Errorf("have %v, want %v", have, m)
		}
	}
	if m, err := ParseSurfaceAreaMethod("MarchingCubes"); err != nil || m != MarchingCubesMethod {
		t.Errorf("parsing should be case insensitive: %v, %v", m, err)
	}
	if _, err := ParseSurfaceAreaMethod("sphere"); err == nil {
		t.Error("an unknown method should cause an error")
	}
}
