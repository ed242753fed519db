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

func TestResolveInRange(t *testing.T) {
	p := NewPeriodicCellIndex(4, 5, 6)
	seen := make(map[int]bool)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 5; k++ {
				flat, rx, ry, rz := p.Resolve(i, j, k)
				if rx != 1 || ry != 1 || rz != 1 {
					t.Errorf("(%d,%d,%d): in-range cell should not be reflected", i, j, k)
				}
				if flat != p.Flat(i, j, k) {
					t.Errorf("(%d,%d,%d): flat index %d != %d", i, j, k, flat, p.Flat(i, j, k))
				}
				seen[flat] = true
			}
		}
	}
	if len(seen) != p.Len() {
		t.Errorf("visited %d cells, want %d", len(seen), p.Len())
	}
}

func TestResolveMirror(t *testing.T) {
	p := NewPeriodicCellIndex(4, 5, 6)
	for i := 0; i < 3; i++ {
		for j := -10; j < 10; j++ {
			for k := -10; k < 10; k++ {
				f1, rx1, ry1, rz1 := p.Resolve(i, j, k)
				f2, rx2, ry2, rz2 := p.Resolve(-i-1, j, k)
				if f1 != f2 {
					t.Errorf("(%d,%d,%d): flat %d != mirrored flat %d", i, j, k, f1, f2)
				}
				if rx1 != -rx2 || ry1 != ry2 || rz1 != rz2 {
					t.Errorf("(%d,%d,%d): signs (%d,%d,%d) vs mirrored (%d,%d,%d)",
						i, j, k, rx1, ry1, rz1, rx2, ry2, rz2)
				}
			}
		}
	}
}

func TestFoldCell(t *testing.T) {
	const m = 4
	for _, test := range []struct{ c, want, sign int }{
		{0, 0, 1},
		{3, 3, 1},
		{4, 3, -1},
		{7, 0, -1},
		{8, 0, 1},
		{-1, 0, -1},
		{-4, 3, -1},
		{-5, 3, 1},
		{-9, 0, -1},
		{11, 3, 1},
	} {
		c, sign := foldCell(test.c, m)
		if c != test.want || sign != test.sign {
			t.Errorf("foldCell(%d): have (%d, %d), want (%d, %d)", test.c, c, sign, test.want, test.sign)
		}
	}
}

func TestFoldCoord(t *testing.T) {
	const m = 4
	for _, test := range []struct{ x, want float64 }{
		{0, 0},
		{2.5, 2.5},
		{4, 4},
		{4.5, 3.5},
		{-0.5, 0.5},
		{8.25, 0.25},
		{-7.5, 0.5},
		{12.5, 3.5},
	} {
		if have := foldCoord(test.x, m); absDifferent(have, test.want) {
			t.Errorf("foldCoord(%g): have %g, want %g", test.x, have, test.want)
		}
	}
}
