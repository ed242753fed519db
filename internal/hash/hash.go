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

// Package hash computes content keys for caching.
package hash

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash"
	"hash/fnv"
	"math"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()
	write(h, object)
	return sum(h)
}

// Grid returns a hash key for the values of a three-dimensional grid
// with nx×ny×nz points, where get returns the value at a point,
// combined with any additional objects.
func Grid(nx, ny, nz int, get func(i, j, k int) float64, extra ...interface{}) string {
	h := fnv.New128a()
	var b [8]byte
	for _, n := range []int{nx, ny, nz} {
		binary.LittleEndian.PutUint64(b[:], uint64(n))
		h.Write(b[:])
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				binary.LittleEndian.PutUint64(b[:], math.Float64bits(get(i, j, k)))
				h.Write(b[:])
			}
		}
	}
	for _, e := range extra {
		write(h, e)
	}
	return sum(h)
}

// write adds object to h. gob is used where possible; otherwise
// (e.g., if there are NaN values) spew is used instead.
func write(h hash.Hash, object interface{}) {
	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		return
	}
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
}

func sum(h hash.Hash) string {
	b := h.Sum([]byte{})
	return fmt.Sprintf("%x", b[0:h.Size()])
}
