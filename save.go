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
	"encoding/gob"
	"fmt"
	"io"
)

// Save writes r to w in gob format.
func Save(w io.Writer, r *Result) error {
	e := gob.NewEncoder(w)
	if err := e.Encode(r); err != nil {
		return fmt.Errorf("porewalk.Save: %v", err)
	}
	return nil
}

// Load reads a Result that was previously written by Save.
func Load(r io.Reader) (*Result, error) {
	dec := gob.NewDecoder(r)
	res := new(Result)
	if err := dec.Decode(res); err != nil {
		return nil, fmt.Errorf("porewalk.Load: %v", err)
	}
	return res, nil
}
