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
	"bytes"
	"math"
	"reflect"
	"testing"
)

func TestSaveLoad(t *testing.T) {
	buf := new(bytes.Buffer)
	r := fakeResult()
	if err := Save(buf, r); err != nil {
		t.Fatal(err)
	}
	r2, err := Load(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(r, r2) {
		t.Errorf("loaded result differs from saved result:\n%+v\n%+v", r2, r)
	}
}

func TestSaveLoadInfinite(t *testing.T) {
	buf := new(bytes.Buffer)
	r := fakeResult()
	r.MeanInterceptLength = math.Inf(1)
	if err := Save(buf, r); err != nil {
		t.Fatal(err)
	}
	r2, err := Load(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(r2.MeanInterceptLength, 1) || !r2.Valid() {
		t.Errorf("mean intercept length: have %g, want +Inf", r2.MeanInterceptLength)
	}
}

func TestLoadError(t *testing.T) {
	if _, err := Load(bytes.NewBufferString("not a result")); err == nil {
		t.Error("loading garbage should cause an error")
	}
}
