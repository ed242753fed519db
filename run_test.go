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
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCalculations(t *testing.T) {
	s := &Simulation{NumThreads: 3}
	for i := 0; i < 10; i++ {
		s.Walkers = append(s.Walkers, &Walker{Index: i})
	}
	err := Calculations(func(w *Walker, s *Simulation) {
		w.BulkCollisions++
	}, func(w *Walker, s *Simulation) {
		w.SurfaceCollisions = 2 * w.BulkCollisions
	})(s)
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range s.Walkers {
		if w.BulkCollisions != 1 || w.SurfaceCollisions != 2 {
			t.Errorf("walker %d: %d bulk, %d surface", w.Index, w.BulkCollisions, w.SurfaceCollisions)
		}
	}
}

func TestSimulationRun(t *testing.T) {
	var order []string
	record := func(name string) DomainManipulator {
		return func(s *Simulation) error {
			order = append(order, name)
			return nil
		}
	}
	s := &Simulation{
		NumIntervals: 3,
		InitFuncs:    []DomainManipulator{record("init")},
		RunFuncs:     []DomainManipulator{record("run"), IntervalCheck()},
		CleanupFuncs: []DomainManipulator{record("cleanup")},
	}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if err := s.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if have, want := strings.Join(order, ","), "init,run,run,run,cleanup"; have != want {
		t.Errorf("have %s, want %s", have, want)
	}
	if s.Interval != 3 || !s.Done {
		t.Errorf("interval %d, done %v", s.Interval, s.Done)
	}
}

func TestSimulationRunError(t *testing.T) {
	errTest := errors.New("test")
	n := 0
	s := &Simulation{
		NumIntervals: 3,
		RunFuncs: []DomainManipulator{func(s *Simulation) error {
			n++
			return errTest
		}, IntervalCheck()},
	}
	if err := s.Run(); err != errTest {
		t.Errorf("have error %v, want %v", err, errTest)
	}
	if n != 1 {
		t.Errorf("run function called %d times, want 1", n)
	}
}

func TestIntervalTarget(t *testing.T) {
	s := &Simulation{TotalTime: 10, NumIntervals: 4}
	if have := s.intervalTarget(); absDifferent(have, 2.5) {
		t.Errorf("have %g, want 2.5", have)
	}
	s.Interval = 3
	if have := s.intervalTarget(); absDifferent(have, 10) {
		t.Errorf("have %g, want 10", have)
	}
}

func TestSnapshot(t *testing.T) {
	s := &Simulation{env: &walkEnv{voxelLength: 2}}
	s.Walkers = []*Walker{
		{Pos: r3.Vec{X: 1, Y: 2, Z: 3}, WalkTime: 1},
		{Pos: r3.Vec{X: -1, Y: 0, Z: 1}, Start: r3.Vec{X: 0, Y: 0, Z: 0}, WalkTime: 3},
		{Pos: r3.Vec{X: 100}, WalkTime: 100, Skip: true},
	}
	if err := Snapshot()(s); err != nil {
		t.Fatal(err)
	}
	// Mean squared displacements are (1, 2, 5) voxels², times 4 m²/voxel².
	want := [3]float64{4, 8, 20}
	for a := 0; a < 3; a++ {
		if len(s.MSD[a]) != 1 || absDifferent(s.MSD[a][0], want[a]) {
			t.Errorf("axis %d: have %v, want %g", a, s.MSD[a], want[a])
		}
	}
	if len(s.Time) != 1 || absDifferent(s.Time[0], 2) {
		t.Errorf("time: have %v, want 2", s.Time)
	}
	if len(s.WalkerCount) != 1 || s.WalkerCount[0] != 2 {
		t.Errorf("walker count: have %v, want 2", s.WalkerCount)
	}
}

func TestPlaceWalkers(t *testing.T) {
	e := testEnv(wallField(), wallCutoff, 1)
	s := &Simulation{NumThreads: 4, env: e}
	if err := PlaceWalkers(50, 1, productionPhase)(s); err != nil {
		t.Fatal(err)
	}
	if len(s.Walkers) != 50 {
		t.Fatalf("have %d walkers, want 50", len(s.Walkers))
	}
	for i, w := range s.Walkers {
		if w.Index != i || w.Velocity != e.velocity {
			t.Errorf("walker %d: index %d, velocity %g", i, w.Index, w.Velocity)
		}
	}

	s = &Simulation{NumThreads: 2, env: testEnv(NewField(4, 4, 4, 1), wallCutoff, 1)}
	if err := PlaceWalkers(3, 1, productionPhase)(s); err != ErrPlacement {
		t.Errorf("have error %v, want %v", err, ErrPlacement)
	}
}

func TestLog(t *testing.T) {
	s := &Simulation{NumIntervals: 5}
	s.MSD = [3][]float64{{1}, {2}, {3}}
	s.Time = []float64{4}

	// Sends to an unready channel are dropped.
	if err := Log(make(chan *SimulationStatus))(s); err != nil {
		t.Fatal(err)
	}
	if err := Log(nil)(s); err != nil {
		t.Fatal(err)
	}

	c := make(chan *SimulationStatus, 1)
	if err := Log(c)(s); err != nil {
		t.Fatal(err)
	}
	status := <-c
	if status.Interval != 1 || status.NumIntervals != 5 || status.Series != "msd" {
		t.Errorf("bad status %+v", status)
	}
	if len(status.Values) != 4 || status.Values[2] != 3 || status.Values[3] != 4 {
		t.Errorf("values: have %v", status.Values)
	}
	if !strings.Contains(status.String(), "msd=[1 2 3 4]") {
		t.Errorf("status string: %s", status)
	}
}
