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
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrPlacement is returned when a walker cannot be placed in the pore
// phase.
var ErrPlacement = errors.New("porewalk: unable to find a valid walker starting position")

// Calculations returns a function that concurrently runs a series of
// calculations on all of the walkers. Walker i is always handled by
// goroutine i % NumThreads, and each walker has its own random stream,
// so results do not depend on scheduling.
func Calculations(calculators ...WalkerManipulator) DomainManipulator {
	return func(s *Simulation) error {
		nprocs := s.NumThreads
		if nprocs < 1 {
			nprocs = 1
		}
		var wg sync.WaitGroup
		wg.Add(nprocs)
		for pp := 0; pp < nprocs; pp++ {
			go func(pp int) {
				for ii := pp; ii < len(s.Walkers); ii += nprocs {
					w := s.Walkers[ii]
					for _, f := range calculators {
						f(w, s)
					}
				}
				wg.Done()
			}(pp)
		}
		wg.Wait()
		return nil
	}
}

// Advance returns a function that moves a walker until it reaches the
// end of the current interval.
func Advance() WalkerManipulator {
	return func(w *Walker, s *Simulation) {
		if w.Skip {
			return
		}
		w.advance(s.env, s.intervalTarget())
	}
}

// PlaceWalkers returns a function that creates n walkers with random
// streams derived from seed and places each of them at a random location
// in the pore phase. It returns ErrPlacement if any walker cannot be
// placed.
func PlaceWalkers(n int, seed int64, phase uint64) DomainManipulator {
	return func(s *Simulation) error {
		s.Walkers = make([]*Walker, n)
		for i := range s.Walkers {
			s.Walkers[i] = newWalker(i, seed, phase, s.env.velocity)
		}
		failed := make([]bool, n)
		place := func(w *Walker, s *Simulation) {
			failed[w.Index] = !w.place(s.env)
		}
		if err := Calculations(place)(s); err != nil {
			return err
		}
		for _, f := range failed {
			if f {
				return ErrPlacement
			}
		}
		s.log().WithFields(logrus.Fields{"walkers": n}).Info("placed walkers")
		return nil
	}
}

// Snapshot returns a function that records the population mean squared
// displacement and mean elapsed time over all non-skipped walkers. The
// reduction is sequential in walker order.
func Snapshot() DomainManipulator {
	return func(s *Simulation) error {
		var sum [3]float64
		var t float64
		n := 0
		for _, w := range s.Walkers {
			if w.Skip {
				continue
			}
			sd := w.squaredDisplacement()
			for a := 0; a < 3; a++ {
				sum[a] += sd[a]
			}
			t += w.WalkTime
			n++
		}
		vl2 := s.env.voxelLength * s.env.voxelLength
		for a := 0; a < 3; a++ {
			var msd float64
			if n > 0 {
				msd = sum[a] / float64(n) * vl2
			}
			s.MSD[a] = append(s.MSD[a], msd)
		}
		var mt float64
		if n > 0 {
			mt = t / float64(n)
		}
		s.Time = append(s.Time, mt)
		s.WalkerCount = append(s.WalkerCount, n)
		return nil
	}
}

// IntervalCheck returns a function that marks the end of an interval
// and sets s.Done once all intervals are complete.
func IntervalCheck() DomainManipulator {
	return func(s *Simulation) error {
		s.Interval++
		if s.Interval >= s.NumIntervals {
			s.Done = true
		}
		return nil
	}
}

// SimulationStatus holds information about the progress of a simulation.
type SimulationStatus struct {
	// Interval is the number of completed intervals and NumIntervals is
	// the total number of intervals.
	Interval, NumIntervals int

	// Walltime is the time since the simulation started and
	// StepWalltime is the duration of the most recent interval.
	Walltime, StepWalltime time.Duration

	// Series names the data in Values.
	Series string

	// Values holds the most recent data for Series.
	Values []float64
}

func (s SimulationStatus) String() string {
	return fmt.Sprintf("Interval %-4d/%d  walltime=%6.3gh  Δwalltime=%4.2gs  %s=%v",
		s.Interval, s.NumIntervals, s.Walltime.Hours(), s.StepWalltime.Seconds(), s.Series, s.Values)
}

// Log returns a function that sends the most recent mean squared
// displacement (x, y, z) and mean elapsed time to c. Sends never block:
// if nobody is ready to receive, the status is dropped.
func Log(c chan *SimulationStatus) DomainManipulator {
	startTime := time.Now()
	stepTime := time.Now()
	return func(s *Simulation) error {
		if c == nil {
			return nil
		}
		status := &SimulationStatus{
			Interval:     s.Interval + 1,
			NumIntervals: s.NumIntervals,
			Walltime:     time.Since(startTime),
			StepWalltime: time.Since(stepTime),
			Series:       "msd",
		}
		if n := len(s.Time); n > 0 {
			status.Values = []float64{s.MSD[0][n-1], s.MSD[1][n-1], s.MSD[2][n-1], s.Time[n-1]}
		}
		stepTime = time.Now()
		select {
		case c <- status:
		default:
		}
		return nil
	}
}
