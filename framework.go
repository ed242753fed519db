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
	"io/ioutil"

	"github.com/sirupsen/logrus"
)

// Simulation holds the state of one phase of a random walk simulation.
type Simulation struct {
	// Walkers holds the particles in the simulation.
	Walkers []*Walker

	// NumThreads is the number of goroutines used to advance walkers.
	NumThreads int

	// TotalTime is the physical time [s] each walker will be advanced
	// by the end of the simulation, and NumIntervals is the number of
	// equal intervals it is divided into.
	TotalTime    float64
	NumIntervals int

	// Interval is the number of intervals that have been completed.
	Interval int

	// MSD holds the mean squared displacement [m²] along each axis at
	// the end of each completed interval, and Time holds the mean
	// elapsed time [s] at the same points.
	MSD  [3][]float64
	Time []float64

	// WalkerCount holds the number of non-skipped walkers at the end of
	// each completed interval.
	WalkerCount []int

	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true. Therefore, the simulation will not end until
	// one of the RunFuncs sets "Done" to true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are functions to be called in the given order
	// after the simulation has completed.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool

	// Logger receives narration of the simulation's progress.
	// If it is nil, nothing is logged.
	Logger logrus.FieldLogger

	env *walkEnv
}

// DomainManipulator is a class of functions that operate on the entire
// simulation.
type DomainManipulator func(s *Simulation) error

// WalkerManipulator is a class of functions that operate on a single
// walker.
type WalkerManipulator func(w *Walker, s *Simulation)

// Init initializes the simulation by running s.InitFuncs.
func (s *Simulation) Init() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running s.RunFuncs until s.Done is true.
func (s *Simulation) Run() error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running s.CleanupFuncs.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// log returns the simulation logger, or one that discards everything.
func (s *Simulation) log() logrus.FieldLogger {
	if s.Logger == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		s.Logger = l
	}
	return s.Logger
}

// intervalTarget returns the elapsed time [s] walkers should reach by
// the end of the current interval.
func (s *Simulation) intervalTarget() float64 {
	return s.TotalTime * float64(s.Interval+1) / float64(s.NumIntervals)
}
