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
	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/stat"
)

// BosanquetDiffusionCoefficient combines bulk diffusion with mean free
// path lambda [m] and Knudsen diffusion with mean intercept length
// mil [m] for particles with speed v [m/s]. If there were no surface
// collisions, mil should be +Inf and the bulk coefficient is returned.
func BosanquetDiffusionCoefficient(v, lambda, mil float64, collisions int) float64 {
	if collisions == 0 {
		return v * lambda / 3
	}
	return v / 3 / (1/lambda + 1/mil)
}

// reduce turns the recorded statistics of a completed production
// simulation into a Result.
func reduce(s *Simulation, porosity, meanFreePath, mil float64, collisions int) *Result {
	n := len(s.Time)
	if n < NumIntervals {
		return SentinelResult()
	}
	walkers := s.WalkerCount[n-1]
	if walkers == 0 {
		return SentinelResult()
	}

	vl := s.env.voxelLength
	r := &Result{
		MeanInterceptLength: mil,
		Porosity:            porosity,
		VoxelLength:         vl,
		WalkerCount:         walkers,
		SkippedWalkers:      len(s.Walkers) - walkers,
		Time:                s.Time,
		MSD:                 s.MSD,
	}
	r.BosanquetDiffusionCoefficient = BosanquetDiffusionCoefficient(
		s.env.velocity, meanFreePath*vl, mil*vl, collisions)

	// The fit spans the last 90% of the walk.
	dt := 0.9 * s.Time[n-1]
	for a := 0; a < 3; a++ {
		r.DiffusionCoefficient[a] = (s.MSD[a][n-1] - s.MSD[a][fitStart]) / (2 * dt)
		r.Diffusivity[a] = r.DiffusionCoefficient[a] * porosity / r.BosanquetDiffusionCoefficient
		r.Tortuosity[a] = porosity / r.Diffusivity[a]

		slope, _, rsquared, _, _, _ := stats.LinearRegression(s.Time[fitStart:], s.MSD[a][fitStart:])
		r.FitDiffusionCoefficient[a] = slope / 2
		r.FitR2[a] = rsquared
	}

	counts := make([]float64, 0, walkers)
	for _, w := range s.Walkers {
		if !w.Skip {
			counts = append(counts, float64(w.SurfaceCollisions))
		}
	}
	r.SurfaceCollisionsMean, r.SurfaceCollisionsStd = stat.MeanStdDev(counts, nil)
	return r
}
