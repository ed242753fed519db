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
	"context"
	"fmt"
	"io/ioutil"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
)

const (
	// NumIntervals is the number of equal intervals the production
	// walk is divided into.
	NumIntervals = 100

	// fitStart is the index of the first recorded interval used to fit
	// the diffusion coefficient. Earlier points are transient.
	fitStart = 9

	// MaxParticles is the largest number of walkers allowed.
	MaxParticles = 100000000

	// MaxThreads is the largest allowed number of threads. Values
	// outside of (0, MaxThreads] are replaced by the number of CPUs.
	MaxThreads = 1000

	// calibrationWalkers is the number of walkers used to estimate the
	// mean intercept length.
	calibrationWalkers = 5000

	// calibrationFreePath is the mean free path [voxels] used during
	// calibration. It is large enough that free flights end at a
	// surface rather than in a bulk collision.
	calibrationFreePath = 1e8

	// calibrationLengthFactor multiplies the sum of the field
	// dimensions to give the calibration walk length [voxels].
	calibrationLengthFactor = 10
)

// Result holds the outcome of a tortuosity calculation. All vectors
// are ordered (x, y, z).
type Result struct {
	// DiffusionCoefficient [m²/s] is estimated from the growth of the
	// mean squared displacement between the 10th and last intervals.
	DiffusionCoefficient [3]float64

	// Diffusivity is the effective diffusivity relative to free
	// diffusion in the same gas [-].
	Diffusivity [3]float64

	// Tortuosity is Porosity / Diffusivity [-].
	Tortuosity [3]float64

	// MeanInterceptLength is the mean straight-line distance between
	// surface collisions [voxels]. It is +Inf if no surface
	// collisions occurred during calibration.
	MeanInterceptLength float64

	// Porosity is the pore volume fraction [-].
	Porosity float64

	// VoxelLength is the voxel edge length of the field [m].
	VoxelLength float64

	// BosanquetDiffusionCoefficient is the diffusion coefficient
	// combining the bulk and Knudsen regimes [m²/s].
	BosanquetDiffusionCoefficient float64

	// WalkerCount is the number of production walkers that contributed
	// to the statistics, and SkippedWalkers is the number excluded
	// because of numerical problems.
	WalkerCount, SkippedWalkers int

	// MSD holds the mean squared displacement [m²] along each axis at
	// the end of each interval, and Time holds the corresponding mean
	// elapsed time [s].
	MSD  [3][]float64
	Time []float64

	// FitDiffusionCoefficient is the diffusion coefficient [m²/s] from
	// a least-squares fit of MSD against time over the same points used
	// for DiffusionCoefficient, and FitR2 is the coefficient of
	// determination of each fit.
	FitDiffusionCoefficient [3]float64
	FitR2                   [3]float64

	// SurfaceCollisionsMean and SurfaceCollisionsStd are the mean and
	// standard deviation of the number of surface collisions per
	// production walker.
	SurfaceCollisionsMean, SurfaceCollisionsStd float64
}

// SentinelResult returns the result reported when a calculation cannot
// be carried out.
func SentinelResult() *Result {
	return &Result{
		DiffusionCoefficient: [3]float64{-1, -1, -1},
		Diffusivity:          [3]float64{-1, -1, -1},
		Tortuosity:           [3]float64{-1, -1, -1},
		MeanInterceptLength:  -1,
	}
}

// Valid returns whether r holds the result of a completed calculation
// rather than the sentinel.
func (r *Result) Valid() bool {
	return r.MeanInterceptLength != -1
}

// Option configures optional behavior of ComputeTortuosity.
type Option func(*options)

type options struct {
	logger logrus.FieldLogger
	status chan *SimulationStatus
	store  *SurfaceCacheStore
}

// WithLogger directs narration of the calculation to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithStatus sends progress updates to c. Updates are dropped rather
// than blocking the calculation.
func WithStatus(c chan *SimulationStatus) Option {
	return func(o *options) { o.status = c }
}

// WithSurfaceCacheStore retrieves the surface cache from store instead
// of building it directly.
func WithSurfaceCacheStore(store *SurfaceCacheStore) Option {
	return func(o *options) { o.store = store }
}

// Validate returns an error describing why the given parameters cannot
// be used for a tortuosity calculation, or nil if they can.
func Validate(field GrayscaleField, cutoff Cutoff, numParticles int, meanFreePath, meanVelocity float64, randomSeed int64, totalWalkLength float64) error {
	if err := cutoff.Check(); err != nil {
		return err
	}
	if field.X() < 2 || field.Y() < 2 || field.Z() < 2 {
		return fmt.Errorf("porewalk: field dimensions %dx%dx%d must be at least 2 on every axis",
			field.X(), field.Y(), field.Z())
	}
	if !(field.VoxelLength() > 0) {
		return fmt.Errorf("porewalk: voxel length %g must be positive", field.VoxelLength())
	}
	if numParticles <= 0 || numParticles > MaxParticles {
		return fmt.Errorf("porewalk: number of particles %d is outside of (0, %d]", numParticles, MaxParticles)
	}
	if !(meanFreePath > 0) {
		return fmt.Errorf("porewalk: mean free path %g must be positive", meanFreePath)
	}
	if !(meanVelocity > 0) {
		return fmt.Errorf("porewalk: mean velocity %g must be positive", meanVelocity)
	}
	if !(totalWalkLength > 0) {
		return fmt.Errorf("porewalk: total walk length %g must be positive", totalWalkLength)
	}
	if randomSeed < 0 || randomSeed > math.MaxInt32 {
		return fmt.Errorf("porewalk: random seed %d is outside of [0, %d]", randomSeed, math.MaxInt32)
	}
	return nil
}

// ComputeTortuosity estimates the diffusion coefficient, relative
// diffusivity, and tortuosity of the pore phase of field by simulating
// numParticles random walkers. meanFreePath and totalWalkLength are in
// voxels and meanVelocity is in m/s. The calculation first calibrates
// the mean intercept length of the pore space, then walks the particles
// through NumIntervals intervals, recording their mean squared
// displacement. Invalid parameters, a field with no pore space, or a
// failure to place walkers result in SentinelResult.
func ComputeTortuosity(field GrayscaleField, cutoff Cutoff, numParticles int, meanFreePath, meanVelocity float64, randomSeed int64, totalWalkLength float64, numThreads int, opts ...Option) *Result {
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		l := logrus.New()
		l.Out = ioutil.Discard
		o.logger = l
	}
	log := o.logger

	if err := Validate(field, cutoff, numParticles, meanFreePath, meanVelocity, randomSeed, totalWalkLength); err != nil {
		log.WithError(err).Warn("invalid tortuosity parameters")
		return SentinelResult()
	}
	if numThreads <= 0 || numThreads > MaxThreads {
		numThreads = runtime.NumCPU()
	}

	porosity := Porosity(field, cutoff)
	log.WithFields(logrus.Fields{"porosity": porosity}).Info("calculated porosity")
	if porosity == 0 {
		log.Warn("field contains no pore space")
		return SentinelResult()
	}

	var cache *SurfaceCache
	if o.store != nil {
		var err error
		cache, err = o.store.Get(context.Background(), field, cutoff)
		if err != nil {
			log.WithError(err).Warn("retrieving surface cache")
			return SentinelResult()
		}
	} else {
		cache = BuildSurfaceCache(field, cutoff, numThreads)
	}
	log.WithFields(logrus.Fields{"triangles": cache.NumTriangles()}).Info("built surface cache")

	env := &walkEnv{
		cache:        cache,
		sampler:      NewTrilinearSampler(field),
		cutoff:       cutoff,
		meanFreePath: meanFreePath,
		velocity:     meanVelocity,
		voxelLength:  field.VoxelLength(),
	}

	mil, collisions, err := calibrate(env, randomSeed, numThreads, log)
	if err != nil {
		log.WithError(err).Warn("calibration failed")
		return SentinelResult()
	}

	prod := &Simulation{
		NumThreads:   numThreads,
		TotalTime:    totalWalkLength * env.secondsPerVoxel(),
		NumIntervals: NumIntervals,
		Logger:       log.WithFields(logrus.Fields{"phase": "production"}),
		env:          env,
		InitFuncs: []DomainManipulator{
			PlaceWalkers(numParticles, randomSeed, productionPhase),
		},
		RunFuncs: []DomainManipulator{
			Calculations(Advance()),
			Snapshot(),
			Log(o.status),
			IntervalCheck(),
		},
	}
	if err := prod.Init(); err != nil {
		log.WithError(err).Warn("production initialization failed")
		return SentinelResult()
	}
	if err := prod.Run(); err != nil {
		log.WithError(err).Warn("production failed")
		return SentinelResult()
	}

	r := reduce(prod, porosity, meanFreePath, mil, collisions)
	if r.Valid() {
		log.WithFields(logrus.Fields{
			"tortuosity":  r.Tortuosity,
			"diffusivity": r.Diffusivity,
			"walkers":     r.WalkerCount,
			"skipped":     r.SkippedWalkers,
		}).Info("calculated tortuosity")
	}
	return r
}

// calibrate estimates the mean intercept length [voxels] by walking
// a fixed population with an oversized free path, so that nearly every
// flight ends at the pore surface. It also returns the total number of
// surface collisions.
func calibrate(env *walkEnv, seed int64, numThreads int, log logrus.FieldLogger) (float64, int, error) {
	calEnv := *env
	calEnv.meanFreePath = calibrationFreePath
	length := float64(calibrationLengthFactor * (env.cache.nx + env.cache.ny + env.cache.nz + 3))

	cal := &Simulation{
		NumThreads:   numThreads,
		TotalTime:    length * env.secondsPerVoxel(),
		NumIntervals: 1,
		Logger:       log.WithFields(logrus.Fields{"phase": "calibration"}),
		env:          &calEnv,
		InitFuncs: []DomainManipulator{
			PlaceWalkers(calibrationWalkers, seed, calibrationPhase),
		},
		RunFuncs: []DomainManipulator{
			Calculations(Advance()),
			IntervalCheck(),
		},
	}
	if err := cal.Init(); err != nil {
		return 0, 0, err
	}
	if err := cal.Run(); err != nil {
		return 0, 0, err
	}

	mil, collisions := meanInterceptLength(cal.Walkers, env.secondsPerVoxel())
	log.WithFields(logrus.Fields{
		"phase":               "calibration",
		"collisions":          collisions,
		"meanInterceptLength": mil,
	}).Info("calibrated mean intercept length")
	return mil, collisions, nil
}

// meanInterceptLength returns the total distance [voxels] traveled by
// non-skipped walkers divided by their total number of surface
// collisions, and the number of collisions. The length is +Inf if
// there were no collisions.
func meanInterceptLength(walkers []*Walker, secondsPerVoxel float64) (float64, int) {
	var dist float64
	collisions := 0
	for _, w := range walkers {
		if w.Skip {
			continue
		}
		dist += w.WalkTime / secondsPerVoxel
		collisions += w.SurfaceCollisions
	}
	if collisions == 0 {
		return math.Inf(1), 0
	}
	return dist / float64(collisions), collisions
}
