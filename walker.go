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
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// minUniform is the smallest uniform draw used in a logarithm.
	minUniform = 1e-8

	// maxRepeatHits is the number of consecutive collisions with the
	// same triangle after which a walker is considered stuck.
	maxRepeatHits = 10

	// maxStalls is the number of consecutive zero-length events after
	// which a walker is considered stuck.
	maxStalls = 64

	// maxPlacementAttempts is the number of random positions tried
	// when placing a walker before giving up.
	maxPlacementAttempts = 100000
)

// Walker is a single particle performing a random walk through the
// pore space. Positions are in unbounded voxel coordinates: they are not
// folded back into the field, so displacement from Start is the true
// distance traveled through the mirror-tiled domain.
type Walker struct {
	Index int

	// Pos is the current position and Start is the position where the
	// walker was placed.
	Pos, Start r3.Vec

	// Cell is the unbounded index of the cell containing Pos.
	Cell [3]int

	// Dir is the unit direction of travel.
	Dir r3.Vec

	// Velocity is the walker speed [m/s].
	Velocity float64

	// DeltaR is the length of the current free flight and DeltaRw is
	// the part of it already traveled [voxels].
	DeltaR, DeltaRw float64

	// WalkTime is the elapsed physical time [s].
	WalkTime float64

	// SurfaceCollisions and BulkCollisions count collisions with the
	// pore surface and with other particles.
	SurfaceCollisions, BulkCollisions int

	// Skip marks the walker as numerically invalid. Skipped walkers
	// are not advanced and are excluded from all statistics.
	Skip bool

	lastCell   [3]int
	lastTri    int
	repeatHits int

	rng *rand.Rand
}

// walkEnv holds the shared, read-only inputs to walker physics.
type walkEnv struct {
	cache   *SurfaceCache
	sampler *TrilinearSampler
	cutoff  Cutoff

	// meanFreePath is in voxels.
	meanFreePath float64

	// velocity is in m/s and voxelLength is in m.
	velocity, voxelLength float64
}

// secondsPerVoxel returns the time needed to travel one voxel length.
func (e *walkEnv) secondsPerVoxel() float64 {
	return e.voxelLength / e.velocity
}

// phase salts keep the random streams of the calibration and
// production phases independent.
const (
	calibrationPhase uint64 = 0x63616c6962726174
	productionPhase  uint64 = 0x70726f6475637469
)

// walkerSeed derives the random seed for walker index from the user
// seed and the simulation phase.
func walkerSeed(seed int64, index int, phase uint64) uint64 {
	x := uint64(seed)
	x = splitmix(x ^ phase)
	x = splitmix(x ^ uint64(index))
	return x
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// newWalker creates a walker with its own random stream.
func newWalker(index int, seed int64, phase uint64, velocity float64) *Walker {
	return &Walker{
		Index:    index,
		Velocity: velocity,
		lastTri:  -1,
		rng:      rand.New(rand.NewSource(walkerSeed(seed, index, phase))),
	}
}

// uniform returns a uniform random number in (0, 1].
func (w *Walker) uniform() float64 {
	return 1 - w.rng.Float64()
}

// logUniform returns -ln(u) for a uniform draw u floored at minUniform.
func (w *Walker) logUniform() float64 {
	return -math.Log(math.Max(w.uniform(), minUniform))
}

// newFreePath samples the length of the next free flight.
func (w *Walker) newFreePath(meanFreePath float64) {
	w.DeltaR = w.logUniform() * meanFreePath
	w.DeltaRw = 0
}

// randomDirection sets an isotropically distributed direction.
func (w *Walker) randomDirection() {
	z := 2*w.rng.Float64() - 1
	phi := 2 * math.Pi * w.rng.Float64()
	r := math.Sqrt(1 - z*z)
	w.Dir = r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
}

// place puts the walker at a random position strictly inside the pore
// phase that is not in a cell containing any surface. It returns false if no such
// position was found.
func (w *Walker) place(e *walkEnv) bool {
	fx := float64(e.cache.nx)
	fy := float64(e.cache.ny)
	fz := float64(e.cache.nz)
	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		p := r3.Vec{X: w.rng.Float64() * fx, Y: w.rng.Float64() * fy, Z: w.rng.Float64() * fz}
		i, j, k := int(p.X), int(p.Y), int(p.Z)
		if e.cache.HasSurface(i, j, k) {
			continue
		}
		if !e.cutoff.interior(e.sampler.Evaluate(p.X, p.Y, p.Z)) {
			continue
		}
		w.Pos, w.Start = p, p
		w.Cell = [3]int{i, j, k}
		w.randomDirection()
		w.newFreePath(e.meanFreePath)
		return true
	}
	return false
}

// faceDistance returns the distance along Dir to the nearest face of
// the current cell and the axis perpendicular to that face.
func (w *Walker) faceDistance() (float64, int) {
	pos := [3]float64{w.Pos.X, w.Pos.Y, w.Pos.Z}
	dir := [3]float64{w.Dir.X, w.Dir.Y, w.Dir.Z}
	best, axis := math.Inf(1), -1
	for a := 0; a < 3; a++ {
		var s float64
		switch {
		case dir[a] > 0:
			s = (float64(w.Cell[a]+1) - pos[a]) / dir[a]
		case dir[a] < 0:
			s = (float64(w.Cell[a]) - pos[a]) / dir[a]
		default:
			continue
		}
		if s < 0 {
			s = 0
		}
		if s < best {
			best, axis = s, a
		}
	}
	return best, axis
}

// nearestHit returns the closest triangle intersection in the current
// cell that lies within limit of the walker. Intersections closer than
// minHitDistance are ignored so that the walker does not collide again
// with the surface it is leaving.
func (w *Walker) nearestHit(cache *SurfaceCache, limit float64) (hit bool, dist float64, point r3.Vec, tri Triangle, triIndex int) {
	flat, rx, ry, rz := cache.Resolve(w.Cell[0], w.Cell[1], w.Cell[2])
	tris := cache.Cells[flat]
	if len(tris) == 0 {
		return false, 0, r3.Vec{}, Triangle{}, -1
	}
	origin := r3.Vec{X: float64(w.Cell[0]), Y: float64(w.Cell[1]), Z: float64(w.Cell[2])}
	start := r3.Sub(w.Pos, origin)
	end := r3.Add(start, w.Dir)
	dist = math.Inf(1)
	triIndex = -1
	for n, t := range tris {
		t = t.reflect(rx, ry, rz)
		x, ok := Intersect(start, end, t)
		if !ok {
			continue
		}
		if math.Abs(x.T) > maxHitParameter {
			w.Skip = true
			return false, 0, r3.Vec{}, Triangle{}, -1
		}
		if x.T <= minHitDistance || x.T > limit {
			continue
		}
		if x.T < dist {
			dist, point, tri, triIndex = x.T, x.Point, t, n
		}
	}
	if triIndex < 0 {
		return false, 0, r3.Vec{}, Triangle{}, -1
	}
	return true, dist, r3.Add(point, origin), tri, triIndex
}

// reflect sets a new direction drawn from a diffuse (cosine-weighted)
// distribution about the normal of tri, on the side opposite the
// incoming direction.
func (w *Walker) reflect(tri Triangle) {
	n := r3.Unit(tri.Normal())
	if r3.Dot(n, w.Dir) > 0 {
		n = r3.Scale(-1, n)
	}
	vn := math.Sqrt(w.logUniform())
	vt := math.Sqrt(w.logUniform())
	phi := 2 * math.Pi * w.rng.Float64()

	t1 := r3.Sub(w.Dir, r3.Scale(r3.Dot(w.Dir, n), n))
	for r3.Norm(t1) < 1e-9 {
		r := r3.Vec{X: 2*w.rng.Float64() - 1, Y: 2*w.rng.Float64() - 1, Z: 2*w.rng.Float64() - 1}
		t1 = r3.Sub(r, r3.Scale(r3.Dot(r, n), n))
	}
	t1 = r3.Unit(t1)
	t2 := r3.Cross(n, t1)

	dir := r3.Add(r3.Scale(vn, n),
		r3.Scale(vt, r3.Add(r3.Scale(math.Cos(phi), t1), r3.Scale(math.Sin(phi), t2))))
	if r3.Norm(dir) == 0 {
		w.Dir = n
		return
	}
	w.Dir = r3.Unit(dir)
}

// move advances the walker s voxels along its direction.
func (w *Walker) move(s float64, e *walkEnv) {
	w.Pos = r3.Add(w.Pos, r3.Scale(s, w.Dir))
	w.DeltaRw += s
	w.WalkTime += s * e.secondsPerVoxel()
}

// advance moves the walker until its elapsed time reaches target [s].
func (w *Walker) advance(e *walkEnv, target float64) {
	stalls := 0
	for !w.Skip && w.WalkTime < target {
		budget := (target - w.WalkTime) / e.secondsPerVoxel()
		free := w.DeltaR - w.DeltaRw
		if free < 0 {
			free = 0
		}
		sFace, axis := w.faceDistance()
		limit := math.Min(sFace, free)

		hit, sHit, point, tri, triIndex := w.nearestHit(e.cache, limit)
		if w.Skip {
			return
		}

		var s float64
		switch {
		case hit:
			s = sHit
		case free <= sFace:
			s = free
		default:
			s = sFace
		}

		if s >= budget {
			w.Pos = r3.Add(w.Pos, r3.Scale(budget, w.Dir))
			w.DeltaRw += budget
			w.WalkTime = target
			w.checkFinite()
			return
		}

		switch {
		case hit:
			w.Pos = point
			w.DeltaRw += s
			w.WalkTime += s * e.secondsPerVoxel()
			w.surfaceCollision(tri, triIndex)
			w.newFreePath(e.meanFreePath)
		case free <= sFace:
			w.move(s, e)
			w.BulkCollisions++
			w.randomDirection()
			w.newFreePath(e.meanFreePath)
		default:
			w.move(s, e)
			w.crossFace(axis)
		}
		w.checkFinite()

		if s == 0 {
			stalls++
			if stalls > maxStalls {
				w.Skip = true
			}
		} else {
			stalls = 0
		}
	}
}

// surfaceCollision records a collision with triangle triIndex in the
// current cell and reflects the walker off of it.
func (w *Walker) surfaceCollision(tri Triangle, triIndex int) {
	if w.Cell == w.lastCell && triIndex == w.lastTri {
		w.repeatHits++
		if w.repeatHits >= maxRepeatHits {
			w.Skip = true
			return
		}
	} else {
		w.repeatHits = 0
	}
	w.lastCell, w.lastTri = w.Cell, triIndex
	w.SurfaceCollisions++
	w.reflect(tri)
}

// crossFace moves the walker into the neighboring cell along axis,
// snapping its position onto the shared face.
func (w *Walker) crossFace(axis int) {
	var face float64
	if w.dirComponent(axis) > 0 {
		w.Cell[axis]++
		face = float64(w.Cell[axis])
	} else {
		face = float64(w.Cell[axis])
		w.Cell[axis]--
	}
	switch axis {
	case 0:
		w.Pos.X = face
	case 1:
		w.Pos.Y = face
	case 2:
		w.Pos.Z = face
	}
}

func (w *Walker) dirComponent(axis int) float64 {
	switch axis {
	case 0:
		return w.Dir.X
	case 1:
		return w.Dir.Y
	default:
		return w.Dir.Z
	}
}

// checkFinite marks the walker as skipped if its state is not finite.
func (w *Walker) checkFinite() {
	for _, v := range []float64{w.Pos.X, w.Pos.Y, w.Pos.Z, w.Dir.X, w.Dir.Y, w.Dir.Z, w.WalkTime} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			w.Skip = true
			return
		}
	}
}

// squaredDisplacement returns the squared distance from the start
// position along each axis [voxels²].
func (w *Walker) squaredDisplacement() [3]float64 {
	d := r3.Sub(w.Pos, w.Start)
	return [3]float64{d.X * d.X, d.Y * d.Y, d.Z * d.Z}
}
