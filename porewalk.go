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

// Package porewalk calculates the tortuosity and effective diffusivity
// of the pore space in three-dimensional grayscale images using a
// Monte-Carlo random walk. Walkers fly in straight lines between bulk
// collisions and reflect diffusely from a triangulated isosurface of the
// image. The diffusion coefficient follows from the growth of their mean
// squared displacement, and comparing it to the Bosanquet diffusion
// coefficient of an unobstructed medium gives the diffusivity.
package porewalk

// Version gives the version number of this software.
const Version = "0.1.0"
