// Package geometry describes the acquisition setup shared by the projection
// operators and the reconstruction algorithms: the voxel grid of the
// reconstructed volume, the detector grid, and the set of acquisition angles.
package geometry

import (
	"fmt"
	"math"
)

// Geometry holds the voxel and detector dimensions of a scan.
// It is consumed read-only by the projection operators and validated once
// before a reconstruction run.
type Geometry struct {
	// NVoxelX, NVoxelY, NVoxelZ are the dimensions of the reconstructed volume.
	NVoxelX int
	NVoxelY int
	NVoxelZ int

	// DetU and DetV are the detector dimensions in pixels. DetU spans the
	// rotation plane, DetV the axial direction.
	DetU int
	DetV int
}

// Validate checks that all dimensions are positive.
func (g Geometry) Validate() error {
	if g.NVoxelX <= 0 || g.NVoxelY <= 0 || g.NVoxelZ <= 0 {
		return fmt.Errorf("geometry: voxel dimensions must be positive, got %dx%dx%d",
			g.NVoxelX, g.NVoxelY, g.NVoxelZ)
	}
	if g.DetU <= 0 || g.DetV <= 0 {
		return fmt.Errorf("geometry: detector dimensions must be positive, got %dx%d",
			g.DetU, g.DetV)
	}
	return nil
}

// DetectorPixels returns the number of pixels in one projection row.
func (g Geometry) DetectorPixels() int {
	return g.DetU * g.DetV
}

// Halved returns the geometry scaled down by a factor of two in every
// dimension. Used by the multigrid initialization to pose the same problem
// on a coarser grid.
func (g Geometry) Halved() Geometry {
	return Geometry{
		NVoxelX: g.NVoxelX / 2,
		NVoxelY: g.NVoxelY / 2,
		NVoxelZ: g.NVoxelZ / 2,
		DetU:    g.DetU / 2,
		DetV:    g.DetV / 2,
	}
}

// Angle is one acquisition orientation given as rotations around the three
// spatial axes. The reference operators in pkg/projection only use Theta
// (rotation in the detector plane); Phi and Psi are carried for operators
// that support full 3-axis trajectories.
type Angle struct {
	Theta float64
	Phi   float64
	Psi   float64
}

// EquallySpaced returns n angles uniformly covering [0, 2*pi) in Theta.
func EquallySpaced(n int) []Angle {
	angles := make([]Angle, n)
	for i := range angles {
		angles[i].Theta = 2 * math.Pi * float64(i) / float64(n)
	}
	return angles
}

// AngularDistance returns the distance between two orientations on the unit
// circle of Theta, in [0, pi].
func AngularDistance(a, b Angle) float64 {
	d := math.Mod(math.Abs(a.Theta-b.Theta), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
