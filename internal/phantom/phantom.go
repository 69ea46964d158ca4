// Package phantom generates synthetic test volumes for exercising the
// reconstruction pipeline without real scanner data.
package phantom

import (
	"tomorecon/pkg/volume"
)

// ellipsoid is one additive component of the phantom, with center and
// semi-axes in normalized [-1, 1] coordinates.
type ellipsoid struct {
	cx, cy, cz float64
	ax, ay, az float64
	intensity  float64
}

// The layout loosely follows the classic head phantom: a bright outer
// shell, a darker interior, and a few small inserts of varying contrast.
var ellipsoids = []ellipsoid{
	{0, 0, 0, 0.85, 0.90, 0.80, 1.0},
	{0, 0, 0, 0.75, 0.80, 0.70, -0.6},
	{0.30, 0.25, 0, 0.18, 0.20, 0.25, 0.4},
	{-0.30, 0.25, 0, 0.18, 0.20, 0.25, 0.4},
	{0, -0.35, 0.15, 0.12, 0.10, 0.12, 0.7},
	{0, 0.05, -0.25, 0.05, 0.05, 0.08, 0.9},
}

// NestedEllipsoids builds a phantom of the given dimensions. Voxel
// intensities are the sum of the intensities of every ellipsoid that
// contains the voxel, so overlapping components form nested structures.
func NestedEllipsoids(nx, ny, nz int) *volume.Volume {
	v := volume.New(nx, ny, nz)
	for z := 0; z < nz; z++ {
		pz := normalized(z, nz)
		for y := 0; y < ny; y++ {
			py := normalized(y, ny)
			for x := 0; x < nx; x++ {
				px := normalized(x, nx)

				var val float64
				for _, e := range ellipsoids {
					if e.contains(px, py, pz) {
						val += e.intensity
					}
				}
				if val != 0 {
					v.Set(x, y, z, val)
				}
			}
		}
	}
	return v
}

// normalized maps a voxel index to the center of its cell in [-1, 1].
func normalized(i, n int) float64 {
	return (2*float64(i)+1)/float64(n) - 1
}

func (e ellipsoid) contains(x, y, z float64) bool {
	dx := (x - e.cx) / e.ax
	dy := (y - e.cy) / e.ay
	dz := (z - e.cz) / e.az
	return dx*dx+dy*dy+dz*dz <= 1
}
