// Package volume provides the dense 3-D scalar field used as the
// reconstruction estimate, together with the vector operations the
// iterative algorithms perform on it.
package volume

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Volume is a dense 3-D scalar field stored in a flat slice, x-fastest
// (index = z*NX*NY + y*NX + x). All reconstruction state is carried in
// this representation.
type Volume struct {
	NX, NY, NZ int
	Data       []float64
}

// New returns a zero-filled volume with the given dimensions.
func New(nx, ny, nz int) *Volume {
	return &Volume{
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		Data: make([]float64, nx*ny*nz),
	}
}

// FromSlice wraps existing data in a Volume. The data length must match the
// dimensions.
func FromSlice(nx, ny, nz int, data []float64) (*Volume, error) {
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("volume: data length %d does not match dimensions %dx%dx%d",
			len(data), nx, ny, nz)
	}
	return &Volume{NX: nx, NY: ny, NZ: nz, Data: data}, nil
}

// Clone returns a deep copy. The iterative algorithms rely on this for
// previous-estimate bookkeeping: a clone shares no storage with its source.
func (v *Volume) Clone() *Volume {
	out := New(v.NX, v.NY, v.NZ)
	copy(out.Data, v.Data)
	return out
}

// SameShape reports whether two volumes have identical dimensions.
func (v *Volume) SameShape(o *Volume) bool {
	return v.NX == o.NX && v.NY == o.NY && v.NZ == o.NZ
}

// At returns the value at voxel (x, y, z). No bounds checking.
func (v *Volume) At(x, y, z int) float64 {
	return v.Data[z*v.NX*v.NY+y*v.NX+x]
}

// Set stores a value at voxel (x, y, z). No bounds checking.
func (v *Volume) Set(x, y, z int, val float64) {
	v.Data[z*v.NX*v.NY+y*v.NX+x] = val
}

// AddScaled performs v += s*o in place.
func (v *Volume) AddScaled(s float64, o *Volume) error {
	if !v.SameShape(o) {
		return fmt.Errorf("volume: shape mismatch %dx%dx%d vs %dx%dx%d",
			v.NX, v.NY, v.NZ, o.NX, o.NY, o.NZ)
	}
	floats.AddScaled(v.Data, s, o.Data)
	return nil
}

// Sub performs v -= o in place.
func (v *Volume) Sub(o *Volume) error {
	if !v.SameShape(o) {
		return fmt.Errorf("volume: shape mismatch %dx%dx%d vs %dx%dx%d",
			v.NX, v.NY, v.NZ, o.NX, o.NY, o.NZ)
	}
	floats.Sub(v.Data, o.Data)
	return nil
}

// Scale multiplies every voxel by s in place.
func (v *Volume) Scale(s float64) {
	floats.Scale(s, v.Data)
}

// ClampNonNegative zeroes all negative voxels in place.
func (v *Volume) ClampNonNegative() {
	for i, x := range v.Data {
		if x < 0 {
			v.Data[i] = 0
		}
	}
}

// HasNonFinite reports whether any voxel is NaN or infinite.
func (v *Volume) HasNonFinite() bool {
	for _, x := range v.Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
	}
	return false
}

// MinMax returns the smallest and largest voxel values.
func (v *Volume) MinMax() (min, max float64) {
	if len(v.Data) == 0 {
		return 0, 0
	}
	min, max = v.Data[0], v.Data[0]
	for _, x := range v.Data {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}
