// Package projection defines the projection-data representation and the
// forward/adjoint operator contracts consumed by the iterative algorithms,
// together with a reference voxel-driven parallel-beam implementation.
package projection

import (
	"fmt"
)

// Sinogram holds projection measurements as one flattened detector row per
// acquisition angle. Rows are paired 1:1 with the angle set used to acquire
// or simulate them. The reconstruction algorithms treat measured sinograms
// as read-only.
type Sinogram struct {
	// Pixels is the number of detector pixels per row (DetU*DetV).
	Pixels int
	// Rows holds one measurement row per angle.
	Rows [][]float64
}

// NewSinogram returns a zero-filled sinogram for the given detector size
// and angle count.
func NewSinogram(pixels, nAngles int) *Sinogram {
	rows := make([][]float64, nAngles)
	for i := range rows {
		rows[i] = make([]float64, pixels)
	}
	return &Sinogram{Pixels: pixels, Rows: rows}
}

// NumAngles returns the number of rows.
func (s *Sinogram) NumAngles() int {
	return len(s.Rows)
}

// Subset returns a sinogram view of the rows at the given angle indices.
// Row storage is shared with the receiver; callers must treat the result
// as read-only.
func (s *Sinogram) Subset(indices []int) (*Sinogram, error) {
	rows := make([][]float64, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(s.Rows) {
			return nil, fmt.Errorf("projection: angle index %d outside [0, %d)", idx, len(s.Rows))
		}
		rows[i] = s.Rows[idx]
	}
	return &Sinogram{Pixels: s.Pixels, Rows: rows}, nil
}

// Residual returns measured - simulated with fresh storage.
func Residual(measured, simulated *Sinogram) (*Sinogram, error) {
	if measured.Pixels != simulated.Pixels || len(measured.Rows) != len(simulated.Rows) {
		return nil, fmt.Errorf("projection: sinogram shape mismatch %dx%d vs %dx%d",
			measured.Pixels, len(measured.Rows), simulated.Pixels, len(simulated.Rows))
	}
	out := NewSinogram(measured.Pixels, len(measured.Rows))
	for i := range measured.Rows {
		m, sim := measured.Rows[i], simulated.Rows[i]
		dst := out.Rows[i]
		for j := range m {
			dst[j] = m[j] - sim[j]
		}
	}
	return out, nil
}
