package recon

import (
	"fmt"

	"tomorecon/pkg/geometry"
	"tomorecon/pkg/projection"
	"tomorecon/pkg/volume"
)

// multigridPasses is the number of full-data gradient sweeps run on the
// coarse grid before lifting the warm start onto the full grid.
const multigridPasses = 10

// initialize produces the starting estimate according to the configured
// policy. InitFDK and InitMultigrid invoke the injected operators; the
// other policies touch no collaborator.
func (o *Optimizer) initialize() (*volume.Volume, error) {
	switch o.opts.Init {
	case InitNone:
		return volume.New(o.geo.NVoxelX, o.geo.NVoxelY, o.geo.NVoxelZ), nil

	case InitImage:
		return o.opts.InitImg.Clone(), nil

	case InitFDK:
		est, err := o.ops.Analytic.Reconstruct(o.sino, o.geo, o.angles)
		if err != nil {
			return nil, fmt.Errorf("%w: analytic reconstruction: %w", ErrOperatorFailure, err)
		}
		if est.NX != o.geo.NVoxelX || est.NY != o.geo.NVoxelY || est.NZ != o.geo.NVoxelZ {
			return nil, fmt.Errorf("%w: analytic reconstruction returned wrong shape", ErrOperatorFailure)
		}
		return est, nil

	case InitMultigrid:
		return o.initMultigrid()

	default:
		return nil, fmt.Errorf("%w: unknown init policy %d", ErrInvalidConfiguration, int(o.opts.Init))
	}
}

// multigridSupported rejects geometries too small to halve. Checked at
// construction so the failure surfaces before any operator call.
func multigridSupported(geo geometry.Geometry) error {
	coarse := geo.Halved()
	if err := coarse.Validate(); err != nil {
		return fmt.Errorf("%w: geometry too small for multigrid: %v", ErrInvalidConfiguration, err)
	}
	return nil
}

// initMultigrid solves the reconstruction on a half-resolution grid with a
// few full-data gradient sweeps from zero, then lifts the coarse solution
// onto the full grid with trilinear interpolation. The injected operators
// must therefore support arbitrary geometries, which the reference
// projector does.
func (o *Optimizer) initMultigrid() (*volume.Volume, error) {
	coarseGeo := o.geo.Halved()
	coarseSino := downsampleSinogram(o.sino, o.geo.DetU, o.geo.DetV)

	est := volume.New(coarseGeo.NVoxelX, coarseGeo.NVoxelY, coarseGeo.NVoxelZ)
	for pass := 0; pass < multigridPasses; pass++ {
		sim, err := o.ops.Forward.Forward(est, coarseGeo, o.angles, projection.ModeInterpolated)
		if err != nil {
			return nil, fmt.Errorf("%w: multigrid forward projection: %w", ErrOperatorFailure, err)
		}
		resid, err := projection.Residual(coarseSino, sim)
		if err != nil {
			return nil, fmt.Errorf("%w: multigrid forward projection returned wrong shape: %w", ErrOperatorFailure, err)
		}
		upd, err := o.ops.Back.Back(resid, coarseGeo, o.angles, projection.ModeMatched)
		if err != nil {
			return nil, fmt.Errorf("%w: multigrid backprojection: %w", ErrOperatorFailure, err)
		}
		if err := est.AddScaled(2*o.bm, upd); err != nil {
			return nil, fmt.Errorf("%w: multigrid backprojection returned wrong shape: %w", ErrOperatorFailure, err)
		}
	}
	return est.Resize(o.geo.NVoxelX, o.geo.NVoxelY, o.geo.NVoxelZ), nil
}

// downsampleSinogram averages 2x2 detector bins per angle, matching the
// halved detector of the coarse geometry. Odd trailing rows or columns are
// folded into the last coarse bin.
func downsampleSinogram(sino *projection.Sinogram, detU, detV int) *projection.Sinogram {
	cu, cv := detU/2, detV/2
	out := projection.NewSinogram(cu*cv, sino.NumAngles())

	for a, row := range sino.Rows {
		dst := out.Rows[a]
		for v := 0; v < cv; v++ {
			for u := 0; u < cu; u++ {
				sum := 0.0
				count := 0
				for dv := 0; dv < 2; dv++ {
					for du := 0; du < 2; du++ {
						sv, su := clampIdx(2*v+dv, detV), clampIdx(2*u+du, detU)
						sum += row[sv*detU+su]
						count++
					}
				}
				dst[v*cu+u] = sum / float64(count)
			}
		}
	}
	return out
}

func clampIdx(i, n int) int {
	if i >= n {
		return n - 1
	}
	return i
}
