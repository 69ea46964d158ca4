package projection

import (
	"fmt"
	"math"

	"tomorecon/pkg/geometry"
	"tomorecon/pkg/volume"
)

// VoxelDriven is a reference parallel-beam projector pair. The forward
// operator splats every voxel onto its nearest detector pixel after
// rotating the voxel grid by the angle's Theta around the z axis; the
// back projector reads the same pixel back, making the pair an exact
// adjoint. Only Theta is honored; Phi and Psi are ignored.
//
// The implementation favors clarity over speed and exists so the module is
// runnable end to end; production deployments plug in their own operators
// through the ForwardProjector and BackProjector interfaces.
type VoxelDriven struct{}

// NewVoxelDriven returns the reference projector.
func NewVoxelDriven() *VoxelDriven {
	return &VoxelDriven{}
}

// Forward implements ForwardProjector. The mode hint is ignored: the splat
// footprint is its own matched pair.
func (p *VoxelDriven) Forward(vol *volume.Volume, geo geometry.Geometry, angles []geometry.Angle, mode Mode) (*Sinogram, error) {
	if err := p.check(vol, geo); err != nil {
		return nil, err
	}

	out := NewSinogram(geo.DetectorPixels(), len(angles))
	for a, angle := range angles {
		row := out.Rows[a]
		p.sweep(vol, geo, angle, func(voxel int, pixel int) {
			row[pixel] += vol.Data[voxel]
		})
	}
	return out, nil
}

// Back implements BackProjector as the exact transpose of Forward.
func (p *VoxelDriven) Back(sino *Sinogram, geo geometry.Geometry, angles []geometry.Angle, mode Mode) (*volume.Volume, error) {
	if sino.Pixels != geo.DetectorPixels() {
		return nil, fmt.Errorf("projection: sinogram has %d pixels per row, geometry wants %d",
			sino.Pixels, geo.DetectorPixels())
	}
	if len(sino.Rows) != len(angles) {
		return nil, fmt.Errorf("projection: %d sinogram rows for %d angles",
			len(sino.Rows), len(angles))
	}

	out := volume.New(geo.NVoxelX, geo.NVoxelY, geo.NVoxelZ)
	for a, angle := range angles {
		row := sino.Rows[a]
		p.sweep(out, geo, angle, func(voxel int, pixel int) {
			out.Data[voxel] += row[pixel]
		})
	}
	return out, nil
}

func (p *VoxelDriven) check(vol *volume.Volume, geo geometry.Geometry) error {
	if err := geo.Validate(); err != nil {
		return err
	}
	if vol.NX != geo.NVoxelX || vol.NY != geo.NVoxelY || vol.NZ != geo.NVoxelZ {
		return fmt.Errorf("projection: volume %dx%dx%d does not match geometry %dx%dx%d",
			vol.NX, vol.NY, vol.NZ, geo.NVoxelX, geo.NVoxelY, geo.NVoxelZ)
	}
	return nil
}

// sweep visits every voxel that lands on the detector for the given angle
// and reports the (voxel, pixel) index pair.
func (p *VoxelDriven) sweep(vol *volume.Volume, geo geometry.Geometry, angle geometry.Angle, visit func(voxel, pixel int)) {
	sin, cos := math.Sincos(angle.Theta)

	cx := float64(geo.NVoxelX-1) / 2
	cy := float64(geo.NVoxelY-1) / 2
	cz := float64(geo.NVoxelZ-1) / 2
	cu := float64(geo.DetU-1) / 2
	cv := float64(geo.DetV-1) / 2

	idx := 0
	for z := 0; z < vol.NZ; z++ {
		v := int(math.Round(float64(z) - cz + cv))
		for y := 0; y < vol.NY; y++ {
			dy := float64(y) - cy
			for x := 0; x < vol.NX; x++ {
				dx := float64(x) - cx
				// Detector u coordinate of the voxel rotated by -Theta.
				u := int(math.Round(-dx*sin + dy*cos + cu))
				if u >= 0 && u < geo.DetU && v >= 0 && v < geo.DetV {
					visit(idx, v*geo.DetU+u)
				}
				idx++
			}
		}
	}
}

// Backprojection is the analytic single-pass reconstructor used by the FDK
// initialization policy: the unfiltered adjoint averaged over all angles.
type Backprojection struct {
	back BackProjector
}

// NewBackprojection builds the analytic reconstructor on top of an adjoint
// operator.
func NewBackprojection(back BackProjector) *Backprojection {
	return &Backprojection{back: back}
}

// Reconstruct implements AnalyticReconstructor.
func (r *Backprojection) Reconstruct(sino *Sinogram, geo geometry.Geometry, angles []geometry.Angle) (*volume.Volume, error) {
	if len(angles) == 0 {
		return nil, fmt.Errorf("projection: analytic reconstruction needs at least one angle")
	}
	vol, err := r.back.Back(sino, geo, angles, ModeMatched)
	if err != nil {
		return nil, err
	}
	vol.Scale(1 / float64(len(angles)))
	return vol, nil
}
