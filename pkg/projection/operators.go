package projection

import (
	"tomorecon/pkg/geometry"
	"tomorecon/pkg/volume"
)

// Mode selects the sampling footprint an operator uses. The iterative
// algorithms request an interpolated forward model and a matched adjoint;
// operators that implement a single footprint may ignore the hint.
type Mode int

const (
	// ModeInterpolated samples the volume along rays with interpolation.
	ModeInterpolated Mode = iota
	// ModeMatched uses the exact transpose of the forward footprint.
	ModeMatched
)

// ForwardProjector maps a volume to simulated projection rows for a subset
// of angles. Implementations must not modify the input volume.
type ForwardProjector interface {
	Forward(vol *volume.Volume, geo geometry.Geometry, angles []geometry.Angle, mode Mode) (*Sinogram, error)
}

// BackProjector maps projection rows back into volume space. The result has
// the voxel dimensions given by the geometry.
type BackProjector interface {
	Back(sino *Sinogram, geo geometry.Geometry, angles []geometry.Angle, mode Mode) (*volume.Volume, error)
}

// AnalyticReconstructor produces a single-pass reconstruction of a complete
// sinogram. Used only by warm-start initialization policies; its result is
// refined, never trusted as-is.
type AnalyticReconstructor interface {
	Reconstruct(sino *Sinogram, geo geometry.Geometry, angles []geometry.Angle) (*volume.Volume, error)
}
