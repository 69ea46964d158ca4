package recon

import (
	"fmt"

	"tomorecon/pkg/ordering"
	"tomorecon/pkg/volume"
)

// InitPolicy selects how the initial reconstruction estimate is produced.
type InitPolicy int

const (
	// InitNone starts from a zero-filled volume.
	InitNone InitPolicy = iota
	// InitFDK starts from a single-pass analytic reconstruction.
	InitFDK
	// InitMultigrid solves the problem on a coarser grid first and lifts
	// the result onto the full grid.
	InitMultigrid
	// InitImage starts from a caller-supplied volume.
	InitImage
)

// ParseInitPolicy resolves an initialization policy from configuration.
func ParseInitPolicy(name string) (InitPolicy, error) {
	switch name {
	case "none", "":
		return InitNone, nil
	case "FDK":
		return InitFDK, nil
	case "multigrid":
		return InitMultigrid, nil
	case "image":
		return InitImage, nil
	default:
		return 0, fmt.Errorf("%w: unknown init policy %q", ErrInvalidConfiguration, name)
	}
}

// String returns the configuration name of the policy.
func (p InitPolicy) String() string {
	switch p {
	case InitNone:
		return "none"
	case InitFDK:
		return "FDK"
	case InitMultigrid:
		return "multigrid"
	case InitImage:
		return "image"
	default:
		return fmt.Sprintf("InitPolicy(%d)", int(p))
	}
}

// Options is the full configuration surface of the iterative algorithms.
// Build it from DefaultOptions, set Niter, and pass it to NewISTA or
// NewFISTA, which validate it once; the optimizer never mutates it.
type Options struct {
	// Niter is the fixed iteration budget. Zero runs no iterations and
	// returns the initial estimate unchanged.
	Niter int

	// Hyper is the Lipschitz-related constant L; the gradient step is
	// scaled by bm = 1/L. Larger values take smaller steps.
	Hyper float64

	// Init selects the initialization policy.
	Init InitPolicy

	// InitImg is the starting estimate for InitImage. Required exactly
	// when Init == InitImage.
	InitImg *volume.Volume

	// Verbose enables progress logging, including the time-to-completion
	// estimate emitted after the first iteration.
	Verbose bool

	// QualityMetrics names the metrics recorded each iteration. Empty
	// disables quality measurement entirely.
	QualityMetrics []string

	// OrderStrategy controls how angles are partitioned into blocks.
	OrderStrategy ordering.Strategy

	// Seed makes the random order strategy reproducible.
	Seed int64

	// TVIter is the denoiser inner-iteration budget used by FISTA.
	TVIter int

	// Lambda is the regularization strength; the denoiser receives
	// 2*bm*Lambda.
	Lambda float64

	// BlockSize is the number of angles per gradient-step block. Zero
	// selects the default of one full-data block per pass.
	BlockSize int

	// NonNegativity clamps negative voxels after each block update.
	NonNegativity bool
}

// DefaultOptions returns the documented defaults. Niter has no default and
// must be set by the caller.
func DefaultOptions() Options {
	return Options{
		Hyper:   2.0e4,
		Init:    InitNone,
		Verbose: true,
		TVIter:  20,
		Lambda:  0.1,
	}
}

// validate checks every option against the angle count. Called once at
// construction, before any operator is invoked.
func (o *Options) validate(nAngles int) error {
	if o.Niter < 0 {
		return fmt.Errorf("%w: negative iteration count %d", ErrInvalidConfiguration, o.Niter)
	}
	if o.Hyper <= 0 {
		return fmt.Errorf("%w: hyper must be positive, got %v", ErrInvalidConfiguration, o.Hyper)
	}
	if o.TVIter <= 0 {
		return fmt.Errorf("%w: tviter must be positive, got %d", ErrInvalidConfiguration, o.TVIter)
	}
	if o.Lambda <= 0 {
		return fmt.Errorf("%w: lambda must be positive, got %v", ErrInvalidConfiguration, o.Lambda)
	}
	if o.BlockSize < 0 || o.BlockSize > nAngles {
		return fmt.Errorf("%w: block size %d outside [0, %d]", ErrInvalidConfiguration, o.BlockSize, nAngles)
	}
	switch o.Init {
	case InitNone, InitFDK, InitMultigrid:
		if o.InitImg != nil {
			return fmt.Errorf("%w: InitImg is only valid with init=image", ErrInvalidConfiguration)
		}
	case InitImage:
		if o.InitImg == nil {
			return fmt.Errorf("%w: init=image requires InitImg", ErrInvalidConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown init policy %d", ErrInvalidConfiguration, int(o.Init))
	}
	return nil
}
