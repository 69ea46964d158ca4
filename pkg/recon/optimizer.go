// Package recon implements the iterative reconstruction core: a fixed
// iteration budget of gradient-step passes over angle blocks composed with
// a proximal regularization step, in a plain (ISTA) and a Nesterov
// accelerated (FISTA) variant. The projection operators and the denoiser
// are injected; the optimizer owns the evolving estimate.
package recon

import (
	"fmt"
	"log/slog"
	"time"

	"tomorecon/pkg/geometry"
	"tomorecon/pkg/ordering"
	"tomorecon/pkg/projection"
	"tomorecon/pkg/quality"
	"tomorecon/pkg/tv"
	"tomorecon/pkg/volume"
)

// Operators bundles the external collaborators of a reconstruction run.
type Operators struct {
	// Forward and Back are the projection operator pair. Required.
	Forward projection.ForwardProjector
	Back    projection.BackProjector

	// Denoiser is the proximal regularizer applied between gradient
	// passes. Required.
	Denoiser tv.Denoiser

	// Analytic produces the warm start for InitFDK. Required only for
	// that policy.
	Analytic projection.AnalyticReconstructor
}

// stepper is the per-iteration update strategy that distinguishes the
// plain from the accelerated variant. Both share the gradient pass.
type stepper interface {
	start(o *Optimizer)
	iterate(o *Optimizer) error
}

// Optimizer drives the iteration loop. It is single-threaded and owns the
// reconstruction estimate exclusively for the duration of a run.
type Optimizer struct {
	name string
	opts Options
	ops  Operators

	geo    geometry.Geometry
	angles []geometry.Angle
	sino   *projection.Sinogram

	parts       ordering.Partition
	angleBlocks [][]geometry.Angle

	bm       float64
	estimate *volume.Volume
	tracker  *quality.Tracker
	step     stepper
	log      *slog.Logger
}

// NewISTA builds a plain proximal-gradient optimizer. Angle blocks default
// to a single full-data block per pass; setting BlockSize enables subset
// sweeps.
func NewISTA(sino *projection.Sinogram, geo geometry.Geometry, angles []geometry.Angle, ops Operators, opts Options) (*Optimizer, error) {
	return newOptimizer("ISTA", &istaStep{}, sino, geo, angles, ops, opts)
}

// NewFISTA builds the Nesterov-accelerated optimizer. Angle blocks default
// to a single full-data block per pass; setting BlockSize enables
// mini-batch acceleration.
func NewFISTA(sino *projection.Sinogram, geo geometry.Geometry, angles []geometry.Angle, ops Operators, opts Options) (*Optimizer, error) {
	return newOptimizer("FISTA", &fistaStep{}, sino, geo, angles, ops, opts)
}

func newOptimizer(name string, step stepper, sino *projection.Sinogram, geo geometry.Geometry, angles []geometry.Angle, ops Operators, opts Options) (*Optimizer, error) {
	// Configuration checks all happen up front: no operator is invoked
	// until the whole configuration is known to be sound.
	if err := geo.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if len(angles) == 0 {
		return nil, fmt.Errorf("%w: empty angle set", ErrInvalidConfiguration)
	}
	if err := opts.validate(len(angles)); err != nil {
		return nil, err
	}
	if ops.Forward == nil || ops.Back == nil {
		return nil, fmt.Errorf("%w: forward and back projectors are required", ErrInvalidConfiguration)
	}
	if ops.Denoiser == nil {
		return nil, fmt.Errorf("%w: denoiser is required", ErrInvalidConfiguration)
	}
	if opts.Init == InitFDK && ops.Analytic == nil {
		return nil, fmt.Errorf("%w: init=FDK requires an analytic reconstructor", ErrInvalidConfiguration)
	}
	if opts.Init == InitMultigrid {
		if err := multigridSupported(geo); err != nil {
			return nil, err
		}
	}
	if opts.Init == InitImage {
		if opts.InitImg.NX != geo.NVoxelX || opts.InitImg.NY != geo.NVoxelY || opts.InitImg.NZ != geo.NVoxelZ {
			return nil, fmt.Errorf("%w: InitImg is %dx%dx%d, geometry wants %dx%dx%d",
				ErrInvalidConfiguration, opts.InitImg.NX, opts.InitImg.NY, opts.InitImg.NZ,
				geo.NVoxelX, geo.NVoxelY, geo.NVoxelZ)
		}
	}
	if sino == nil || sino.NumAngles() != len(angles) {
		return nil, fmt.Errorf("%w: sinogram rows must match the angle count", ErrInvalidConfiguration)
	}
	if sino.Pixels != geo.DetectorPixels() {
		return nil, fmt.Errorf("%w: sinogram has %d pixels per row, geometry wants %d",
			ErrInvalidConfiguration, sino.Pixels, geo.DetectorPixels())
	}

	// Both variants default to one full-data block per pass; BlockSize
	// opts into subset sweeps.
	blockSize := opts.BlockSize
	if blockSize == 0 {
		blockSize = len(angles)
	}
	parts, err := ordering.New(angles, blockSize, opts.OrderStrategy, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	angleBlocks := make([][]geometry.Angle, len(parts))
	for i, block := range parts {
		angleBlocks[i] = make([]geometry.Angle, len(block))
		for j, idx := range block {
			angleBlocks[i][j] = angles[idx]
		}
	}

	tracker, err := quality.NewTracker(opts.QualityMetrics)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	o := &Optimizer{
		name:        name,
		opts:        opts,
		ops:         ops,
		geo:         geo,
		angles:      angles,
		sino:        sino,
		parts:       parts,
		angleBlocks: angleBlocks,
		bm:          1 / opts.Hyper,
		tracker:     tracker,
		step:        step,
		log:         slog.Default(),
	}

	// Initialization runs last: FDK and multigrid invoke operators.
	est, err := o.initialize()
	if err != nil {
		return nil, err
	}
	o.estimate = est
	o.step.start(o)
	return o, nil
}

// Run executes the fixed iteration budget and returns the final estimate.
// Quality metrics, when enabled, are recorded once per iteration and never
// alter control flow.
func (o *Optimizer) Run() (*volume.Volume, error) {
	start := time.Now()
	for i := 0; i < o.opts.Niter; i++ {
		if o.opts.Verbose {
			if i == 0 {
				o.log.Info("reconstruction in progress",
					"algorithm", o.name,
					"iterations", o.opts.Niter,
					"blocks", len(o.parts),
				)
			} else if i == 1 {
				perIter := time.Since(start)
				o.log.Info("estimated time to completion",
					"algorithm", o.name,
					"eta", perIter*time.Duration(o.opts.Niter-1),
				)
			}
		}

		var prev *volume.Volume
		if o.tracker.Enabled() && i > 0 {
			prev = o.estimate.Clone()
		}

		if err := o.step.iterate(o); err != nil {
			return nil, err
		}
		if o.estimate.HasNonFinite() {
			return nil, fmt.Errorf("%w: iteration %d", ErrNumericInstability, i)
		}

		o.tracker.Record(i, prev, o.estimate)
	}
	return o.estimate, nil
}

// Trace returns the quality history recorded so far. Empty when quality
// measurement is disabled.
func (o *Optimizer) Trace() []quality.Record {
	return o.tracker.Trace()
}

// Estimate returns the current reconstruction estimate.
func (o *Optimizer) Estimate() *volume.Volume {
	return o.estimate
}

// gradientPass is the data-fidelity primitive shared by both variants: one
// sweep over all angle blocks, each contributing
//
//	estimate += 2*bm * Atb(proj[block] - Ax(estimate, block))
//
// followed by an optional non-negativity clamp.
func (o *Optimizer) gradientPass() error {
	for bi, block := range o.parts {
		sim, err := o.ops.Forward.Forward(o.estimate, o.geo, o.angleBlocks[bi], projection.ModeInterpolated)
		if err != nil {
			return fmt.Errorf("%w: forward projection of block %d: %w", ErrOperatorFailure, bi, err)
		}
		meas, err := o.sino.Subset(block)
		if err != nil {
			return fmt.Errorf("%w: block %d: %w", ErrOperatorFailure, bi, err)
		}
		resid, err := projection.Residual(meas, sim)
		if err != nil {
			return fmt.Errorf("%w: forward projection of block %d returned wrong shape: %w", ErrOperatorFailure, bi, err)
		}
		upd, err := o.ops.Back.Back(resid, o.geo, o.angleBlocks[bi], projection.ModeMatched)
		if err != nil {
			return fmt.Errorf("%w: backprojection of block %d: %w", ErrOperatorFailure, bi, err)
		}
		if err := o.estimate.AddScaled(2*o.bm, upd); err != nil {
			return fmt.Errorf("%w: backprojection of block %d returned wrong shape: %w", ErrOperatorFailure, bi, err)
		}
		if o.opts.NonNegativity {
			o.estimate.ClampNonNegative()
		}
	}
	return nil
}

// lambdaForTV is the strength handed to the denoiser each iteration.
func (o *Optimizer) lambdaForTV() float64 {
	return 2 * o.bm * o.opts.Lambda
}

func (o *Optimizer) denoise(iterations int) (*volume.Volume, error) {
	out, err := o.ops.Denoiser.Denoise(o.estimate, iterations, o.lambdaForTV())
	if err != nil {
		return nil, fmt.Errorf("%w: denoiser: %w", ErrOperatorFailure, err)
	}
	if !out.SameShape(o.estimate) {
		return nil, fmt.Errorf("%w: denoiser changed volume shape", ErrOperatorFailure)
	}
	return out, nil
}
