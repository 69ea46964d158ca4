package recon

import (
	"fmt"
	"math"

	"tomorecon/pkg/volume"
)

// fistaStep is the Nesterov-accelerated update. It keeps the momentum
// coefficient t and the previous denoised iterate x_rec across iterations;
// the extrapolation deliberately combines the new denoised iterate with the
// one from the previous iteration, weighted by the previous t. Exactly one
// previous iterate is retained, replaced wholesale each iteration.
type fistaStep struct {
	t    float64
	xRec *volume.Volume
}

func (s *fistaStep) start(o *Optimizer) {
	s.t = 1
	s.xRec = o.estimate.Clone()
}

func (s *fistaStep) iterate(o *Optimizer) error {
	if err := o.gradientPass(); err != nil {
		return err
	}
	xRecNew, err := o.denoise(o.opts.TVIter)
	if err != nil {
		return err
	}

	tOld := s.t
	s.t = nextMomentum(tOld)

	// estimate = xRecNew + ((tOld-1)/t) * (xRecNew - xRecOld)
	est := xRecNew.Clone()
	diff := xRecNew.Clone()
	if err := diff.Sub(s.xRec); err != nil {
		return fmt.Errorf("%w: denoiser changed volume shape: %w", ErrOperatorFailure, err)
	}
	if err := est.AddScaled((tOld-1)/s.t, diff); err != nil {
		return fmt.Errorf("%w: %w", ErrOperatorFailure, err)
	}

	s.xRec = xRecNew
	o.estimate = est
	return nil
}

// nextMomentum advances the accelerated-gradient recursion
// t' = (1 + sqrt(1 + 4t^2)) / 2, which is strictly increasing from t = 1.
func nextMomentum(t float64) float64 {
	return (1 + math.Sqrt(1+4*t*t)) / 2
}
