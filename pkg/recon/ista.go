package recon

// istaTVIterations is the fixed denoiser budget of the plain variant.
const istaTVIterations = 20

// istaStep is the plain proximal-gradient update: a full gradient pass
// followed directly by the regularization step. The denoised volume becomes
// the next iteration's input as-is.
type istaStep struct{}

func (s *istaStep) start(o *Optimizer) {}

func (s *istaStep) iterate(o *Optimizer) error {
	if err := o.gradientPass(); err != nil {
		return err
	}
	den, err := o.denoise(istaTVIterations)
	if err != nil {
		return err
	}
	o.estimate = den
	return nil
}
