package recon

import "errors"

var (
	// ErrInvalidConfiguration is returned by the constructors for bad or
	// missing options. It is always raised before any operator is invoked.
	ErrInvalidConfiguration = errors.New("recon: invalid configuration")

	// ErrOperatorFailure wraps failures of the injected projection
	// operators or denoiser. Operator failures abort the run; there is no
	// retry and no partial result.
	ErrOperatorFailure = errors.New("recon: operator failure")

	// ErrNumericInstability is returned when the estimate develops
	// non-finite values during iteration.
	ErrNumericInstability = errors.New("recon: non-finite values in estimate")
)
