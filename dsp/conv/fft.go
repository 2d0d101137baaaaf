package conv

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
)

// fftPlan wraps a real-to-complex FFT of a fixed size, shared by every
// partitioned-convolution variant in this package. size is always 2*B for a
// partition size B: a segment is zero-padded to 2B before the forward
// transform and produces B+1 complex bins (see spec's segment-frequency
// definition).
type fftPlan struct {
	size    int
	specLen int
	plan    *algofft.PlanRealT[float32, complex64]
}

// newFFTPlan creates a real FFT plan of the given (power-of-two) size.
func newFFTPlan(size int) (*fftPlan, error) {
	plan, err := algofft.NewPlanReal32(size)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan for size %d: %w", size, err)
	}
	return &fftPlan{
		size:    size,
		specLen: size/2 + 1,
		plan:    plan,
	}, nil
}

// forward transforms a real, size-length time-domain buffer into a
// specLen-length complex spectrum. On FFT backend failure it zeroes dst and
// returns an error; callers in this package treat that as a silent block per
// spec's FFT-backend-failure error kind.
func (p *fftPlan) forward(dst []complex64, src []float32) error {
	if err := p.plan.Forward(dst, src); err != nil {
		clear(dst)
		return fmt.Errorf("conv: forward FFT failed: %w", err)
	}
	return nil
}

// inverse transforms a specLen-length complex spectrum back into a
// size-length real time-domain buffer. Normalization by 1/size is applied by
// the underlying plan.
func (p *fftPlan) inverse(dst []float32, src []complex64) error {
	if err := p.plan.Inverse(dst, src); err != nil {
		clear(dst)
		return fmt.Errorf("conv: inverse FFT failed: %w", err)
	}
	return nil
}
