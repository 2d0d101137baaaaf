// Package sideband measures how much spectral energy a processed block
// carries outside the immediate neighborhood of a known test tone. It is
// the offline evaluation counterpart to the real-time update strategies in
// dsp/conv: feeding a stepped or crossfaded convolver's output through
// [Energy] quantifies the audible sideband artifacts a given IR-update
// strategy introduces around a steady sine probe.
package sideband

import (
	"errors"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// hannCoherentGain is the standard coherent-gain constant for a symmetric
// Hann window (Heinzel, Rudiger & Schilling's window correction factor
// table), used to normalize the magnitude spectrum to single-sided peak
// amplitude regardless of analysis block length.
const hannCoherentGain = 0.5

// hannWindow returns the n-point symmetric Hann coefficients
// w[k] = 0.5 - 0.5*cos(2*pi*k/(n-1)).
func hannWindow(n int) []float64 {
	coeffs := make([]float64, n)
	if n == 1 {
		coeffs[0] = 1
		return coeffs
	}
	den := float64(n - 1)
	for k := range coeffs {
		coeffs[k] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(k)/den)
	}
	return coeffs
}

var (
	// ErrInvalidBlock is returned when block is empty or not a power-of-two
	// length.
	ErrInvalidBlock = errors.New("sideband: block length must be a positive power of two")
	// ErrInvalidFundamental is returned when fundamentalHz is non-positive or
	// at/above the Nyquist frequency implied by sampleRate.
	ErrInvalidFundamental = errors.New("sideband: fundamental frequency must be positive and below Nyquist")
)

// Energy computes the sideband-energy metric for one analysis block: a
// Hann-windowed FFT magnitude spectrum is computed and normalized to
// single-sided peak amplitude, the bins falling within an ERB-wide
// exclusion band centered on fundamentalHz are zeroed, and the square root
// of the mean magnitude over all N/2+1 bins (excluded bins counting as zero)
// is returned. A clean sine probe passed through an
// artifact-free path scores near zero; audible pops or spectral smearing
// from an IR update raise the score.
func Energy(block []float32, sampleRate, fundamentalHz float64) (float64, error) {
	n := len(block)
	if n == 0 || n&(n-1) != 0 {
		return 0, ErrInvalidBlock
	}
	if fundamentalHz <= 0 || fundamentalHz >= sampleRate/2 {
		return 0, ErrInvalidFundamental
	}

	windowed := make([]float64, n)
	for i, s := range block {
		windowed[i] = float64(s)
	}

	coeffs := hannWindow(n)
	vecmath.MulBlockInPlace(windowed, coeffs)

	samples := make([]float32, n)
	for i, v := range windowed {
		samples[i] = float32(v)
	}

	plan, err := algofft.NewPlanReal32(n)
	if err != nil {
		return 0, err
	}
	spec := make([]complex64, n/2+1)
	if err := plan.Forward(spec, samples); err != nil {
		return 0, err
	}

	re := make([]float64, len(spec))
	im := make([]float64, len(spec))
	for i, c := range spec {
		re[i] = float64(real(c))
		im[i] = float64(imag(c))
	}
	mags := make([]float64, len(spec))
	vecmath.Magnitude(mags, re, im)

	scale := 2 / (hannCoherentGain * float64(n))
	for i := range mags {
		mags[i] *= scale
	}

	fLo, fHi := exclusionBand(fundamentalHz)
	binHz := sampleRate / float64(n)

	masked := make([]float64, len(mags))
	ones := make([]float64, len(mags))
	for i, m := range mags {
		ones[i] = 1
		freq := float64(i) * binHz
		if freq < fLo || freq > fHi {
			masked[i] = m
		}
	}

	sum := vecmath.DotProduct(masked, ones)
	mean := sum / float64(len(mags))
	return math.Sqrt(mean), nil
}

// exclusionBand returns the frequency range masked out of the sideband sum,
// an ERB-wide window centered on f0 using Glasberg & Moore's ERB(f)
// approximation in Hz.
func exclusionBand(f0 float64) (lo, hi float64) {
	fkHz := f0 / 1000
	erb := 6.23*fkHz*fkHz + 93.39*fkHz + 28.52
	half := erb / 2
	return f0 - half, f0 + half
}
