// Package conv implements partitioned frequency-domain convolution with
// smooth impulse-response replacement.
//
// The core abstraction is [Convolver]: a streaming, block-based convolution
// engine that accepts new impulse responses mid-stream via Update without
// introducing clicks or broadband splatter. Four strategies share the same
// interface:
//
//   - [CrossfadeTD]: runs two inner convolvers in parallel and crossfades
//     their time-domain output.
//   - [CrossfadeFD]: keeps two impulse-response spectrum banks and
//     synthesizes the crossfade envelope directly in the frequency domain.
//   - [Stepwise]: replaces one impulse-response segment per block.
//   - [FadedStepwise]: blends old and new segment spectra gradually,
//     advancing in lock-step with the convolution's own dependency pattern.
//
// [OLA] and [OLS] are the two equivalent partitioned-convolution backends.
// CrossfadeTD accepts either as its inner engine through a
// [ConvolverFactory]; Stepwise and FadedStepwise always use OLA, and
// CrossfadeFD runs its own built-in overlap-save style engine.
//
// # Usage
//
//	ir := make([]float32, 1024)
//	ir[0] = 1
//	c, err := conv.NewOLA(ir, 256, 1024)
//	err = c.Process(input, output)
//	err = c.Update(newIR) // abrupt swap; building block for the updaters above
//
// For smooth replacement, wrap an inner convolver in one of the four
// update strategies instead of calling Update on the bare OLA/OLS engine.
package conv
