package conv

// ConvolverFactory builds an independent Convolver instance, matching the
// construction contract of [NewOLA] and [NewOLS]. CrossfadeTD uses it to
// build its two inner engines from the same recipe.
type ConvolverFactory func(ir []float32, maxBlockSize, maxResponseLength int) (Convolver, error)

// CrossfadeTD is the time-domain crossfade update strategy (spec.md §4.3).
// It runs two complete inner convolvers side by side, always routes new
// responses to whichever side is not currently the crossfade target, and
// mixes their full output streams sample-by-sample through a Crossfader.
// A response arriving mid-transition is held in a single pending slot and
// only takes effect once the in-flight crossfade settles.
type CrossfadeTD struct {
	convolverA, convolverB Convolver
	crossfader             *Crossfader

	bufferA, bufferB []float32

	storedResponse  []float32
	responsePending bool
}

var _ Convolver = (*CrossfadeTD)(nil)

// NewCrossfadeTD builds a CrossfadeTD. Both inner convolvers are constructed
// via factory with ir installed already settled on Target A. crossfadeSamples
// sets the fade length. mixer selects the mixing curve; a nil mixer defaults
// to RaisedCosineMixer. holdSamples <= 0 falls back to
// min(maxBlockSize, maxResponseLength), matching the Rust reference's choice
// of a hold no longer than either bound.
func NewCrossfadeTD(factory ConvolverFactory, mixer Mixer, ir []float32, maxBlockSize, maxResponseLength, crossfadeSamples, holdSamples int) (*CrossfadeTD, error) {
	if mixer == nil {
		mixer = RaisedCosineMixer{}
	}
	convA, err := factory(ir, maxBlockSize, maxResponseLength)
	if err != nil {
		return nil, err
	}
	convB, err := factory(ir, maxBlockSize, maxResponseLength)
	if err != nil {
		return nil, err
	}

	hold := holdSamples
	if hold <= 0 {
		hold = maxBlockSize
		if maxResponseLength < hold {
			hold = maxResponseLength
		}
	}

	return &CrossfadeTD{
		convolverA:     convA,
		convolverB:     convB,
		crossfader:     NewCrossfader(mixer, crossfadeSamples, hold),
		bufferA:        make([]float32, maxBlockSize),
		bufferB:        make([]float32, maxBlockSize),
		storedResponse: make([]float32, maxResponseLength),
	}, nil
}

func (c *CrossfadeTD) isCrossfading() bool { return c.crossfader.State().IsApproaching() }

// Update installs ir. If no crossfade is in flight, ir is written into
// whichever inner convolver is not the current target and a fade toward it
// begins immediately. If a crossfade is already in flight, ir replaces the
// single pending slot and is applied once that crossfade settles.
func (c *CrossfadeTD) Update(ir []float32) error {
	if !c.isCrossfading() {
		if err := c.swap(ir); err != nil {
			return err
		}
		c.responsePending = false
		return nil
	}

	if len(ir) > len(c.storedResponse) {
		return ErrResponseTooLong
	}
	copyAndPad(c.storedResponse, ir)
	c.responsePending = true
	return nil
}

func (c *CrossfadeTD) swap(ir []float32) error {
	switch c.crossfader.State().Target() {
	case TargetA:
		if err := c.convolverB.Update(ir); err != nil {
			return err
		}
		c.crossfader.FadeInto(TargetB)
	case TargetB:
		if err := c.convolverA.Update(ir); err != nil {
			return err
		}
		c.crossfader.FadeInto(TargetA)
	}
	return nil
}

// Process implements Convolver. Input longer than the caller's declared
// maxBlockSize is processed in chunks of at most maxBlockSize samples.
func (c *CrossfadeTD) Process(input, output []float32) error {
	if len(input) != len(output) || len(input) == 0 {
		return ErrLengthMismatch
	}

	if !c.isCrossfading() && c.responsePending {
		if err := c.swap(c.storedResponse); err != nil {
			return err
		}
		c.responsePending = false
	}

	for start := 0; start < len(input); start += len(c.bufferA) {
		end := min(start+len(c.bufferA), len(input))
		in, out := input[start:end], output[start:end]
		bufA := c.bufferA[:len(in)]
		bufB := c.bufferB[:len(in)]
		if err := c.convolverA.Process(in, bufA); err != nil {
			return err
		}
		if err := c.convolverB.Process(in, bufB); err != nil {
			return err
		}

		for i := range out {
			out[i] = c.crossfader.Mix(bufA[i], bufB[i])
		}
	}
	return nil
}

// Reset clears both inner convolvers' transient state and the crossfade
// mixing buffers. It does not reset the crossfader's own position.
func (c *CrossfadeTD) Reset() {
	c.convolverA.Reset()
	c.convolverB.Reset()
	clear(c.bufferA)
	clear(c.bufferB)
}

// BlockSize returns the inner convolvers' internal partition size.
func (c *CrossfadeTD) BlockSize() int { return c.convolverA.BlockSize() }

// ResponseCapacity returns the fixed impulse-response capacity.
func (c *CrossfadeTD) ResponseCapacity() int { return len(c.storedResponse) }
