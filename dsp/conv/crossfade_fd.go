package conv

// CrossfadeFD is the frequency-domain crossfade update strategy (spec.md
// §4.4). Unlike CrossfadeTD, it does not run two full inner convolvers: a
// single input-spectrum ring is shared between two IR spectrum banks, and a
// transition is resolved with one spectral-envelope blend applied over the
// single internal block in which the switch occurs, rather than a
// multi-block per-sample ramp.
type CrossfadeFD struct {
	maxResponseLength int
	blockSize         int
	segCount          int
	activeSegCount    int
	specLen           int

	responseA, responseB     *Response
	segmentsIRA, segmentsIRB [][]complex64

	segments [][]complex64 // ring of sliding-window input spectra, shared by both banks

	plan      *fftPlan
	window    []float32 // 2B: [previous block | current block so far]
	ifftBuf   []float32 // 2B inverse-transform scratch

	convA, convB, conv []complex64

	prevBlock       []float32
	current         int
	inputBuffer     []float32
	inputBufferFill int

	storedResponse  []float32
	responsePending bool

	state FadingState
}

var _ Convolver = (*CrossfadeFD)(nil)

// NewCrossfadeFD builds a CrossfadeFD settled on Target A with ir installed
// in both banks.
func NewCrossfadeFD(ir []float32, maxBlockSize, maxResponseLength int) (*CrossfadeFD, error) {
	if maxBlockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	if len(ir) > maxResponseLength {
		return nil, ErrResponseTooLong
	}

	blockSize := nextPowerOf2(maxBlockSize)
	segCount := ceilDiv(maxResponseLength, blockSize)
	if segCount == 0 {
		segCount = 1
	}
	specLen := blockSize + 1

	plan, err := newFFTPlan(2 * blockSize)
	if err != nil {
		return nil, err
	}

	c := &CrossfadeFD{
		maxResponseLength: maxResponseLength,
		blockSize:         blockSize,
		segCount:          segCount,
		specLen:           specLen,
		responseA:         NewResponse(segCount * blockSize),
		responseB:         NewResponse(segCount * blockSize),
		segmentsIRA:       makeComplexMatrix(segCount, specLen),
		segmentsIRB:       makeComplexMatrix(segCount, specLen),
		segments:          makeComplexMatrix(segCount, specLen),
		plan:              plan,
		window:            make([]float32, 2*blockSize),
		ifftBuf:           make([]float32, 2*blockSize),
		convA:             make([]complex64, specLen),
		convB:             make([]complex64, specLen),
		conv:              make([]complex64, specLen),
		prevBlock:         make([]float32, blockSize),
		inputBuffer:       make([]float32, blockSize),
		storedResponse:    make([]float32, maxResponseLength),
		state:             Reached(TargetA),
	}

	if err := c.loadBank(c.responseA, c.segmentsIRA, ir); err != nil {
		return nil, err
	}
	if err := c.loadBank(c.responseB, c.segmentsIRB, ir); err != nil {
		return nil, err
	}
	return c, nil
}

// loadBank installs ir into one of the two segment-spectrum banks.
// activeSegCount only ever grows across loads, never shrinks: a bank that
// has already committed to mixing a tail segment keeps mixing it as zero
// content rather than abruptly truncating the convolution length mid-fade.
func (c *CrossfadeFD) loadBank(response *Response, segmentsIR [][]complex64, ir []float32) error {
	if len(ir) > c.maxResponseLength {
		return ErrResponseTooLong
	}
	if err := response.Update(ir); err != nil {
		return err
	}

	active := response.ActiveSegments(c.blockSize)
	if active > c.activeSegCount {
		c.activeSegCount = active
	}
	for i := 0; i < c.segCount; i++ {
		if i < active {
			transformSegment(c.plan, c.blockSize, response, i, segmentsIR[i], c.window)
		} else {
			clear(segmentsIR[i])
		}
	}
	return nil
}

func (c *CrossfadeFD) isCrossfading() bool { return c.state.IsApproaching() }

func (c *CrossfadeFD) swap(ir []float32) error {
	switch c.state.Target() {
	case TargetA:
		if err := c.loadBank(c.responseB, c.segmentsIRB, ir); err != nil {
			return err
		}
		c.state = Approaching(TargetB)
	case TargetB:
		if err := c.loadBank(c.responseA, c.segmentsIRA, ir); err != nil {
			return err
		}
		c.state = Approaching(TargetA)
	}
	return nil
}

// Update installs ir. If idle, ir loads into the inactive bank and a
// one-block envelope transition begins immediately. If a transition is
// already in flight, ir replaces the single pending slot.
func (c *CrossfadeFD) Update(ir []float32) error {
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

// Process implements Convolver.
func (c *CrossfadeFD) Process(input, output []float32) error {
	if len(input) != len(output) || len(input) == 0 {
		return ErrLengthMismatch
	}
	if c.activeSegCount == 0 {
		clear(output)
		return nil
	}

	if !c.isCrossfading() && c.responsePending {
		if err := c.swap(c.storedResponse); err != nil {
			return err
		}
		c.responsePending = false
	}

	processed := 0
	for processed < len(output) {
		processing := min(len(output)-processed, c.blockSize-c.inputBufferFill)

		pos := c.inputBufferFill
		copy(c.inputBuffer[pos:pos+processing], input[processed:processed+processing])

		copy(c.window[:c.blockSize], c.prevBlock)
		copyAndPad(c.window[c.blockSize:], c.inputBuffer)

		if err := c.plan.forward(c.segments[c.current], c.window); err != nil {
			clear(output)
			return err
		}

		clear(c.convA)
		clear(c.convB)
		for i := 0; i < c.activeSegCount; i++ {
			audioIdx := (c.current + i) % c.activeSegCount
			complexMultiplyAccumulate(c.convA, c.segmentsIRA[i], c.segments[audioIdx])
			complexMultiplyAccumulate(c.convB, c.segmentsIRB[i], c.segments[audioIdx])
		}

		switch {
		case !c.state.IsApproaching():
			if c.state.Target() == TargetA {
				copy(c.conv, c.convA)
			} else {
				copy(c.conv, c.convB)
			}
		case c.state.Target() == TargetA:
			applyFadingEnvelopes(c.specLen, c.convB, c.convA, c.conv)
		default:
			applyFadingEnvelopes(c.specLen, c.convA, c.convB, c.conv)
		}

		if err := c.plan.inverse(c.ifftBuf, c.conv); err != nil {
			clear(output)
			return err
		}

		copy(output[processed:processed+processing], c.ifftBuf[c.blockSize+pos:c.blockSize+pos+processing])

		c.inputBufferFill += processing
		if c.inputBufferFill == c.blockSize {
			copy(c.prevBlock, c.inputBuffer)
			clear(c.inputBuffer)
			c.inputBufferFill = 0

			if c.state.IsApproaching() {
				c.state = Reached(c.state.Target())
			}

			if c.current > 0 {
				c.current--
			} else {
				c.current = c.activeSegCount - 1
			}
		}
		processed += processing
	}
	return nil
}

// Reset clears sliding-window history without discarding either bank.
func (c *CrossfadeFD) Reset() {
	for _, seg := range c.segments {
		clear(seg)
	}
	clear(c.prevBlock)
	clear(c.inputBuffer)
	c.inputBufferFill = 0
	c.current = 0
}

// BlockSize returns B.
func (c *CrossfadeFD) BlockSize() int { return c.blockSize }

// ResponseCapacity returns the fixed impulse-response capacity.
func (c *CrossfadeFD) ResponseCapacity() int { return c.maxResponseLength }

func conj64(v complex64) complex64 { return complex(real(v), -imag(v)) }

// circularSpectrum reads bin i of a Hermitian-symmetric spectrum of length
// specLen, mirroring and conjugating for indices outside [0, specLen) the
// way the real DC/Nyquist-anchored spectrum implies.
func circularSpectrum(i, specLen int, values []complex64) complex64 {
	switch {
	case i < 0:
		return conj64(values[-i])
	case i >= specLen:
		return conj64(values[2*specLen-i-2])
	default:
		return values[i]
	}
}

// applyFadingEnvelopes blends two segment-product spectra (fadeOut settling
// toward silence, fadeIn settling toward full level) into result using a
// neighbor-bin derivative term that approximates a smooth time-domain taper
// entirely in the frequency domain, avoiding an extra inverse/forward
// transform pair per block.
func applyFadingEnvelopes(specLen int, fadeOut, fadeIn, result []complex64) {
	half := complex64(complex(0.5, 0))
	for i := 0; i < specLen; i++ {
		inNext := circularSpectrum(i+1, specLen, fadeIn)
		outNext := circularSpectrum(i+1, specLen, fadeOut)
		inPrev := circularSpectrum(i-1, specLen, fadeIn)
		outPrev := circularSpectrum(i-1, specLen, fadeOut)

		result[i] = half * (fadeOut[i] + fadeIn[i] + half*(inNext-outNext+inPrev-outPrev))
	}
	clampHermitianZeros(result)
}
