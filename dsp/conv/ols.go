package conv

// OLS is the overlap-save partitioned frequency-domain convolver (spec's
// §4.1 OLS formulation). Instead of an explicit overlap buffer, it keeps a
// ring of spectra of the sliding 2B window formed by the previous and
// current raw B-sample blocks, and discards the aliased first half of each
// inverse transform.
//
// OLS does not implement [SegmentMutator]: it has no native per-segment
// spectral write path, so update strategies prefer OLA.
type OLS struct {
	maxResponseLength int
	blockSize         int
	segCount          int
	activeSegCount    int
	specLen           int

	response *Response

	segments   [][]complex64 // ring of sliding-window spectra, S x specLen
	segmentsIR [][]complex64 // IR segment spectra, S x specLen

	plan *fftPlan

	window []float32 // 2B scratch: [previous block | current block so far]
	sum    []complex64
	ifft   []float32 // 2B scratch for inverse transform

	prevBlock       []float32 // B, the previous completed raw block
	current         int
	inputBuffer     []float32
	inputBufferFill int
}

var _ Convolver = (*OLS)(nil)

// NewOLS constructs an OLS convolver with the same construction contract as
// [NewOLA].
func NewOLS(ir []float32, maxBlockSize, maxResponseLength int) (*OLS, error) {
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

	o := &OLS{
		maxResponseLength: maxResponseLength,
		blockSize:         blockSize,
		segCount:          segCount,
		specLen:           specLen,
		response:          NewResponse(segCount * blockSize),
		segments:          makeComplexMatrix(segCount, specLen),
		segmentsIR:        makeComplexMatrix(segCount, specLen),
		plan:              plan,
		window:            make([]float32, 2*blockSize),
		sum:               make([]complex64, specLen),
		ifft:              make([]float32, 2*blockSize),
		prevBlock:         make([]float32, blockSize),
		inputBuffer:       make([]float32, blockSize),
	}

	if err := o.Update(ir); err != nil {
		return nil, err
	}
	return o, nil
}

// Update recomputes every IR segment spectrum and resets window/history
// state, identically in spirit to [OLA.Update].
func (o *OLS) Update(ir []float32) error {
	if len(ir) > o.maxResponseLength {
		return ErrResponseTooLong
	}
	if err := o.response.Update(ir); err != nil {
		return err
	}

	o.activeSegCount = o.response.ActiveSegments(o.blockSize)
	for i := 0; i < o.segCount; i++ {
		if i < o.activeSegCount {
			transformSegment(o.plan, o.blockSize, o.response, i, o.segmentsIR[i], o.ifft)
		} else {
			clear(o.segmentsIR[i])
		}
	}

	for _, seg := range o.segments {
		clear(seg)
	}
	clear(o.prevBlock)
	clear(o.inputBuffer)
	o.inputBufferFill = 0
	o.current = 0

	return nil
}

// ActiveSegCount returns the number of segments carrying nonzero content.
func (o *OLS) ActiveSegCount() int { return o.activeSegCount }

// Process implements Convolver.
func (o *OLS) Process(input, output []float32) error {
	if len(input) != len(output) || len(input) == 0 {
		return ErrLengthMismatch
	}
	if o.activeSegCount == 0 {
		clear(output)
		return nil
	}

	processed := 0
	for processed < len(output) {
		processing := min(len(output)-processed, o.blockSize-o.inputBufferFill)

		pos := o.inputBufferFill
		copy(o.inputBuffer[pos:pos+processing], input[processed:processed+processing])

		copy(o.window[:o.blockSize], o.prevBlock)
		copyAndPad(o.window[o.blockSize:], o.inputBuffer)

		if err := o.plan.forward(o.segments[o.current], o.window); err != nil {
			clear(output)
			return err
		}

		clear(o.sum)
		for i := 0; i < o.activeSegCount; i++ {
			audioIdx := (o.current + i) % o.activeSegCount
			complexMultiplyAccumulate(o.sum, o.segmentsIR[i], o.segments[audioIdx])
		}

		if err := o.plan.inverse(o.ifft, o.sum); err != nil {
			clear(output)
			return err
		}

		copy(output[processed:processed+processing], o.ifft[o.blockSize+pos:o.blockSize+pos+processing])

		o.inputBufferFill += processing
		if o.inputBufferFill == o.blockSize {
			copy(o.prevBlock, o.inputBuffer)
			clear(o.inputBuffer)
			o.inputBufferFill = 0

			if o.current > 0 {
				o.current--
			} else {
				o.current = o.activeSegCount - 1
			}
		}
		processed += processing
	}
	return nil
}

// Reset clears sliding-window history without discarding the installed
// response.
func (o *OLS) Reset() {
	for _, seg := range o.segments {
		clear(seg)
	}
	clear(o.prevBlock)
	clear(o.inputBuffer)
	o.inputBufferFill = 0
	o.current = 0
}

// BlockSize returns B.
func (o *OLS) BlockSize() int { return o.blockSize }

// ResponseCapacity returns the validation ceiling fixed at construction.
func (o *OLS) ResponseCapacity() int { return o.maxResponseLength }

// transformSegment is the shared segment-transform primitive behind both
// OLA.TransformSegment and OLS's own IR-segment precomputation.
func transformSegment(plan *fftPlan, blockSize int, ir *Response, i int, out []complex64, scratch []float32) {
	start := i * blockSize
	end := start + blockSize
	samples := ir.Samples()
	if start >= len(samples) {
		clear(scratch)
	} else {
		if end > len(samples) {
			end = len(samples)
		}
		copyAndPad(scratch[:blockSize], samples[start:end])
		clear(scratch[blockSize:])
	}
	if err := plan.forward(out, scratch); err != nil {
		clear(out)
	}
}
