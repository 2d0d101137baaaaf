package conv

import "fmt"

// OLA is the overlap-add partitioned frequency-domain convolver (spec's
// §4.1 OLA formulation). It maintains a ring of input spectra rotated
// backward by one slot per block and a B-sample overlap buffer carried
// between blocks.
//
// OLA is the preferred inner engine for update strategies because it
// exposes native per-segment spectral writes through [SegmentMutator].
type OLA struct {
	maxResponseLength int // validation ceiling for Update/construction
	blockSize         int // B, power of two
	segCount          int // S, total segment slots
	activeSegCount    int // active segments in the currently installed response
	specLen           int // B+1

	response *Response // capacity = segCount*blockSize

	segments   [][]complex64 // ring of input spectra, S x specLen
	segmentsIR [][]complex64 // IR segment spectra, S x specLen

	plan *fftPlan

	fftBuffer     []float32 // 2B scratch, shared by forward/inverse calls
	preMultiplied []complex64
	conv          []complex64
	overlap       []float32 // B

	current         int // ring head, backward-rotating
	inputBuffer     []float32
	inputBufferFill int
}

var (
	_ Convolver      = (*OLA)(nil)
	_ SegmentMutator = (*OLA)(nil)
)

// NewOLA constructs an OLA convolver. maxBlockSize is rounded up to the next
// power of two; maxResponseLength fixes the IR capacity. Returns
// ErrResponseTooLong if ir exceeds maxResponseLength, ErrInvalidBlockSize if
// maxBlockSize is not positive.
func NewOLA(ir []float32, maxBlockSize, maxResponseLength int) (*OLA, error) {
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

	o := &OLA{
		maxResponseLength: maxResponseLength,
		blockSize:         blockSize,
		segCount:          segCount,
		specLen:           specLen,
		response:          NewResponse(segCount * blockSize),
		segments:          makeComplexMatrix(segCount, specLen),
		segmentsIR:        makeComplexMatrix(segCount, specLen),
		plan:              plan,
		fftBuffer:         make([]float32, 2*blockSize),
		preMultiplied:     make([]complex64, specLen),
		conv:              make([]complex64, specLen),
		overlap:           make([]float32, blockSize),
		inputBuffer:       make([]float32, blockSize),
	}

	if err := o.Update(ir); err != nil {
		return nil, err
	}
	return o, nil
}

func makeComplexMatrix(rows, cols int) [][]complex64 {
	m := make([][]complex64, rows)
	for i := range m {
		m[i] = make([]complex64, cols)
	}
	return m
}

// Update recomputes every segment spectrum from ir and resets overlap,
// input accumulation, and the ring head. This is the abrupt, non-smooth
// swap spec.md documents as a building block for the four updaters, not a
// user-facing smooth-update operation.
func (o *OLA) Update(ir []float32) error {
	if len(ir) > o.maxResponseLength {
		return ErrResponseTooLong
	}
	if err := o.response.Update(ir); err != nil {
		return err
	}

	o.activeSegCount = o.response.ActiveSegments(o.blockSize)
	for i := 0; i < o.segCount; i++ {
		if i < o.activeSegCount {
			o.TransformSegment(o.response, i, o.segmentsIR[i])
		} else {
			clear(o.segmentsIR[i])
		}
	}

	for _, seg := range o.segments {
		clear(seg)
	}
	clear(o.overlap)
	clear(o.inputBuffer)
	o.inputBufferFill = 0
	o.current = 0
	clear(o.preMultiplied)
	clear(o.conv)

	return nil
}

// TransformSegment forward-transforms the i-th B-sample segment of ir
// (zero-padded to 2B) into out.
func (o *OLA) TransformSegment(ir *Response, i int, out []complex64) {
	transformSegment(o.plan, o.blockSize, ir, i, out, o.fftBuffer)
}

// UpdateSegment overwrites the convolver's own segment-i IR spectrum from
// ir's i-th segment.
func (o *OLA) UpdateSegment(ir *Response, i int) {
	o.TransformSegment(ir, i, o.segmentsIR[i])
}

// MixToSegment sets segment i's IR spectrum to a linear blend between two
// segment-spectrum banks of the convolver's own shape.
func (o *OLA) MixToSegment(from, to [][]complex64, weight float32, i int) {
	fromSeg, toSeg := from[i], to[i]
	dst := o.segmentsIR[i]
	w := complex(weight, 0)
	ow := complex(1-weight, 0)
	for k := range dst {
		dst[k] = ow*fromSeg[k] + w*toSeg[k]
	}
}

// InputBufferFill returns how many samples of the current internal block
// have been accumulated.
func (o *OLA) InputBufferFill() int { return o.inputBufferFill }

// ActiveSegCount returns the number of segments carrying nonzero content.
func (o *OLA) ActiveSegCount() int { return o.activeSegCount }

// Segments exposes the convolver's IR segment-spectrum bank. It shares the
// convolver's own backing storage; callers must not retain slices beyond a
// SetSegments swap. No update strategy in this package calls it.
func (o *OLA) Segments() [][]complex64 { return o.segmentsIR }

// SetSegments replaces the convolver's IR segment-spectrum bank by
// reference (a pointer/handle swap, not a copy). No update strategy in this
// package calls it: FadedStepwise copies its "next" bank into place instead.
func (o *OLA) SetSegments(segs [][]complex64) { o.segmentsIR = segs }

// Process implements Convolver.
func (o *OLA) Process(input, output []float32) error {
	if len(input) != len(output) || len(input) == 0 {
		return ErrLengthMismatch
	}
	if o.activeSegCount == 0 {
		clear(output)
		return nil
	}

	processed := 0
	for processed < len(output) {
		inputBufferWasEmpty := o.inputBufferFill == 0
		processing := min(len(output)-processed, o.blockSize-o.inputBufferFill)

		pos := o.inputBufferFill
		copy(o.inputBuffer[pos:pos+processing], input[processed:processed+processing])

		copyAndPad(o.fftBuffer[:o.blockSize], o.inputBuffer)
		clear(o.fftBuffer[o.blockSize:])
		if err := o.plan.forward(o.segments[o.current], o.fftBuffer); err != nil {
			clear(output)
			return err
		}

		if inputBufferWasEmpty {
			clear(o.preMultiplied)
			for i := 1; i < o.activeSegCount; i++ {
				audioIdx := (o.current + i) % o.activeSegCount
				complexMultiplyAccumulate(o.preMultiplied, o.segmentsIR[i], o.segments[audioIdx])
			}
		}
		copy(o.conv, o.preMultiplied)
		complexMultiplyAccumulate(o.conv, o.segments[o.current], o.segmentsIR[0])

		if err := o.plan.inverse(o.fftBuffer, o.conv); err != nil {
			clear(output)
			return err
		}

		for i := range processing {
			output[processed+i] = o.fftBuffer[pos+i] + o.overlap[pos+i]
		}

		o.inputBufferFill += processing
		if o.inputBufferFill == o.blockSize {
			clear(o.inputBuffer)
			o.inputBufferFill = 0
			copy(o.overlap, o.fftBuffer[o.blockSize:2*o.blockSize])

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

// Reset clears overlap, input-accumulation state and the ring of past input
// spectra without discarding the installed response.
func (o *OLA) Reset() {
	for _, seg := range o.segments {
		clear(seg)
	}
	clear(o.overlap)
	clear(o.inputBuffer)
	o.inputBufferFill = 0
	o.current = 0
}

// BlockSize returns B.
func (o *OLA) BlockSize() int { return o.blockSize }

// ResponseCapacity returns the validation ceiling fixed at construction.
func (o *OLA) ResponseCapacity() int { return o.maxResponseLength }

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		panic(fmt.Sprintf("conv: ceilDiv with non-positive divisor %d", b))
	}
	return (a + b - 1) / b
}
