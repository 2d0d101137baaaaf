package conv

// FadedStepwise is the faded stepwise segment-replacement update strategy
// (spec.md §4.6): a refinement of Stepwise that blends each replaced
// segment's spectrum from its old value toward its new one over fadeSteps
// blocks, instead of snapping it in one step. The blend is computed once
// per active segment, directly in the frequency domain via
// [OLA.MixToSegment], rather than remixing and retransforming the full
// time-domain response on every block.
type FadedStepwise struct {
	engine    *OLA
	blockSize int

	currentResponse *Response
	nextResponse    *Response
	queuedResponse  *Response

	currentSegments [][]complex64 // spectra of currentResponse's segments
	nextSegments    [][]complex64 // spectra of nextResponse's segments

	transitionSamples int
	fadeSteps         int
	transitionCounter int
	switching         bool
	responsePending   bool
}

var _ Convolver = (*FadedStepwise)(nil)

// NewFadedStepwise constructs a FadedStepwise updater. transitionSamples
// sets the total duration of a full response swap; it must be at least
// maxResponseLength, returning ErrInvalidTransition otherwise, since a
// shorter transition cannot fully phase out a response of that length.
func NewFadedStepwise(ir []float32, maxBlockSize, maxResponseLength, transitionSamples int) (*FadedStepwise, error) {
	if transitionSamples < maxResponseLength {
		return nil, ErrInvalidTransition
	}

	engine, err := NewOLA(ir, maxBlockSize, maxResponseLength)
	if err != nil {
		return nil, err
	}
	blockSize := engine.BlockSize()
	segCount := ceilDiv(maxResponseLength, blockSize)

	current, err := NewResponseFrom(ir, maxResponseLength)
	if err != nil {
		return nil, err
	}

	f := &FadedStepwise{
		engine:            engine,
		blockSize:         blockSize,
		currentResponse:   current,
		nextResponse:      NewResponse(maxResponseLength),
		queuedResponse:    NewResponse(maxResponseLength),
		currentSegments:   makeComplexMatrix(segCount, blockSize+1),
		nextSegments:      makeComplexMatrix(segCount, blockSize+1),
		transitionSamples: transitionSamples,
	}

	for i := range f.currentSegments {
		f.engine.TransformSegment(f.currentResponse, i, f.currentSegments[i])
		f.engine.TransformSegment(f.nextResponse, i, f.nextSegments[i])
	}
	return f, nil
}

// setNextResponse installs ir as the next response and recomputes every
// segment spectrum in nextSegments from it.
func (f *FadedStepwise) setNextResponse(ir []float32) error {
	if err := f.nextResponse.Update(ir); err != nil {
		return err
	}
	for i := range f.nextSegments {
		f.engine.TransformSegment(f.nextResponse, i, f.nextSegments[i])
	}
	return nil
}

// initiateSwitch starts a new transition toward the already-installed
// nextResponse, sizing fadeSteps so the combined hold-plus-fade duration
// matches transitionSamples regardless of how long either response is.
func (f *FadedStepwise) initiateSwitch() {
	f.switching = true
	f.responsePending = false

	maxEffective := f.currentResponse.EffectiveLength()
	if f.nextResponse.EffectiveLength() > maxEffective {
		maxEffective = f.nextResponse.EffectiveLength()
	}
	fadeSamples := f.transitionSamples - maxEffective
	if fadeSamples < 0 {
		fadeSamples = 0
	}
	f.fadeSteps = fadeSamples / f.blockSize
}

// Update installs ir. If idle, ir becomes the next response and a new
// transition starts immediately. If a transition is in flight, ir replaces
// the single pending slot and is picked up once the current one finishes.
func (f *FadedStepwise) Update(ir []float32) error {
	if !f.switching {
		if err := f.setNextResponse(ir); err != nil {
			return err
		}
		f.initiateSwitch()
		return nil
	}

	if err := f.queuedResponse.Update(ir); err != nil {
		return err
	}
	f.responsePending = true
	return nil
}

// Process implements Convolver.
func (f *FadedStepwise) Process(input, output []float32) error {
	if len(input) != len(output) || len(input) == 0 {
		return ErrLengthMismatch
	}

	processed := 0
	for processed < len(output) {
		processing := min(len(output)-processed, f.blockSize-f.engine.InputBufferFill())

		if f.engine.InputBufferFill() == 0 {
			if !f.switching && f.responsePending {
				pending := f.queuedResponse.Samples()[:f.queuedResponse.EffectiveLength()]
				if err := f.setNextResponse(pending); err != nil {
					return err
				}
				f.initiateSwitch()
			}

			if f.switching {
				activeSegCount := f.engine.ActiveSegCount()
				weight := float32(0)
				for i := 0; i < activeSegCount; i++ {
					transitionIndex := f.transitionCounter + 1 - i
					if f.fadeSteps == 0 {
						weight = 1
					} else {
						w := float32(transitionIndex) / float32(f.fadeSteps)
						weight = min(max(w, 0), 1)
					}
					f.engine.MixToSegment(f.currentSegments, f.nextSegments, weight, i)
				}
				f.transitionCounter++

				if weight == 1 {
					f.currentResponse = f.nextResponse.Clone()
					for i := range f.currentSegments {
						copy(f.currentSegments[i], f.nextSegments[i])
					}
					f.switching = false
					f.transitionCounter = 0
				}
			}
		}

		if err := f.engine.Process(input[processed:processed+processing], output[processed:processed+processing]); err != nil {
			return err
		}
		processed += processing
	}
	return nil
}

// Reset clears the inner engine's transient state. An in-progress
// transition is left untouched.
func (f *FadedStepwise) Reset() { f.engine.Reset() }

// BlockSize returns the inner engine's internal partition size.
func (f *FadedStepwise) BlockSize() int { return f.engine.BlockSize() }

// ResponseCapacity returns the fixed impulse-response capacity.
func (f *FadedStepwise) ResponseCapacity() int { return f.engine.ResponseCapacity() }
