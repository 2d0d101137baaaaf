package conv

// Stepwise is the stepwise segment-replacement update strategy (spec.md
// §4.5). It owns a single OLA engine and replaces exactly one IR segment
// spectrum per processed block, spreading a response change over
// activeSegCount blocks rather than crossfading two parallel signal paths.
// A response arriving mid-switch is held in a single pending slot.
type Stepwise struct {
	engine *OLA

	storedResponse *Response
	nextResponse   *Response

	segmentToLoad   int
	switching       bool
	responsePending bool
}

var _ Convolver = (*Stepwise)(nil)

// NewStepwise constructs a Stepwise updater around a freshly built OLA
// engine holding ir.
func NewStepwise(ir []float32, maxBlockSize, maxResponseLength int) (*Stepwise, error) {
	engine, err := NewOLA(ir, maxBlockSize, maxResponseLength)
	if err != nil {
		return nil, err
	}

	stored, err := NewResponseFrom(ir, maxResponseLength)
	if err != nil {
		return nil, err
	}

	return &Stepwise{
		engine:         engine,
		storedResponse: stored,
		nextResponse:   NewResponse(maxResponseLength),
	}, nil
}

// Update installs ir. If no switch is in progress, ir becomes the target of
// a new segment-by-segment replacement starting on the next processed
// block. If a switch is already in progress, ir replaces the single
// pending slot and is picked up once the current switch finishes.
func (s *Stepwise) Update(ir []float32) error {
	if !s.switching {
		if err := s.storedResponse.Update(ir); err != nil {
			return err
		}
		s.switching = true
		s.responsePending = false
		return nil
	}

	if err := s.nextResponse.Update(ir); err != nil {
		return err
	}
	s.responsePending = true
	return nil
}

// Process implements Convolver.
func (s *Stepwise) Process(input, output []float32) error {
	if len(input) != len(output) || len(input) == 0 {
		return ErrLengthMismatch
	}

	processed := 0
	for processed < len(output) {
		processing := min(len(output)-processed, s.engine.BlockSize()-s.engine.InputBufferFill())

		if s.engine.InputBufferFill() == 0 {
			if !s.switching && s.responsePending {
				s.storedResponse = s.nextResponse.Clone()
				s.responsePending = false
				s.switching = true
			}

			if s.switching {
				s.engine.UpdateSegment(s.storedResponse, s.segmentToLoad)
				s.segmentToLoad++
				if s.segmentToLoad == s.engine.ActiveSegCount() {
					s.switching = false
					s.segmentToLoad = 0
				}
			}
		}

		if err := s.engine.Process(input[processed:processed+processing], output[processed:processed+processing]); err != nil {
			return err
		}
		processed += processing
	}
	return nil
}

// Reset clears the inner engine's transient state. An in-progress segment
// switch is left untouched: Reset is for overlap/accumulation state, not
// the IR transition itself.
func (s *Stepwise) Reset() { s.engine.Reset() }

// BlockSize returns the inner engine's internal partition size.
func (s *Stepwise) BlockSize() int { return s.engine.BlockSize() }

// ResponseCapacity returns the fixed impulse-response capacity.
func (s *Stepwise) ResponseCapacity() int { return s.engine.ResponseCapacity() }
