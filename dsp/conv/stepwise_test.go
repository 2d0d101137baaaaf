package conv

import "testing"

func TestStepwisePassthroughBeforeUpdate(t *testing.T) {
	s, err := NewStepwise(scaledDelta(128, 1), 32, 128)
	if err != nil {
		t.Fatalf("NewStepwise: %v", err)
	}

	input := make([]float32, 32)
	for i := range input {
		input[i] = float32(i%5) - 2
	}
	output := make([]float32, len(input))
	if err := s.Process(input, output); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range input {
		if diff := output[i] - input[i]; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("index %d: got %v, want %v", i, output[i], input[i])
		}
	}
}

func TestStepwiseCompletesAfterActiveSegCountBlocks(t *testing.T) {
	s, err := NewStepwise(scaledDelta(128, 1), 32, 128)
	if err != nil {
		t.Fatalf("NewStepwise: %v", err)
	}
	if err := s.Update(scaledDelta(128, 2)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !s.switching {
		t.Fatalf("expected switching to start immediately")
	}

	activeSegCount := s.engine.ActiveSegCount()
	if activeSegCount <= 0 {
		t.Fatalf("expected a positive active segment count, got %d", activeSegCount)
	}

	input := make([]float32, 32)
	for i := range input {
		input[i] = 1
	}

	for block := 0; block < activeSegCount; block++ {
		output := make([]float32, len(input))
		if err := s.Process(input, output); err != nil {
			t.Fatalf("Process block %d: %v", block, err)
		}
		for i, v := range output {
			if diff := v - 2; diff > 1e-4 || diff < -1e-4 {
				t.Fatalf("block %d index %d: got %v, want 2 (replaced delta segment dominates output)", block, i, v)
			}
		}
	}
	if s.switching {
		t.Fatalf("expected switching to finish after %d blocks", activeSegCount)
	}
	if s.segmentToLoad != 0 {
		t.Fatalf("expected segmentToLoad reset to 0, got %d", s.segmentToLoad)
	}
}

func TestStepwiseUpdateDuringSwitchIsQueued(t *testing.T) {
	s, err := NewStepwise(scaledDelta(128, 1), 32, 128)
	if err != nil {
		t.Fatalf("NewStepwise: %v", err)
	}
	if err := s.Update(scaledDelta(128, 2)); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	if err := s.Update(scaledDelta(128, 3)); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if !s.responsePending {
		t.Fatalf("second Update during an in-progress switch should be queued")
	}

	input := make([]float32, 32)
	for i := range input {
		input[i] = 1
	}
	output := make([]float32, len(input))

	activeSegCount := s.engine.ActiveSegCount()
	for block := 0; block < activeSegCount; block++ {
		if err := s.Process(input, output); err != nil {
			t.Fatalf("Process block %d: %v", block, err)
		}
	}
	if !s.responsePending {
		t.Fatalf("expected the queued response to still be pending immediately after the first switch finishes")
	}

	// One more block lets Process observe switching==false and promote the
	// queued response at the top of the call.
	if err := s.Process(input, output); err != nil {
		t.Fatalf("Process promoting block: %v", err)
	}
	if s.responsePending {
		t.Fatalf("queued response should have been promoted once the first switch finished")
	}
	if !s.switching {
		t.Fatalf("expected the queued response to begin its own switch")
	}
}

// TestStepwiseBlockSizeDecoupling verifies that a segment-by-segment switch
// advances on internal engine block boundaries, not on Process call count:
// feeding the same switch through whole maxBlockSize chunks and through
// irregular, non-dividing chunks must settle on the same output.
func TestStepwiseBlockSizeDecoupling(t *testing.T) {
	const maxBlockSize = 32
	const maxResponseLength = 128

	input := make([]float32, 512)
	for i := range input {
		input[i] = float32(i%5) - 2
	}

	run := func(chunk int) []float32 {
		s, err := NewStepwise(scaledDelta(maxResponseLength, 1), maxBlockSize, maxResponseLength)
		if err != nil {
			t.Fatalf("NewStepwise: %v", err)
		}
		if err := s.Update(scaledDelta(maxResponseLength, 2)); err != nil {
			t.Fatalf("Update: %v", err)
		}

		out := make([]float32, len(input))
		for pos := 0; pos < len(input); {
			n := chunk
			if pos+n > len(input) {
				n = len(input) - pos
			}
			if err := s.Process(input[pos:pos+n], out[pos:pos+n]); err != nil {
				t.Fatalf("Process chunk at %d: %v", pos, err)
			}
			pos += n
		}
		if s.switching {
			t.Fatalf("expected the switch to have completed over %d samples", len(input))
		}
		return out
	}

	whole := run(maxBlockSize)
	chunked := run(17)

	for i := range whole {
		diff := whole[i] - chunked[i]
		if diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("index %d: whole=%v chunked=%v (caller block size must not change the segment switch)", i, whole[i], chunked[i])
		}
	}
}
