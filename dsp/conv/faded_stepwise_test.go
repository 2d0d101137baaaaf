package conv

import "testing"

func TestFadedStepwisePassthroughBeforeUpdate(t *testing.T) {
	f, err := NewFadedStepwise(scaledDelta(128, 1), 32, 128, 288)
	if err != nil {
		t.Fatalf("NewFadedStepwise: %v", err)
	}

	input := make([]float32, 32)
	for i := range input {
		input[i] = float32(i%5) - 2
	}
	output := make([]float32, len(input))
	if err := f.Process(input, output); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i := range input {
		if diff := output[i] - input[i]; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("index %d: got %v, want %v", i, output[i], input[i])
		}
	}
}

// TestFadedStepwiseGradualTransition checks that, unlike Stepwise, the
// replaced segment's gain ramps in equal fadeSteps increments rather than
// snapping in one block. With a delta-at-0 response only segment 0 carries
// nonzero content, so its blended weight alone determines the audible gain:
// transitionSamples=288 and two 128-sample responses at blockSize=32 give
// fadeSteps=(288-128)/32=5, so segment 0 reaches weight 1.0 (full new
// gain) on the 5th switching block.
func TestFadedStepwiseGradualTransition(t *testing.T) {
	f, err := NewFadedStepwise(scaledDelta(128, 1), 32, 128, 288)
	if err != nil {
		t.Fatalf("NewFadedStepwise: %v", err)
	}
	if err := f.Update(scaledDelta(128, 2)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !f.switching {
		t.Fatalf("expected switching to start immediately")
	}
	if f.fadeSteps != 5 {
		t.Fatalf("fadeSteps = %d, want 5", f.fadeSteps)
	}

	input := make([]float32, 32)
	for i := range input {
		input[i] = 1
	}

	wantGains := []float32{1.2, 1.4, 1.6, 1.8, 2.0}
	for call, want := range wantGains {
		output := make([]float32, len(input))
		if err := f.Process(input, output); err != nil {
			t.Fatalf("Process call %d: %v", call, err)
		}
		for i, v := range output {
			if diff := v - want; diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("call %d index %d: got %v, want %v", call, i, v, want)
			}
		}
	}
}

func TestFadedStepwiseUpdateDuringSwitchIsQueued(t *testing.T) {
	f, err := NewFadedStepwise(scaledDelta(128, 1), 32, 128, 288)
	if err != nil {
		t.Fatalf("NewFadedStepwise: %v", err)
	}
	if err := f.Update(scaledDelta(128, 2)); err != nil {
		t.Fatalf("first Update: %v", err)
	}
	if err := f.Update(scaledDelta(128, 3)); err != nil {
		t.Fatalf("second Update: %v", err)
	}
	if !f.responsePending {
		t.Fatalf("second Update during an in-progress transition should be queued")
	}
}

func TestNewFadedStepwiseRejectsShortTransition(t *testing.T) {
	_, err := NewFadedStepwise(scaledDelta(128, 1), 32, 128, 64)
	if err != ErrInvalidTransition {
		t.Fatalf("got %v, want ErrInvalidTransition", err)
	}
}
