package conv

import "testing"

func TestOLSDeltaIsPassthrough(t *testing.T) {
	o, err := NewOLS(deltaResponse(256), 64, 256)
	if err != nil {
		t.Fatalf("NewOLS: %v", err)
	}

	input := make([]float32, 256)
	for i := range input {
		input[i] = float32(i%7) - 3
	}
	output := make([]float32, len(input))
	if err := o.Process(input, output); err != nil {
		t.Fatalf("Process: %v", err)
	}

	for i := range input {
		if diff := output[i] - input[i]; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("index %d: got %v, want %v", i, output[i], input[i])
		}
	}
}

// TestOLAEquivalentToOLS checks the testable property that OLA and OLS
// produce matching output (within tolerance) for the same response and
// input, despite using different internal windowing conventions.
func TestOLAEquivalentToOLS(t *testing.T) {
	ir := make([]float32, 192)
	for i := range ir {
		ir[i] = float32(1.0 / float64(i+1))
	}

	input := make([]float32, 640)
	for i := range input {
		input[i] = float32(i%11) - 5
	}

	ola, err := NewOLA(ir, 64, 192)
	if err != nil {
		t.Fatalf("NewOLA: %v", err)
	}
	ols, err := NewOLS(ir, 64, 192)
	if err != nil {
		t.Fatalf("NewOLS: %v", err)
	}

	olaOut := make([]float32, len(input))
	olsOut := make([]float32, len(input))
	if err := ola.Process(input, olaOut); err != nil {
		t.Fatalf("OLA Process: %v", err)
	}
	if err := ols.Process(input, olsOut); err != nil {
		t.Fatalf("OLS Process: %v", err)
	}

	for i := range olaOut {
		diff := olaOut[i] - olsOut[i]
		if diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("index %d: OLA=%v OLS=%v exceed tolerance", i, olaOut[i], olsOut[i])
		}
	}
}

func TestOLSBlockSizeDecoupling(t *testing.T) {
	ir := make([]float32, 128)
	ir[0], ir[1], ir[10] = 0.5, 0.25, 0.1

	input := make([]float32, 512)
	for i := range input {
		input[i] = float32(i%5) - 2
	}

	oWhole, err := NewOLS(ir, 64, 128)
	if err != nil {
		t.Fatalf("NewOLS: %v", err)
	}
	whole := make([]float32, len(input))
	if err := oWhole.Process(input, whole); err != nil {
		t.Fatalf("Process whole: %v", err)
	}

	oChunked, err := NewOLS(ir, 64, 128)
	if err != nil {
		t.Fatalf("NewOLS: %v", err)
	}
	chunked := make([]float32, len(input))
	for pos := 0; pos < len(input); {
		n := 23
		if pos+n > len(input) {
			n = len(input) - pos
		}
		if err := oChunked.Process(input[pos:pos+n], chunked[pos:pos+n]); err != nil {
			t.Fatalf("Process chunk at %d: %v", pos, err)
		}
		pos += n
	}

	for i := range whole {
		diff := whole[i] - chunked[i]
		if diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("index %d: whole=%v chunked=%v", i, whole[i], chunked[i])
		}
	}
}
