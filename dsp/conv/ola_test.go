package conv

import "testing"

func deltaResponse(n int) []float32 {
	ir := make([]float32, n)
	ir[0] = 1
	return ir
}

func TestOLADeltaIsPassthrough(t *testing.T) {
	o, err := NewOLA(deltaResponse(256), 64, 256)
	if err != nil {
		t.Fatalf("NewOLA: %v", err)
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

func TestOLABlockSizeDecoupling(t *testing.T) {
	ir := make([]float32, 128)
	ir[0], ir[1], ir[10] = 0.5, 0.25, 0.1

	input := make([]float32, 512)
	for i := range input {
		input[i] = float32(i%5) - 2
	}

	oWhole, err := NewOLA(ir, 64, 128)
	if err != nil {
		t.Fatalf("NewOLA: %v", err)
	}
	whole := make([]float32, len(input))
	if err := oWhole.Process(input, whole); err != nil {
		t.Fatalf("Process whole: %v", err)
	}

	oChunked, err := NewOLA(ir, 64, 128)
	if err != nil {
		t.Fatalf("NewOLA: %v", err)
	}
	chunked := make([]float32, len(input))
	for pos := 0; pos < len(input); {
		n := 17
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
			t.Fatalf("index %d: whole=%v chunked=%v (arbitrary caller block size must not change output)", i, whole[i], chunked[i])
		}
	}
}

func TestOLAUpdateRejectsOversizedResponse(t *testing.T) {
	o, err := NewOLA(deltaResponse(64), 64, 64)
	if err != nil {
		t.Fatalf("NewOLA: %v", err)
	}
	if err := o.Update(make([]float32, 65)); err != ErrResponseTooLong {
		t.Fatalf("Update: got %v, want ErrResponseTooLong", err)
	}
}

func TestOLASilentWhenEmpty(t *testing.T) {
	o, err := NewOLA(nil, 64, 128)
	if err != nil {
		t.Fatalf("NewOLA: %v", err)
	}
	input := make([]float32, 64)
	for i := range input {
		input[i] = 1
	}
	output := make([]float32, 64)
	if err := o.Process(input, output); err != nil {
		t.Fatalf("Process: %v", err)
	}
	for i, v := range output {
		if v != 0 {
			t.Fatalf("index %d: got %v, want 0 with no active response", i, v)
		}
	}
}
