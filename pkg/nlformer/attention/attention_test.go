package attention

import (
	"math"
	"testing"
)

const tolerance = 1e-6

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestSoftmaxNormalization(t *testing.T) {
	inputs := [][]float64{
		{1, 2, 3},
		{-5, 0, 5},
		{0.1},
		{-1000, 1000},
		{3.5, -2.25, 0, 0, 7},
	}
	for _, in := range inputs {
		out := Softmax(in)
		if len(out) != len(in) {
			t.Fatalf("Softmax(%v): expected %d outputs, got %d", in, len(in), len(out))
		}
		if math.Abs(sum(out)-1) > tolerance {
			t.Errorf("Softmax(%v) sums to %v", in, sum(out))
		}
		for i, v := range out {
			if v < 0 || math.IsNaN(v) {
				t.Errorf("Softmax(%v)[%d] = %v, want finite non-negative", in, i, v)
			}
		}
	}
}

func TestSoftmaxShiftInvariance(t *testing.T) {
	base := []float64{0.5, -1.5, 2, 4}
	for _, c := range []float64{-100, -1, 3.7, 250} {
		shifted := make([]float64, len(base))
		for i, v := range base {
			shifted[i] = v + c
		}
		a, b := Softmax(base), Softmax(shifted)
		for i := range a {
			if math.Abs(a[i]-b[i]) > tolerance {
				t.Errorf("shift %v: index %d: %v vs %v", c, i, a[i], b[i])
			}
		}
	}
}

func TestSoftmaxTies(t *testing.T) {
	for i, v := range Softmax([]float64{5, 5, 5}) {
		if math.Abs(v-1.0/3.0) > tolerance {
			t.Errorf("Index %d: expected 1/3, got %v", i, v)
		}
	}
}

func TestSoftmaxStability(t *testing.T) {
	big := Softmax([]float64{100, 101, 102})
	small := Softmax([]float64{0, 1, 2})
	for i := range big {
		if math.IsNaN(big[i]) || math.IsInf(big[i], 0) {
			t.Fatalf("Overflow at index %d: %v", i, big[i])
		}
		if math.Abs(big[i]-small[i]) > tolerance {
			t.Errorf("Index %d: %v vs %v", i, big[i], small[i])
		}
	}
}

func TestSoftmaxOrderPreserving(t *testing.T) {
	out := Softmax([]float64{1, 3, 2})
	if !(out[1] > out[2] && out[2] > out[0]) {
		t.Errorf("Expected ordering preserved, got %v", out)
	}
}

func TestSoftmaxEmpty(t *testing.T) {
	out := Softmax(nil)
	if out == nil || len(out) != 0 {
		t.Errorf("Expected empty non-nil output, got %#v", out)
	}
}

func TestBlendSingle(t *testing.T) {
	if got := Blend([]float64{-0.7}); got != -0.7 {
		t.Errorf("Single weight should pass through, got %v", got)
	}
	if got := Blend(nil); got != 0 {
		t.Errorf("Empty blend should be 0, got %v", got)
	}
}

func TestBlendOpposingWeights(t *testing.T) {
	got := Blend([]float64{2, -2})
	if !(got > -2 && got < 2) {
		t.Fatalf("Blend should lie strictly between -2 and 2, got %v", got)
	}
	if math.Abs(got) < tolerance {
		t.Errorf("Blend should not cancel to 0, got %v", got)
	}
	want := 2 * math.Tanh(2)
	if math.Abs(got-want) > tolerance {
		t.Errorf("Blend([2, -2]) = %v, want %v", got, want)
	}
}

func TestBlendEqualWeights(t *testing.T) {
	if got := Blend([]float64{0.4, 0.4, 0.4}); math.Abs(got-0.4) > tolerance {
		t.Errorf("Equal weights should blend to themselves, got %v", got)
	}
}
