// Package attention blends competing rule weights with a softmax.
package attention

import "math"

// Softmax normalises scores into non-negative shares that sum to 1.
// The maximum score is subtracted before exponentiating, so large inputs
// do not overflow and a constant shift of every score leaves the output
// unchanged. Empty input yields empty output.
func Softmax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	maxVal := scores[0]
	for _, s := range scores[1:] {
		if s > maxVal {
			maxVal = s
		}
	}

	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxVal)
		sum += out[i]
	}
	// sum >= 1: the max element contributes exp(0).
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Blend treats weights as attention scores and returns the share-weighted
// sum of the weights themselves: sum(softmax(w)_i * w_i).
// A single weight passes through unchanged.
func Blend(weights []float64) float64 {
	switch len(weights) {
	case 0:
		return 0
	case 1:
		return weights[0]
	}

	var total float64
	for i, share := range Softmax(weights) {
		total += share * weights[i]
	}
	return total
}
