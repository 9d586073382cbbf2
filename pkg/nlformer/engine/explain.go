package engine

import (
	"fmt"
	"strings"

	"github.com/cognicore/nlformer/pkg/nlformer/attention"
)

// Explain generates a human-readable account of how a result was derived:
// every contributing rule activation with its raw weight and attention share.
func Explain(r Result) string {
	if len(r.Support) == 0 {
		return fmt.Sprintf("%s has no supporting rules", r.Consequent)
	}

	weights := make([]float64, len(r.Support))
	for i, act := range r.Support {
		weights[i] = act.Weight
	}
	shares := attention.Softmax(weights)

	var b strings.Builder
	fmt.Fprintf(&b, "%s = %.4f (%d activation(s), blended per %s)\n",
		r.Consequent, r.Weight, len(r.Support), r.Scope)
	for i, act := range r.Support {
		fmt.Fprintf(&b, "  %d. rule #%d on %s [layer %d]: weight %.4f, share %.4f\n",
			i+1, act.RuleID, act.Fact, act.Layer, act.Weight, shares[i])
	}
	return b.String()
}
