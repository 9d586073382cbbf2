package pattern

import (
	"fmt"

	"github.com/cognicore/nlformer/pkg/nlformer/internalerr"
)

// Substitution maps variable names to the constants they are bound to.
type Substitution map[string]string

// Bind records var=value. It returns false when var is already bound to a
// different constant.
func (s Substitution) Bind(variable, value string) bool {
	if bound, ok := s[variable]; ok {
		return bound == value
	}
	s[variable] = value
	return true
}

// Unify matches a ground fact against a rule antecedent. Variables only
// appear on the rule side, so there is no occurs-check and at most one
// substitution per pair. A mismatch is reported as ok=false, never as an
// error.
func Unify(fact, antecedent Pattern) (Substitution, bool) {
	if fact.Predicate != antecedent.Predicate || len(fact.Args) != len(antecedent.Args) {
		return nil, false
	}

	sub := make(Substitution, len(antecedent.Args))
	for i, ruleArg := range antecedent.Args {
		factArg := fact.Args[i]
		if factArg.IsVariable() {
			return nil, false
		}
		if ruleArg.IsVariable() {
			if !sub.Bind(ruleArg.Value, factArg.Value) {
				return nil, false // inconsistent binding
			}
			continue
		}
		if ruleArg.Value != factArg.Value {
			return nil, false
		}
	}
	return sub, true
}

// Ground replaces every variable in template with its binding.
// A missing binding means a rule slipped past load-time validation.
func Ground(template Pattern, sub Substitution) (Pattern, error) {
	out := Pattern{Predicate: template.Predicate, Args: make([]Term, len(template.Args))}
	for i, a := range template.Args {
		if !a.IsVariable() {
			out.Args[i] = a
			continue
		}
		v, ok := sub[a.Value]
		if !ok {
			return Pattern{}, fmt.Errorf("%w: %s: variable %s has no binding", internalerr.ErrUngroundedConsequent, template, a.Value)
		}
		out.Args[i] = Const(v)
	}
	return out, nil
}
