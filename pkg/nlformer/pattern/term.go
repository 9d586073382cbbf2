package pattern

// Sigil marks a variable token, e.g. "?x".
const Sigil = '?'

// Kind distinguishes variables from constants.
type Kind uint8

const (
	Constant Kind = iota
	Variable
)

func (k Kind) String() string {
	if k == Variable {
		return "variable"
	}
	return "constant"
}

// Term is a single pattern argument. The kind is decided once, when the
// term is parsed, so matching never has to sniff the sigil again.
type Term struct {
	Kind  Kind
	Value string // variables keep their sigil: "?x"
}

// IsVariable reports whether tok is a variable token. A lone "?" is a
// constant.
func IsVariable(tok string) bool {
	return len(tok) > 1 && tok[0] == Sigil
}

// ParseTerm classifies a raw token.
func ParseTerm(tok string) Term {
	if IsVariable(tok) {
		return Term{Kind: Variable, Value: tok}
	}
	return Term{Kind: Constant, Value: tok}
}

// Var builds a variable term; the sigil is added when missing. Var("")
// yields the lone sigil, which Validate rejects.
func Var(name string) Term {
	if len(name) == 0 || name[0] != Sigil {
		name = string(Sigil) + name
	}
	return Term{Kind: Variable, Value: name}
}

// Const builds a constant term. A value that reads as a variable fails
// Validate.
func Const(value string) Term {
	return Term{Kind: Constant, Value: value}
}

func (t Term) IsVariable() bool { return t.Kind == Variable }

func (t Term) String() string { return t.Value }
