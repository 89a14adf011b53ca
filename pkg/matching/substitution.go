package matching

import (
	"fmt"

	"github.com/operator-framework/homatch/pkg/term"
)

// Substitution binds one metavariable to a replacement term.
type Substitution struct {
	metavariable string
	value        *term.Term
}

// NewSubstitution binds metavariable to value. The value may not mention
// the metavariable itself.
func NewSubstitution(metavariable, value *term.Term) (Substitution, error) {
	if metavariable == nil || !metavariable.IsMetavariable() {
		return Substitution{}, fmt.Errorf("%w: %v is not a metavariable", ErrInvalidArguments, metavariable)
	}
	if value == nil {
		return Substitution{}, fmt.Errorf("%w: missing value for %s", ErrInvalidArguments, metavariable)
	}
	if term.ContainsMetavariableNamed(value, metavariable.Text()) {
		return Substitution{}, fmt.Errorf("%w: %s occurs in its own value %s", ErrInvalidArguments, metavariable, value)
	}
	return Substitution{metavariable: metavariable.Text(), value: value}, nil
}

// instantiation builds the substitution resolving a constraint whose
// pattern is a lone metavariable.
func instantiation(c *Constraint) (Substitution, bool) {
	s, err := NewSubstitution(c.pattern, c.expression)
	return s, err == nil
}

func (s Substitution) Metavariable() string { return s.metavariable }
func (s Substitution) Value() *term.Term     { return s.value }

// ApplyTo replaces every occurrence of the metavariable in t.
func (s Substitution) ApplyTo(t *term.Term) *term.Term {
	return term.SubstituteMetavariable(t, s.metavariable, s.value)
}

func (s Substitution) String() string {
	return fmt.Sprintf("%s%s:=%s", s.metavariable, term.MetavariableSuffix, s.value)
}
