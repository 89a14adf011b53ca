package matching

import (
	"fmt"

	"github.com/operator-framework/homatch/internal/debruijn"
	"github.com/operator-framework/homatch/pkg/term"
)

// Complexity classes of a Constraint. The search always resolves the
// constraint with the lowest complexity first.
const (
	// ComplexityClash marks a constraint that can never be satisfied.
	ComplexityClash = 0
	// ComplexitySatisfied marks a pattern already equal to its expression.
	ComplexitySatisfied = 1
	// ComplexityInstantiation marks a pattern that is a lone metavariable.
	ComplexityInstantiation = 2
	// ComplexityDecomposition marks compound terms matched child by child.
	ComplexityDecomposition = 3
	// ComplexityConstantEFA marks an expression function application that
	// only a constant function can satisfy.
	ComplexityConstantEFA = 4
	// ComplexityEFA marks any other expression function application.
	ComplexityEFA = 5
)

// Constraint pairs a pattern, which may contain metavariables, with an
// expression, which may not. Constraints are immutable.
type Constraint struct {
	pattern    *term.Term
	expression *term.Term
	// encoded is set on constraints whose terms are in index form.
	encoded    bool
	complexity int
}

// NewConstraint validates and builds a constraint in named form.
func NewConstraint(pattern, expression *term.Term) (*Constraint, error) {
	if pattern == nil || expression == nil {
		return nil, fmt.Errorf("%w: missing pattern or expression", ErrInvalidConstraint)
	}
	if err := term.ValidateEFAs(pattern); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConstraint, err)
	}
	if term.ContainsMetavariable(expression) {
		return nil, fmt.Errorf("%w: expression %s contains a metavariable", ErrInvalidConstraint, expression)
	}
	return newConstraint(pattern, expression, false), nil
}

// MustConstraint is like NewConstraint but panics on error.
func MustConstraint(pattern, expression *term.Term) *Constraint {
	c, err := NewConstraint(pattern, expression)
	if err != nil {
		panic(err)
	}
	return c
}

func newConstraint(pattern, expression *term.Term, encoded bool) *Constraint {
	c := &Constraint{pattern: pattern, expression: expression, encoded: encoded}
	c.complexity = c.computeComplexity()
	return c
}

func (c *Constraint) Pattern() *term.Term    { return c.pattern }
func (c *Constraint) Expression() *term.Term { return c.expression }
func (c *Constraint) Complexity() int        { return c.complexity }

// with builds a constraint in the same form as c.
func (c *Constraint) with(pattern, expression *term.Term) *Constraint {
	return newConstraint(pattern, expression, c.encoded)
}

func (c *Constraint) encode() *Constraint {
	if c.encoded {
		return c
	}
	return newConstraint(debruijn.Encode(c.pattern), debruijn.Encode(c.expression), true)
}

func (c *Constraint) equalTerms(a, b *term.Term) bool {
	if c.encoded {
		return debruijn.Equal(a, b)
	}
	return debruijn.AlphaEqual(a, b)
}

func (c *Constraint) computeComplexity() int {
	p, e := c.pattern, c.expression
	if p.IsMetavariable() {
		return ComplexityInstantiation
	}
	if !term.ContainsMetavariable(p) {
		if c.equalTerms(p, e) {
			return ComplexitySatisfied
		}
		return ComplexityClash
	}
	if term.IsEFA(p) && p.Child(1).IsMetavariable() {
		if c.CanBeOnlyConstant() {
			return ComplexityConstantEFA
		}
		return ComplexityEFA
	}
	if p.IsApplication() && e.IsApplication() && p.NumChildren() == e.NumChildren() {
		return ComplexityDecomposition
	}
	return ComplexityClash
}

// Children pairs up the children of pattern and expression, position by
// position. Only meaningful for ComplexityDecomposition.
func (c *Constraint) Children() []*Constraint {
	children := make([]*Constraint, c.pattern.NumChildren())
	for i := range children {
		children[i] = c.with(c.pattern.Child(i), c.expression.Child(i))
	}
	return children
}

// Equal compares both sides of two constraints up to bound variable names.
func (c *Constraint) Equal(other *Constraint) bool {
	if c == other {
		return true
	}
	if c.encoded != other.encoded {
		return false
	}
	return c.equalTerms(c.pattern, other.pattern) && c.equalTerms(c.expression, other.expression)
}

// efaParts returns the arguments and expression of an expression function
// application constraint, in index form.
func (c *Constraint) efaParts() ([]*term.Term, *term.Term) {
	enc := c.encode()
	return enc.pattern.Children()[2:], enc.expression
}

// CanBeOnlyConstant reports whether the pattern, an expression function
// application, can only be satisfied by a constant function: no argument
// occurs anywhere in the expression.
func (c *Constraint) CanBeOnlyConstant() bool {
	args, expr := c.efaParts()
	for _, arg := range args {
		if term.ContainsMetavariable(arg) || len(debruijn.Occurrences(arg, expr)) > 0 {
			return false
		}
	}
	return true
}

// CanBeProjection reports whether projecting onto argument i could
// satisfy the pattern, which is when that argument could equal the whole
// expression.
func (c *Constraint) CanBeProjection(i int) bool {
	args, expr := c.efaParts()
	if i < 0 || i >= len(args) {
		return false
	}
	return term.ContainsMetavariable(args[i]) || debruijn.Equal(args[i], expr)
}

func (c *Constraint) String() string {
	return fmt.Sprintf("(%s,%s)", c.pattern, c.expression)
}
