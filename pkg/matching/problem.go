package matching

import (
	"fmt"
	"slices"
	"strings"

	"github.com/operator-framework/homatch/internal/debruijn"
	"github.com/operator-framework/homatch/pkg/term"
)

// Problem is a set of constraints to be satisfied simultaneously. The
// constraints are kept in non-decreasing order of complexity, ties in
// insertion order, and never contain two equal constraints.
//
// Solving never modifies a Problem handed to a caller; the search works on
// private copies.
type Problem struct {
	constraints []*Constraint
	stream      *SymbolStream
	encoded     bool
	tracer      Tracer
}

type Option func(p *Problem) error

// WithPairs adds constraints built from a flat pattern, expression,
// pattern, expression, ... list.
func WithPairs(terms ...*term.Term) Option {
	return func(p *Problem) error {
		return p.AddPairs(terms...)
	}
}

func WithConstraints(constraints ...*Constraint) Option {
	return func(p *Problem) error {
		return p.Add(constraints...)
	}
}

// WithProblem adds every constraint of other.
func WithProblem(other *Problem) Option {
	return func(p *Problem) error {
		if other == nil {
			return fmt.Errorf("%w: nil problem", ErrInvalidArguments)
		}
		p.AddProblem(other)
		return nil
	}
}

// WithTracer reports the progress of every search over the problem to t.
// Tracing does not change the solutions produced.
func WithTracer(t Tracer) Option {
	return func(p *Problem) error {
		p.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(p *Problem) error {
		if p.tracer == nil {
			p.tracer = DefaultTracer{}
		}
		return nil
	},
}

func New(options ...Option) (*Problem, error) {
	p := &Problem{}
	for _, option := range append(options, defaults...) {
		if err := option(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add inserts constraints, skipping any already present.
func (p *Problem) Add(constraints ...*Constraint) error {
	for _, c := range constraints {
		if c == nil {
			return fmt.Errorf("%w: nil constraint", ErrInvalidArguments)
		}
	}
	for _, c := range constraints {
		p.insert(c)
	}
	return nil
}

// AddPairs builds constraints from a flat list of alternating patterns and
// expressions and adds them.
func (p *Problem) AddPairs(terms ...*term.Term) error {
	if len(terms)%2 != 0 {
		return fmt.Errorf("%w: %d terms do not form pattern/expression pairs", ErrInvalidArguments, len(terms))
	}
	constraints := make([]*Constraint, 0, len(terms)/2)
	for i := 0; i < len(terms); i += 2 {
		c, err := NewConstraint(terms[i], terms[i+1])
		if err != nil {
			return err
		}
		constraints = append(constraints, c)
	}
	return p.Add(constraints...)
}

func (p *Problem) AddProblem(other *Problem) {
	for _, c := range other.constraints {
		p.insert(c)
	}
}

func (p *Problem) insert(c *Constraint) {
	if slices.ContainsFunc(p.constraints, c.Equal) {
		return
	}
	i := slices.IndexFunc(p.constraints, func(already *Constraint) bool {
		return already.complexity > c.complexity
	})
	if i < 0 {
		i = len(p.constraints)
	}
	p.constraints = slices.Insert(p.constraints, i, c)
}

// Remove deletes the constraint equal to c, if present.
func (p *Problem) Remove(c *Constraint) {
	if i := slices.IndexFunc(p.constraints, c.Equal); i >= 0 {
		p.RemoveAt(i)
	}
}

// RemoveAt deletes the constraint at index i; out of range indices are
// ignored.
func (p *Problem) RemoveAt(i int) {
	if i >= 0 && i < len(p.constraints) {
		p.constraints = slices.Delete(p.constraints, i, i+1)
	}
}

// Plus returns a copy of p with constraints added.
func (p *Problem) Plus(constraints ...*Constraint) (*Problem, error) {
	result := p.Copy()
	if err := result.Add(constraints...); err != nil {
		return nil, err
	}
	return result, nil
}

// Without returns a copy of p with the constraint equal to c removed.
func (p *Problem) Without(c *Constraint) *Problem {
	result := p.Copy()
	result.Remove(c)
	return result
}

// WithoutAt returns a copy of p with the constraint at index i removed.
func (p *Problem) WithoutAt(i int) *Problem {
	result := p.Copy()
	result.RemoveAt(i)
	return result
}

// Copy returns a problem with the same constraints, symbol stream position
// and tracer. Constraints are immutable and shared.
func (p *Problem) Copy() *Problem {
	result := &Problem{
		constraints: slices.Clone(p.constraints),
		encoded:     p.encoded,
		tracer:      p.tracer,
	}
	if p.stream != nil {
		stream := *p.stream
		result.stream = &stream
	}
	return result
}

// Equal reports whether both problems hold the same set of constraints.
func (p *Problem) Equal(other *Problem) bool {
	if len(p.constraints) != len(other.constraints) {
		return false
	}
	for _, c := range p.constraints {
		if !slices.ContainsFunc(other.constraints, c.Equal) {
			return false
		}
	}
	return true
}

func (p *Problem) Len() int    { return len(p.constraints) }
func (p *Problem) Empty() bool { return len(p.constraints) == 0 }

// Constraints returns the constraints in solving order.
func (p *Problem) Constraints() []*Constraint {
	return slices.Clone(p.constraints)
}

// Substitute applies subs to every constraint whose pattern mentions one of
// their metavariables, replacing those constraints in place.
func (p *Problem) Substitute(subs ...Substitution) {
	mentions := func(c *Constraint) bool {
		return slices.ContainsFunc(subs, func(s Substitution) bool {
			return term.ContainsMetavariableNamed(c.pattern, s.metavariable)
		})
	}
	var replaced []*Constraint
	kept := p.constraints[:0:0]
	for _, c := range p.constraints {
		if mentions(c) {
			replaced = append(replaced, c)
		} else {
			kept = append(kept, c)
		}
	}
	if len(replaced) == 0 {
		return
	}
	p.constraints = kept
	for _, c := range replaced {
		pattern := c.pattern
		for _, s := range subs {
			pattern = s.ApplyTo(pattern)
		}
		p.insert(c.with(pattern, c.expression))
	}
}

// AfterSubstituting is Substitute applied to a copy of p.
func (p *Problem) AfterSubstituting(subs ...Substitution) *Problem {
	result := p.Copy()
	result.Substitute(subs...)
	return result
}

// betaReduce normalizes every pattern.
func (p *Problem) betaReduce() {
	for _, c := range slices.Clone(p.constraints) {
		reduced := debruijn.Normalize(c.pattern)
		if reduced != c.pattern {
			p.Remove(c)
			p.insert(c.with(reduced, c.expression))
		}
	}
}

// encode converts every constraint to index form.
func (p *Problem) encode() {
	constraints := p.constraints
	p.constraints = nil
	p.encoded = true
	for _, c := range constraints {
		p.insert(c.encode())
	}
}

func (p *Problem) String() string {
	lines := make([]string, len(p.constraints))
	for i, c := range p.constraints {
		lines[i] = c.String()
		if p.encoded && !c.pattern.IsMetavariable() {
			lines[i] += fmt.Sprintf("\n\t   (%s,%s)", debruijn.Decode(c.pattern), debruijn.Decode(c.expression))
		}
	}
	if len(lines) == 0 {
		return "{}"
	}
	return "{\n\t" + strings.Join(lines, "\n\t") + "\n}"
}
