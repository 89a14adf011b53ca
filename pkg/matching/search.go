package matching

import (
	"fmt"
	"iter"
	"slices"

	"github.com/operator-framework/homatch/internal/debruijn"
	"github.com/operator-framework/homatch/pkg/term"
)

// Solutions returns the lazy sequence of solutions of p. The search runs
// only while the caller pulls; stopping the iteration abandons it. Every
// solution is complete, free of variable capture, in named form, and
// distinct up to alpha-equivalence from the ones before it.
//
// Each call starts a new search, so the sequence can be iterated again.
func (p *Problem) Solutions() iter.Seq[*Solution] {
	return func(yield func(*Solution) bool) {
		var seen []*Solution
		proxy := p.Copy()
		proxy.encode()
		exhausted := proxy.allSolutions(newSolution(proxy), func(s *Solution) bool {
			if s.hasCapture() {
				proxy.trace(StepCapture, "that solution would include variable capture", s)
				return true
			}
			decoded := s.decode()
			if slices.ContainsFunc(seen, decoded.Equal) {
				proxy.trace(StepRepeat, "that solution is a repeat", decoded)
				return true
			}
			seen = append(seen, decoded)
			proxy.trace(StepSolution, fmt.Sprintf("solution %d", len(seen)), decoded)
			return yield(decoded)
		})
		if exhausted && proxy.tracing() {
			// the proxy has been consumed, so no constraints are reported
			proxy.tracer.Trace(position{step: StepExhausted, message: fmt.Sprintf("final solution set has %d solutions", len(seen))})
		}
	}
}

// allSolutions resolves the first constraint of p and recurs on what
// remains, passing each complete solution to yield. It consumes p. The
// result is false once yield asked to stop.
func (p *Problem) allSolutions(soFar *Solution, yield func(*Solution) bool) bool {
	if p.stream == nil {
		seeds := make([]*term.Term, 0, 2*len(p.constraints))
		for _, c := range p.constraints {
			seeds = append(seeds, c.pattern, c.expression)
		}
		stream := NewSymbolStream(seeds...)
		p.stream = &stream
	}

	if p.Empty() {
		return yield(soFar)
	}
	if p.tracing() {
		p.trace(StepSolve, fmt.Sprintf("solve %s", p), soFar)
	}

	constraint := p.constraints[0]
	switch complexity := constraint.complexity; {
	case complexity == ComplexityClash:
		return true

	case complexity == ComplexitySatisfied:
		p.RemoveAt(0)
		return p.allSolutions(soFar, yield)

	case complexity == ComplexityInstantiation:
		sub, ok := instantiation(constraint)
		if !ok {
			return true
		}
		extended, ok := soFar.plus(sub)
		if !ok {
			return true
		}
		p.RemoveAt(0)
		p.Substitute(sub)
		return p.allSolutions(extended, yield)

	case complexity == ComplexityDecomposition:
		return p.decompose(constraint, soFar, yield)

	case complexity >= ComplexityConstantEFA:
		return p.expressionFunctionApplication(constraint, soFar, yield)
	}
	panic(fmt.Errorf("%w: invalid constraint complexity %d", ErrInternal, constraint.complexity))
}

// decompose replaces the constraint by one constraint per child position.
// When the expression is a binding and the pattern is not, the body's
// indices are lowered on the way in, to account for the binder being taken
// apart, and raised again in the values found for the pattern's
// metavariables.
func (p *Problem) decompose(constraint *Constraint, soFar *Solution, yield func(*Solution) bool) bool {
	p.RemoveAt(0)
	children := constraint.Children()
	mustAdjust := term.IsBinding(constraint.expression) && !term.IsBinding(constraint.pattern)
	var adjusted []string
	if mustAdjust {
		body := children[1]
		children[1] = body.with(body.pattern, debruijn.AdjustIndices(body.expression, -1, 0))
		adjusted = term.Metavariables(body.pattern)
	}
	for _, c := range children {
		p.insert(c)
	}
	return p.allSolutions(soFar, func(s *Solution) bool {
		if mustAdjust {
			s = s.adjusted(adjusted, 1)
		}
		return yield(s)
	})
}

// expressionFunctionApplication branches over the candidate functions for
// the head of an expression function application: the constant function,
// then each viable projection, then an imitation of the expression.
func (p *Problem) expressionFunctionApplication(constraint *Constraint, soFar *Solution, yield func(*Solution) bool) bool {
	head := constraint.pattern.Child(1)
	args := constraint.pattern.Children()[2:]
	expr := constraint.expression
	if !head.IsMetavariable() {
		panic(fmt.Errorf("%w: invalid head of expression function application %s", ErrInternal, constraint.pattern))
	}
	if len(args) == 0 {
		panic(fmt.Errorf("%w: empty argument list in expression function application %s", ErrInternal, constraint.pattern))
	}

	// The constraint stays in the copy: once head is replaced and the
	// pattern beta-reduced, the search continues matching it. The
	// metavariables an imitation applies are recorded so that their values
	// can later be composed into the value of head.
	try := func(ef *term.Term, imitated ...string) bool {
		sub := Substitution{metavariable: head.Text(), value: ef}
		if p.tracing() {
			p.trace(StepBranch, fmt.Sprintf("try %s", sub), soFar)
		}
		extended, ok := soFar.plus(sub)
		if !ok {
			return true
		}
		if len(imitated) > 0 {
			extended = extended.imitating(head.Text(), imitated, imitationDepth(expr), len(args))
		}
		branch := p.AfterSubstituting(sub)
		branch.betaReduce()
		return branch.allSolutions(extended, func(s *Solution) bool {
			return yield(s.restricted())
		})
	}

	if !try(constantEF(p.stream.NextN(len(args)), expr)) {
		return false
	}
	if constraint.CanBeOnlyConstant() {
		return true
	}

	for i := range args {
		if constraint.CanBeProjection(i) {
			if !try(projectionEF(p.stream.NextN(len(args)), i)) {
				return false
			}
		}
	}

	if expr.NumChildren() == 0 {
		return true
	}

	// A single ground argument can be abstracted directly: enumerate the
	// non-empty subsets of its occurrences in the expression instead of
	// imitating the expression one child at a time.
	if len(args) == 1 && !term.ContainsMetavariable(args[0]) && !debruijn.Equal(args[0], expr) {
		paths := debruijn.Occurrences(args[0], expr)
		param := p.stream.Next()
		chosen := make([]bool, len(paths))
		for slices.Contains(chosen, false) {
			nextSubset(chosen)
			if !try(subsetEF(param, expr, paths, chosen)) {
				return false
			}
		}
		return true
	}

	params := p.stream.NextN(len(args))
	metavariables := p.stream.NextN(expr.NumChildren())
	return try(applicationEF(params, metavariables, expr), metavariables...)
}

func (p *Problem) tracing() bool {
	if p.tracer == nil {
		return false
	}
	_, silent := p.tracer.(DefaultTracer)
	return !silent
}

func (p *Problem) trace(step Step, message string, partial *Solution) {
	if !p.tracing() {
		return
	}
	p.tracer.Trace(position{step: step, message: message, constraints: p.Constraints(), partial: partial})
}

// FirstSolution computes the first solution of p, if there is one. Every
// call searches anew.
func (p *Problem) FirstSolution() (*Solution, bool) {
	for s := range p.Solutions() {
		return s, true
	}
	return nil, false
}

func (p *Problem) IsSolvable() bool {
	_, ok := p.FirstSolution()
	return ok
}

// NumSolutions runs the full search and counts the solutions.
func (p *Problem) NumSolutions() int {
	n := 0
	for range p.Solutions() {
		n++
	}
	return n
}

// AllSolutions collects the full solution sequence.
func (p *Problem) AllSolutions() []*Solution {
	return slices.Collect(p.Solutions())
}

// SolutionIterator pulls solutions one at a time. Stop must be called if
// the iterator is abandoned before Next reports false.
type SolutionIterator struct {
	next func() (*Solution, bool)
	stop func()
}

func (p *Problem) Iterator() *SolutionIterator {
	next, stop := iter.Pull(p.Solutions())
	return &SolutionIterator{next: next, stop: stop}
}

func (it *SolutionIterator) Next() (*Solution, bool) {
	return it.next()
}

func (it *SolutionIterator) Stop() {
	it.stop()
}
