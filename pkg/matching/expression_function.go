package matching

import (
	"github.com/operator-framework/homatch/internal/debruijn"
	"github.com/operator-framework/homatch/pkg/term"
)

// Expression functions are curried lambdas (λ (v1 , (λ (v2 , ... body))))
// built directly in index form: inside body, parameter i of n is the index
// n-1-i. The helpers below construct the candidate instantiations for the
// head of an expression function application.

// constantEF ignores all of its parameters and returns body.
func constantEF(params []string, body *term.Term) *term.Term {
	return term.Lambda(params, debruijn.AdjustIndices(body, len(params), 0))
}

// projectionEF returns its i-th parameter.
func projectionEF(params []string, i int) *term.Term {
	return term.Lambda(params, term.NewIndex(len(params)-1-i))
}

// applicationEF imitates the shape of expr: each child becomes the
// application of a fresh metavariable to all of the parameters. When expr
// is a binding its binder marker is copied rather than synthesized.
func applicationEF(params []string, metavariables []string, expr *term.Term) *term.Term {
	n := len(params)
	binding := term.IsBinding(expr)
	depth := imitationDepth(expr)
	children := make([]*term.Term, expr.NumChildren())
	for j := range children {
		if binding && j == 0 {
			children[j] = expr.Child(0)
			continue
		}
		args := make([]*term.Term, n)
		for i := range args {
			args[i] = term.NewIndex(n - 1 - i + depth)
		}
		children[j] = term.EFA(term.NewMetavariable(metavariables[j]), args...)
	}
	return term.Lambda(params, term.NewApplication(children...))
}

// imitationDepth counts the binders between expr and the applications
// applicationEF builds for its children.
func imitationDepth(expr *term.Term) int {
	if term.IsBinding(expr) {
		return 1
	}
	return 0
}

// subsetEF abstracts the occurrences of expr at the chosen paths into a
// single parameter.
func subsetEF(param string, expr *term.Term, paths [][]int, chosen []bool) *term.Term {
	body := debruijn.AdjustIndices(expr, 1, 0)
	for i, path := range paths {
		if chosen[i] {
			body = term.Replace(body, path, term.NewIndex(debruijn.BindingDepth(expr, path)))
		}
	}
	return term.Lambda([]string{param}, body)
}

// nextSubset advances the bit vector like a binary counter whose least
// significant bit is last.
func nextSubset(bits []bool) {
	for i := len(bits) - 1; i >= 0; i-- {
		bits[i] = !bits[i]
		if bits[i] {
			return
		}
	}
}

// Apply applies the expression function ef, in named form, to args and
// returns the beta-reduced result in named form.
func Apply(ef *term.Term, args ...*term.Term) *term.Term {
	encoded := make([]*term.Term, len(args))
	for i, a := range args {
		encoded[i] = debruijn.Encode(a)
	}
	return debruijn.Decode(debruijn.Normalize(term.EFA(debruijn.Encode(ef), encoded...)))
}

// IsExpressionFunction reports whether t is a lambda.
func IsExpressionFunction(t *term.Term) bool {
	return term.IsLambda(t)
}
