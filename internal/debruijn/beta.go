package debruijn

import (
	"github.com/operator-framework/homatch/pkg/term"
)

// Substitute replaces index j of t with s, shifting s as the walk enters
// bindings.
func Substitute(t *term.Term, j int, s *term.Term) *term.Term {
	return substitute(t, j, s, 0)
}

func substitute(t *term.Term, j int, s *term.Term, depth int) *term.Term {
	switch t.Kind() {
	case term.KindIndex:
		if t.Index() == j+depth {
			return AdjustIndices(s, depth, 0)
		}
		return t
	case term.KindApplication:
		inner := depth
		if term.IsBinding(t) {
			inner++
		}
		children := t.Children()
		for i, c := range children {
			children[i] = substitute(c, j, s, inner)
		}
		return term.NewApplication(children...)
	}
	return t
}

// IsRedex reports whether t applies a lambda to at least one argument.
func IsRedex(t *term.Term) bool {
	return term.IsEFA(t) && t.NumChildren() >= 3 && term.IsLambda(t.Child(1))
}

// BetaReduce performs one reduction step on the redex t, consuming the
// first argument: (@ (λ (v , body)) a rest...) becomes body[v:=a] applied
// to rest. Terms that are not redexes are returned unchanged.
func BetaReduce(t *term.Term) *term.Term {
	if !IsRedex(t) {
		return t
	}
	body := t.Child(1).Child(1).Child(1)
	arg := t.Child(2)
	reduced := AdjustIndices(Substitute(body, 0, AdjustIndices(arg, 1, 0)), -1, 0)
	if t.NumChildren() == 3 {
		return reduced
	}
	return term.EFA(reduced, t.Children()[3:]...)
}

// Normalize reduces every redex in t until none remain. The result shares
// structure with t and is t itself when nothing was reduced.
func Normalize(t *term.Term) *term.Term {
	if !t.IsApplication() {
		return t
	}
	var children []*term.Term
	for i := 0; i < t.NumChildren(); i++ {
		c := t.Child(i)
		n := Normalize(c)
		if n != c && children == nil {
			children = t.Children()
		}
		if children != nil {
			children[i] = n
		}
	}
	result := t
	if children != nil {
		result = term.NewApplication(children...)
	}
	for IsRedex(result) {
		result = Normalize(BetaReduce(result))
	}
	return result
}
