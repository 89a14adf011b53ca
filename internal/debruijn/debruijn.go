// Package debruijn converts terms between named and de Bruijn index form
// and provides the index arithmetic, equality and beta reduction used while
// matching.
//
// In index form every symbol bound by an enclosing binding is replaced by
// an index counting the bindings between the occurrence and its binder,
// 0 being the innermost. Binder markers keep their names so that Decode can
// restore readable variables, but names never take part in comparisons.
package debruijn

import (
	"slices"

	"github.com/operator-framework/homatch/pkg/term"
)

// Encode returns the index form of t.
func Encode(t *term.Term) *term.Term {
	return encode(t, nil)
}

func encode(t *term.Term, scope []string) *term.Term {
	switch t.Kind() {
	case term.KindSymbol:
		for i := len(scope) - 1; i >= 0; i-- {
			if scope[i] == t.Text() {
				return term.NewIndex(len(scope) - 1 - i)
			}
		}
		return t
	case term.KindApplication:
		if term.IsBinding(t) {
			name := t.Child(0).Text()
			return term.NewApplication(t.Child(0), encode(t.Child(1), append(slices.Clip(scope), name)))
		}
		children := t.Children()
		for i, c := range children {
			children[i] = encode(c, scope)
		}
		return term.NewApplication(children...)
	}
	return t
}

// Decode returns the named form of t. Binders are renamed with a trailing
// prime when their name would capture a free symbol of t or shadow an
// enclosing binder that is still referenced.
func Decode(t *term.Term) *term.Term {
	free := map[string]struct{}{}
	term.Any(t, func(d *term.Term) bool {
		if d.IsSymbol() || d.IsMetavariable() {
			free[d.Text()] = struct{}{}
		}
		return false
	})
	return decode(t, nil, free)
}

func decode(t *term.Term, scope []string, free map[string]struct{}) *term.Term {
	switch t.Kind() {
	case term.KindIndex:
		if k := t.Index(); k >= 0 && k < len(scope) {
			return term.NewSymbol(scope[len(scope)-1-k])
		}
		return t
	case term.KindApplication:
		if term.IsBinding(t) {
			name := freshName(t.Child(0).Text(), scope, free)
			return term.Bind(name, decode(t.Child(1), append(slices.Clip(scope), name), free))
		}
		children := t.Children()
		for i, c := range children {
			children[i] = decode(c, scope, free)
		}
		return term.NewApplication(children...)
	}
	return t
}

func freshName(name string, scope []string, free map[string]struct{}) string {
	if name == "" {
		name = "v"
	}
	for {
		_, clash := free[name]
		if !clash && !slices.Contains(scope, name) {
			return name
		}
		name += "'"
	}
}

// AdjustIndices adds delta to every index of t that is free at or above
// cutoff, counting bindings entered on the way down.
func AdjustIndices(t *term.Term, delta, cutoff int) *term.Term {
	if delta == 0 {
		return t
	}
	return adjust(t, delta, cutoff)
}

func adjust(t *term.Term, delta, cutoff int) *term.Term {
	switch t.Kind() {
	case term.KindIndex:
		if t.Index() >= cutoff {
			return term.NewIndex(t.Index() + delta)
		}
		return t
	case term.KindApplication:
		inner := cutoff
		if term.IsBinding(t) {
			inner++
		}
		children := t.Children()
		for i, c := range children {
			children[i] = adjust(c, delta, inner)
		}
		return term.NewApplication(children...)
	}
	return t
}

// IsFree reports whether t is an index referring past depth enclosing
// bindings.
func IsFree(t *term.Term, depth int) bool {
	return t.IsIndex() && t.Index() >= depth
}

// HasFree reports whether some index in t is not bound within t.
func HasFree(t *term.Term) bool {
	return hasFree(t, 0)
}

func hasFree(t *term.Term, depth int) bool {
	if IsFree(t, depth) {
		return true
	}
	if !t.IsApplication() {
		return false
	}
	if term.IsBinding(t) {
		depth++
	}
	for _, c := range t.Children() {
		if hasFree(c, depth) {
			return true
		}
	}
	return false
}

// Equal compares terms in index form. Binder names are ignored, so two
// encoded terms are equal exactly when their named forms are
// alpha-equivalent.
func Equal(a, b *term.Term) bool {
	if a == b {
		return true
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case term.KindBinder:
		return true
	case term.KindIndex:
		return a.Index() == b.Index()
	case term.KindApplication:
		if a.NumChildren() != b.NumChildren() {
			return false
		}
		for i := 0; i < a.NumChildren(); i++ {
			if !Equal(a.Child(i), b.Child(i)) {
				return false
			}
		}
		return true
	}
	return a.Text() == b.Text()
}

// AlphaEqual compares two named terms up to renaming of bound variables.
func AlphaEqual(a, b *term.Term) bool {
	return Equal(Encode(a), Encode(b))
}

// Occurrences returns the paths of the maximal sub-terms of hay equal to
// needle. Needle is shifted up by one each time the walk enters a binding,
// so that free references keep pointing at the same binder.
func Occurrences(needle, hay *term.Term) [][]int {
	var paths [][]int
	var visit func(needle, t *term.Term, path []int)
	visit = func(needle, t *term.Term, path []int) {
		if Equal(needle, t) {
			paths = append(paths, slices.Clone(path))
			return
		}
		if term.IsBinding(t) {
			needle = AdjustIndices(needle, 1, 0)
		}
		for i := 0; i < t.NumChildren(); i++ {
			visit(needle, t.Child(i), append(path, i))
		}
	}
	visit(needle, hay, nil)
	return paths
}

// BindingDepth counts the bindings strictly above the node at path.
func BindingDepth(t *term.Term, path []int) int {
	depth := 0
	for _, i := range path {
		if term.IsBinding(t) {
			depth++
		}
		t = t.Child(i)
	}
	return depth
}
