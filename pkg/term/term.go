// Package term provides the tree-shaped symbolic terms matched by the
// matching engine: symbols, metavariables, binder markers, de Bruijn
// indices and applications.
package term

import "fmt"

// Kind distinguishes the variants of a Term.
type Kind uint8

const (
	// KindSymbol is an ordinary constant or free variable.
	KindSymbol Kind = iota
	// KindMetavariable is a placeholder to be instantiated by matching.
	KindMetavariable
	// KindBinder is the marker leading a binding application; it carries
	// the name of the variable it binds.
	KindBinder
	// KindIndex is a bound variable occurrence in de Bruijn form.
	KindIndex
	// KindApplication is an ordered list of child terms.
	KindApplication
)

func (k Kind) String() string {
	switch k {
	case KindSymbol:
		return "symbol"
	case KindMetavariable:
		return "metavariable"
	case KindBinder:
		return "binder"
	case KindIndex:
		return "index"
	case KindApplication:
		return "application"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	// EFAMarker heads an expression function application (@ head args...).
	EFAMarker = "@"
	// LambdaMarker heads an expression function (λ (v , body)).
	LambdaMarker = "λ"
)

// Term is an immutable tree. All operations that change a term return a
// new one; children may be shared between terms.
type Term struct {
	kind     Kind
	text     string
	index    int
	children []*Term
}

func NewSymbol(text string) *Term {
	return &Term{kind: KindSymbol, text: text}
}

func NewMetavariable(text string) *Term {
	return &Term{kind: KindMetavariable, text: text}
}

func NewBinder(name string) *Term {
	return &Term{kind: KindBinder, text: name}
}

func NewIndex(k int) *Term {
	return &Term{kind: KindIndex, index: k}
}

func NewApplication(children ...*Term) *Term {
	cs := make([]*Term, len(children))
	copy(cs, children)
	return &Term{kind: KindApplication, children: cs}
}

// Bind returns the binding of name over body.
func Bind(name string, body *Term) *Term {
	return NewApplication(NewBinder(name), body)
}

// Quantify returns op applied to nested bindings of names over body, so
// Quantify(∀, [x y], P) is (∀ x y , P).
func Quantify(op *Term, names []string, body *Term) *Term {
	return NewApplication(op, bindAll(names, body))
}

func bindAll(names []string, body *Term) *Term {
	result := body
	for i := len(names) - 1; i >= 0; i-- {
		result = Bind(names[i], result)
	}
	return result
}

// EFA returns the expression function application (@ head args...).
func EFA(head *Term, args ...*Term) *Term {
	return NewApplication(append([]*Term{NewSymbol(EFAMarker), head}, args...)...)
}

// Lambda returns the curried expression function λnames.body.
func Lambda(names []string, body *Term) *Term {
	result := body
	for i := len(names) - 1; i >= 0; i-- {
		result = NewApplication(NewSymbol(LambdaMarker), Bind(names[i], result))
	}
	return result
}

func (t *Term) Kind() Kind { return t.kind }

// Text is the symbol text, metavariable name or binder name.
func (t *Term) Text() string { return t.text }

// Index is the de Bruijn index of an index term.
func (t *Term) Index() int { return t.index }

func (t *Term) NumChildren() int { return len(t.children) }

func (t *Term) Child(i int) *Term { return t.children[i] }

// Children returns a copy of the child list.
func (t *Term) Children() []*Term {
	cs := make([]*Term, len(t.children))
	copy(cs, t.children)
	return cs
}

func (t *Term) IsSymbol() bool             { return t.kind == KindSymbol }
func (t *Term) IsMetavariable() bool       { return t.kind == KindMetavariable }
func (t *Term) IsBinder() bool             { return t.kind == KindBinder }
func (t *Term) IsIndex() bool              { return t.kind == KindIndex }
func (t *Term) IsApplication() bool        { return t.kind == KindApplication }
func (t *Term) IsLeaf() bool               { return t.kind != KindApplication }
func (t *Term) isSymbolText(s string) bool { return t.kind == KindSymbol && t.text == s }

// IsBinding reports whether t is a binding application (binder body).
func IsBinding(t *Term) bool {
	return t.kind == KindApplication && len(t.children) == 2 && t.children[0].kind == KindBinder
}

// IsEFA reports whether t has the shape (@ head args...). Argument count
// is not checked; see ValidateEFAs.
func IsEFA(t *Term) bool {
	return t.kind == KindApplication && len(t.children) >= 2 && t.children[0].isSymbolText(EFAMarker)
}

// IsLambda reports whether t has the shape (λ (v , body)).
func IsLambda(t *Term) bool {
	return t.kind == KindApplication && len(t.children) == 2 &&
		t.children[0].isSymbolText(LambdaMarker) && IsBinding(t.children[1])
}

// Arity counts the leading lambdas of t.
func Arity(t *Term) int {
	n := 0
	for IsLambda(t) {
		n++
		t = t.children[1].children[1]
	}
	return n
}

// Equal is exact structural equality: binder names and index values must
// match as well as shape and text.
func Equal(a, b *Term) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindIndex:
		return a.index == b.index
	case KindApplication:
		if len(a.children) != len(b.children) {
			return false
		}
		for i := range a.children {
			if !Equal(a.children[i], b.children[i]) {
				return false
			}
		}
		return true
	}
	return a.text == b.text
}

// Any reports whether pred holds for t or one of its descendants.
func Any(t *Term, pred func(*Term) bool) bool {
	if pred(t) {
		return true
	}
	for _, c := range t.children {
		if Any(c, pred) {
			return true
		}
	}
	return false
}

func ContainsMetavariable(t *Term) bool {
	return Any(t, (*Term).IsMetavariable)
}

// ContainsMetavariableNamed reports whether the metavariable name occurs in t.
func ContainsMetavariableNamed(t *Term, name string) bool {
	return Any(t, func(d *Term) bool { return d.kind == KindMetavariable && d.text == name })
}

// Metavariables lists the distinct metavariable names of t in first
// occurrence order.
func Metavariables(t *Term) []string {
	var names []string
	seen := map[string]struct{}{}
	walk(t, func(d *Term) {
		if d.kind != KindMetavariable {
			return
		}
		if _, ok := seen[d.text]; !ok {
			seen[d.text] = struct{}{}
			names = append(names, d.text)
		}
	})
	return names
}

// Symbols returns the set of texts used by symbols, metavariables and
// binders in t.
func Symbols(t *Term) map[string]struct{} {
	set := map[string]struct{}{}
	walk(t, func(d *Term) {
		if d.kind != KindApplication && d.kind != KindIndex {
			set[d.text] = struct{}{}
		}
	})
	return set
}

func walk(t *Term, fn func(*Term)) {
	fn(t)
	for _, c := range t.children {
		walk(c, fn)
	}
}

// At returns the descendant at path, a list of child positions.
func At(t *Term, path []int) *Term {
	for _, i := range path {
		t = t.children[i]
	}
	return t
}

// Replace returns a copy of t with the descendant at path replaced.
func Replace(t *Term, path []int, with *Term) *Term {
	if len(path) == 0 {
		return with
	}
	cs := t.Children()
	cs[path[0]] = Replace(cs[path[0]], path[1:], with)
	return &Term{kind: t.kind, text: t.text, index: t.index, children: cs}
}

// SubstituteMetavariable returns t with every occurrence of the metavariable
// name replaced by value. No index adjustment is made: a metavariable's value
// is relative to the context in which the metavariable occurs.
func SubstituteMetavariable(t *Term, name string, value *Term) *Term {
	if t.kind == KindMetavariable && t.text == name {
		return value
	}
	if t.kind != KindApplication {
		return t
	}
	var cs []*Term
	for i, c := range t.children {
		r := SubstituteMetavariable(c, name, value)
		if r != c && cs == nil {
			cs = t.Children()
		}
		if cs != nil {
			cs[i] = r
		}
	}
	if cs == nil {
		return t
	}
	return &Term{kind: KindApplication, children: cs}
}

// ValidateEFAs checks that every expression function application in t has
// a metavariable head and at least one argument.
func ValidateEFAs(t *Term) error {
	var err error
	Any(t, func(d *Term) bool {
		if !IsEFA(d) {
			return false
		}
		switch {
		case !d.children[1].IsMetavariable():
			err = fmt.Errorf("expression function application %s: head is not a metavariable", d)
		case len(d.children) < 3:
			err = fmt.Errorf("expression function application %s: empty argument list", d)
		}
		return err != nil
	})
	return err
}
