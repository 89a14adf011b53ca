package matching

import (
	"maps"
	"slices"
	"strings"

	"github.com/operator-framework/homatch/internal/debruijn"
	"github.com/operator-framework/homatch/pkg/term"
)

// Solution maps metavariables to the terms that make every constraint of
// a problem hold. Solutions handed to callers are in named form and are
// never modified afterwards.
type Solution struct {
	bindings map[string]*term.Term
	// relevant holds the metavariables of the problem being solved; others
	// are introduced by the search and dropped by restricted.
	relevant map[string]struct{}
	// sites locates the metavariables introduced by imitation inside the
	// value of the metavariable they imitate for.
	sites    map[string]site
	encoded  bool
}

// site is where applications of a metavariable introduced by imitation sit
// in the value of parent: depth binders into the imitated structure, below
// the arity parameters of that value.
type site struct {
	parent string
	depth  int
	arity  int
}

func newSolution(p *Problem) *Solution {
	relevant := map[string]struct{}{}
	for _, c := range p.constraints {
		for _, mv := range term.Metavariables(c.pattern) {
			relevant[mv] = struct{}{}
		}
	}
	return &Solution{bindings: map[string]*term.Term{}, relevant: relevant, sites: map[string]site{}, encoded: p.encoded}
}

func (s *Solution) copy() *Solution {
	return &Solution{bindings: maps.Clone(s.bindings), relevant: s.relevant, sites: s.sites, encoded: s.encoded}
}

func (s *Solution) equalTerms(a, b *term.Term) bool {
	if s.encoded {
		return debruijn.Equal(a, b)
	}
	return debruijn.AlphaEqual(a, b)
}

// plus returns s extended with sub, or false when sub conflicts with a
// binding already present. Existing values are instantiated with the new
// binding and the new value with the existing ones, so that every value
// stays free of bound metavariables.
func (s *Solution) plus(sub Substitution) (*Solution, bool) {
	if existing, ok := s.bindings[sub.metavariable]; ok {
		return s, s.equalTerms(existing, sub.value)
	}
	value := sub.value
	for mv, v := range s.bindings {
		value = term.SubstituteMetavariable(value, mv, v)
	}
	value = debruijn.Normalize(value)
	if term.ContainsMetavariableNamed(value, sub.metavariable) {
		return nil, false
	}
	result := s.copy()
	for mv, v := range result.bindings {
		result.bindings[mv] = debruijn.Normalize(term.SubstituteMetavariable(v, sub.metavariable, s.lifted(sub.metavariable, mv, value)))
	}
	result.bindings[sub.metavariable] = value
	return result, true
}

// lifted returns value, bound to mv, as it must appear inside the value of
// ancestor. In the problem, the free indices of value past the binders of
// the imitated structure refer to binders around the application of
// ancestor; inside the value of ancestor they must also skip its
// parameters, which leaves them free there.
func (s *Solution) lifted(mv, ancestor string, value *term.Term) *term.Term {
	depth := 0
	for at, ok := s.sites[mv]; ok; at, ok = s.sites[at.parent] {
		depth += at.depth
		if at.parent == ancestor {
			return debruijn.AdjustIndices(value, at.arity, depth)
		}
	}
	return value
}

// imitating records the sites of the metavariables applied by an imitation
// bound to parent.
func (s *Solution) imitating(parent string, metavariables []string, depth, arity int) *Solution {
	result := s.copy()
	result.sites = maps.Clone(s.sites)
	if result.sites == nil {
		result.sites = map[string]site{}
	}
	for _, mv := range metavariables {
		result.sites[mv] = site{parent: parent, depth: depth, arity: arity}
	}
	return result
}

// restricted drops the bindings of metavariables that do not occur in the
// problem being solved.
func (s *Solution) restricted() *Solution {
	result := s.copy()
	maps.DeleteFunc(result.bindings, func(mv string, _ *term.Term) bool {
		_, ok := s.relevant[mv]
		return !ok
	})
	return result
}

// adjusted shifts the free indices of the values bound to metavariables.
func (s *Solution) adjusted(metavariables []string, delta int) *Solution {
	result := s.copy()
	for _, mv := range metavariables {
		if v, ok := result.bindings[mv]; ok {
			result.bindings[mv] = debruijn.AdjustIndices(v, delta, 0)
		}
	}
	return result
}

// hasCapture reports whether some value refers to a bound variable of the
// expression it was taken from, which the value cannot see once it is
// substituted for its metavariable.
func (s *Solution) hasCapture() bool {
	for _, v := range s.bindings {
		if debruijn.HasFree(v) {
			return true
		}
	}
	return false
}

func (s *Solution) decode() *Solution {
	if !s.encoded {
		return s
	}
	result := &Solution{bindings: make(map[string]*term.Term, len(s.bindings)), relevant: s.relevant}
	for mv, v := range s.bindings {
		result.bindings[mv] = debruijn.Decode(v)
	}
	return result
}

// Domain lists the bound metavariables in sorted order.
func (s *Solution) Domain() []string {
	return slices.Sorted(maps.Keys(s.bindings))
}

func (s *Solution) Len() int {
	return len(s.bindings)
}

// Get returns the value bound to the metavariable name.
func (s *Solution) Get(name string) (*term.Term, bool) {
	v, ok := s.bindings[name]
	return v, ok
}

// Bindings returns a copy of the metavariable to value map.
func (s *Solution) Bindings() map[string]*term.Term {
	return maps.Clone(s.bindings)
}

// Equal reports whether both solutions bind the same metavariables to
// alpha-equivalent values.
func (s *Solution) Equal(other *Solution) bool {
	if len(s.bindings) != len(other.bindings) {
		return false
	}
	for mv, v := range s.bindings {
		w, ok := other.bindings[mv]
		if !ok || !s.equalTerms(v, w) {
			return false
		}
	}
	return true
}

// Apply instantiates the metavariables of pattern and beta-reduces the
// result.
func (s *Solution) Apply(pattern *term.Term) *term.Term {
	if s.encoded {
		result := pattern
		for mv, v := range s.bindings {
			result = term.SubstituteMetavariable(result, mv, v)
		}
		return debruijn.Normalize(result)
	}
	result := debruijn.Encode(pattern)
	for mv, v := range s.bindings {
		result = term.SubstituteMetavariable(result, mv, debruijn.Encode(v))
	}
	return debruijn.Decode(debruijn.Normalize(result))
}

func (s *Solution) String() string {
	parts := make([]string, 0, len(s.bindings))
	for _, mv := range s.Domain() {
		parts = append(parts, Substitution{metavariable: mv, value: s.bindings[mv]}.String())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
