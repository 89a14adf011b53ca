package matching

import (
	"bytes"
	"strings"

	"github.com/go-logr/logr/funcr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/homatch/pkg/term"
)

var _ = Describe("Solutions", func() {
	It("instantiates a lone metavariable", func() {
		p := mustProblem("x__", "5")
		solutions := p.AllSolutions()
		Expect(solutions).To(HaveLen(1))
		Expect(solutions[0].Domain()).To(Equal([]string{"x"}))
		Expect(valuesOf(solutions, "x")).To(ConsistOf(BeAlphaEqualTo("5")))
	})

	It("decomposes applications", func() {
		p := mustProblem("(f x__)", "(f 5)")
		solutions := p.AllSolutions()
		Expect(solutions).To(HaveLen(1))
		Expect(valuesOf(solutions, "x")).To(ConsistOf(BeAlphaEqualTo("5")))
	})

	It("has one empty solution for a satisfied constraint", func() {
		p := mustProblem("x", "x")
		solutions := p.AllSolutions()
		Expect(solutions).To(HaveLen(1))
		Expect(solutions[0].Len()).To(BeZero())
	})

	It("has no solutions for a clash", func() {
		p := mustProblem("3", "4")
		Expect(p.AllSolutions()).To(BeEmpty())
		Expect(p.IsSolvable()).To(BeFalse())
		_, ok := p.FirstSolution()
		Expect(ok).To(BeFalse())
	})

	It("has no solutions for applications of different lengths", func() {
		Expect(mustProblem("(f x__)", "(f 1 2)").NumSolutions()).To(BeZero())
	})

	It("binds independent metavariables together", func() {
		p := mustProblem("x__", "5", "y__", "7")
		solutions := p.AllSolutions()
		Expect(solutions).To(HaveLen(1))
		Expect(solutions[0].Domain()).To(Equal([]string{"x", "y"}))
		Expect(valuesOf(solutions, "x")).To(ConsistOf(BeAlphaEqualTo("5")))
		Expect(valuesOf(solutions, "y")).To(ConsistOf(BeAlphaEqualTo("7")))
	})

	It("requires repeated metavariables to agree", func() {
		Expect(mustProblem("(f x__ x__)", "(f 1 1)").NumSolutions()).To(Equal(1))
		Expect(mustProblem("(f x__ x__)", "(f 1 2)").NumSolutions()).To(BeZero())
		Expect(mustProblem("x__", "1", "(g x__)", "(g 2)").NumSolutions()).To(BeZero())
	})

	It("matches under binders up to their names", func() {
		p := mustProblem("(∀ x , (P x y__))", "(∀ z , (P z 3))")
		solutions := p.AllSolutions()
		Expect(solutions).To(HaveLen(1))
		Expect(valuesOf(solutions, "y")).To(ConsistOf(BeAlphaEqualTo("3")))
	})

	It("rejects values referring to a bound variable", func() {
		Expect(mustProblem("(∀ x , (P y__))", "(∀ z , (P z))").NumSolutions()).To(BeZero())
	})

	It("splits a binding matched by a plain application", func() {
		p := mustProblem("(A__ B__)", "(y , (P z))")
		solutions := p.AllSolutions()
		Expect(solutions).To(HaveLen(1))
		Expect(valuesOf(solutions, "B")).To(ConsistOf(BeAlphaEqualTo("(P z)")))
	})

	Context("with an expression function application", func() {
		It("abstracts every subset of the occurrences of a free argument", func() {
			p := mustProblem("(@ P__ a)", "(g a a)")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(
				BeAlphaEqualTo("(λ v , (g a a))"),
				BeAlphaEqualTo("(λ v , (g v a))"),
				BeAlphaEqualTo("(λ v , (g a v))"),
				BeAlphaEqualTo("(λ v , (g v v))"),
			))
			expectSound(p, solutions)
		})

		It("tries the constant function first", func() {
			first, ok := mustProblem("(@ P__ a)", "(g a a)").FirstSolution()
			Expect(ok).To(BeTrue())
			Expect(valuesOf([]*Solution{first}, "P")).To(ConsistOf(BeAlphaEqualTo("(λ v , (g a a))")))
		})

		It("keeps only the functions that avoid capture for a bound argument", func() {
			p := mustProblem("(∀ x , (@ P__ x))", "(∀ y , (g y y))")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(BeAlphaEqualTo("(λ v , (g v v))")))
			expectSound(p, solutions)
		})

		It("abstracts the bound variable out of the body", func() {
			p := mustProblem("(∀ x , (@ P__ x))", "(∀ y , (Q y))")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(BeAlphaEqualTo("(λ v , (Q v))")))
			expectSound(p, solutions)
		})

		It("uses only the constant function when no argument occurs", func() {
			p := mustProblem("(@ P__ a)", "(g b)")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(BeAlphaEqualTo("(λ v , (g b))")))
		})

		It("projects onto an argument equal to the expression", func() {
			p := mustProblem("(@ P__ a b)", "a")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(
				BeAlphaEqualTo("(λ v , (λ w , a))"),
				BeAlphaEqualTo("(λ v , (λ w , v))"),
			))
			expectSound(p, solutions)
		})

		It("imitates the expression for several arguments", func() {
			p := mustProblem("(@ P__ a b)", "(g a b)")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(
				BeAlphaEqualTo("(λ v , (λ w , (g a b)))"),
				BeAlphaEqualTo("(λ v , (λ w , (g v b)))"),
				BeAlphaEqualTo("(λ v , (λ w , (g a w)))"),
				BeAlphaEqualTo("(λ v , (λ w , (g v w)))"),
			))
			for _, s := range solutions {
				Expect(s.Domain()).To(Equal([]string{"P"}))
			}
			expectSound(p, solutions)
		})

		It("keeps imitated values from reaching binders around the application", func() {
			p := mustProblem("(∀ x , (@ P__ x c))", "(∀ y , (∀ z , (g y z)))")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(BeAlphaEqualTo("(λ v , (λ w , (∀ z , (g v z))))")))
			expectSound(p, solutions)
		})

		It("imitates a binding whose body refers to its own variable", func() {
			p := mustProblem("(@ P__ a b)", "(∀ y , (g a y))")
			solutions := p.AllSolutions()
			Expect(valuesOf(solutions, "P")).To(ConsistOf(
				BeAlphaEqualTo("(λ v , (λ w , (∀ y , (g a y))))"),
				BeAlphaEqualTo("(λ v , (λ w , (∀ y , (g v y))))"),
			))
			expectSound(p, solutions)
		})

		It("combines with first-order constraints on the arguments", func() {
			p := mustProblem("(@ P__ x__)", "(g a)", "x__", "a")
			solutions := p.AllSolutions()
			Expect(solutions).To(HaveLen(2))
			Expect(valuesOf(solutions, "x")).To(HaveEach(BeAlphaEqualTo("a")))
			Expect(valuesOf(solutions, "P")).To(ConsistOf(
				BeAlphaEqualTo("(λ v , (g a))"),
				BeAlphaEqualTo("(λ v , (g v))"),
			))
			expectSound(p, solutions)
		})
	})

	It("never yields two alpha-equivalent solutions", func() {
		solutions := mustProblem("(@ P__ a b)", "(g a b)").AllSolutions()
		for i := range solutions {
			for j := range solutions[:i] {
				Expect(solutions[i].Equal(solutions[j])).To(BeFalse())
			}
		}
	})

	It("leaves the problem unchanged", func() {
		p := mustProblem("(@ P__ a)", "(g a a)", "x__", "(h 1)")
		before := p.String()
		constraints := p.Constraints()
		Expect(p.NumSolutions()).To(Equal(4))
		Expect(p.NumSolutions()).To(Equal(4))
		Expect(p.String()).To(Equal(before))
		Expect(p.Constraints()).To(Equal(constraints))
	})

	It("can be stopped early", func() {
		p := mustProblem("(@ P__ a)", "(g a a)")
		n := 0
		for range p.Solutions() {
			n++
			if n == 2 {
				break
			}
		}
		Expect(n).To(Equal(2))
	})
})

var _ = DescribeTable("Solutions reproduce every expression",
	func(pattern, expression string) {
		p := mustProblem(pattern, expression)
		solutions := p.AllSolutions()
		Expect(solutions).ToNot(BeEmpty())
		expectSound(p, solutions)
	},
	Entry("imitation below a binder", "(∀ x , (@ P__ x c))", "(∀ y , (∀ z , (g y z)))"),
	Entry("binding inside the imitated structure", "(@ P__ a b)", "(∀ y , (g a y))"),
	Entry("binding imitated with two arguments", "(@ P__ a b)", "(y , (g a y))"),
	Entry("two bound arguments in swapped order", "(∀ x , (∀ w , (@ P__ x w)))", "(∀ y , (∀ z , (g z y)))"),
	Entry("nested application", "(@ P__ (@ Q__ a))", "(g a)"),
	Entry("nested application below a binder", "(∀ x , (@ P__ (@ Q__ x)))", "(∀ y , (h y))"),
	Entry("nested imitation below two binders", "(∀ x , (@ P__ x (@ Q__ c)))", "(∀ y , (∀ z , (g y c)))"),
)

var _ = Describe("SolutionIterator", func() {
	It("pulls solutions one at a time", func() {
		p := mustProblem("(@ P__ a)", "(g a a)")
		it := p.Iterator()
		defer it.Stop()

		var pulled []*Solution
		for {
			s, ok := it.Next()
			if !ok {
				break
			}
			pulled = append(pulled, s)
		}
		Expect(pulled).To(HaveLen(4))
		_, ok := it.Next()
		Expect(ok).To(BeFalse())
	})

	It("can be stopped before the end", func() {
		it := mustProblem("(@ P__ a)", "(g a a)").Iterator()
		_, ok := it.Next()
		Expect(ok).To(BeTrue())
		it.Stop()
		_, ok = it.Next()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Tracing", func() {
	newTraced := func(t Tracer) *Problem {
		p, err := New(
			WithPairs(term.MustParse("(∀ x , (@ P__ x))"), term.MustParse("(∀ y , (g y y))")),
			WithTracer(t),
		)
		Expect(err).ToNot(HaveOccurred())
		return p
	}

	It("narrates the search without changing its result", func() {
		var out bytes.Buffer
		p := newTraced(LoggingTracer{Writer: &out})
		Expect(p.NumSolutions()).To(Equal(1))

		log := out.String()
		Expect(log).To(ContainSubstring("--- solve: solve {"))
		Expect(log).To(ContainSubstring("--- branch: try P__:="))
		Expect(log).To(ContainSubstring("--- capture: that solution would include variable capture"))
		Expect(log).To(ContainSubstring("--- solution: solution 1"))
		Expect(log).To(ContainSubstring("Solution: {P__:="))
		Expect(strings.TrimSpace(log)).To(HaveSuffix("--- exhausted: final solution set has 1 solutions"))
	})

	It("reports repeated solutions", func() {
		var out bytes.Buffer
		p := mustProblem("(@ P__ a b)", "(g a b)")
		traced, err := New(WithProblem(p), WithTracer(LoggingTracer{Writer: &out}))
		Expect(err).ToNot(HaveOccurred())
		Expect(traced.NumSolutions()).To(Equal(4))
		Expect(out.String()).To(ContainSubstring("--- repeat: that solution is a repeat"))
	})

	It("logs structured entries through logr", func() {
		var lines []string
		logger := funcr.New(func(prefix, args string) {
			lines = append(lines, args)
		}, funcr.Options{Verbosity: 1})

		p := newTraced(LogrTracer{Logger: logger})
		Expect(p.NumSolutions()).To(Equal(1))
		Expect(lines).To(ContainElement(ContainSubstring(`"step"="solution"`)))
		Expect(lines).To(ContainElement(ContainSubstring(`"step"="exhausted"`)))
	})

	It("stays quiet below the logr verbosity", func() {
		var lines []string
		logger := funcr.New(func(prefix, args string) {
			lines = append(lines, args)
		}, funcr.Options{})

		Expect(newTraced(LogrTracer{Logger: logger}).NumSolutions()).To(Equal(1))
		Expect(lines).To(BeEmpty())
	})
})
