package solve

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/operator-framework/homatch/pkg/matching"
	"github.com/operator-framework/homatch/pkg/term"
)

// ProblemFile holds the matching problem described by a YAML document:
//
//	constraints:
//	  - pattern: "(@ P__ a)"
//	    expression: "(g a a)"
//	limit: 10
type ProblemFile struct {
	constraints []*matching.Constraint
	limit       int
}

type problemDocument struct {
	Constraints []constraintDocument `yaml:"constraints"`
	Limit       int                  `yaml:"limit"`
}

type constraintDocument struct {
	Pattern    string `yaml:"pattern"`
	Expression string `yaml:"expression"`
}

func (f *ProblemFile) Constraints() []*matching.Constraint {
	return f.constraints
}

// Limit is the maximum number of solutions requested by the file, 0 when
// there is no limit.
func (f *ProblemFile) Limit() int {
	return f.limit
}

// NewProblemFile parses the problem document read from r.
func NewProblemFile(r io.Reader) (*ProblemFile, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc problemDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid format: empty problem file")
		}
		return nil, fmt.Errorf("error reading problem data: %w", err)
	}
	if len(doc.Constraints) == 0 {
		return nil, fmt.Errorf("invalid format: no constraints found")
	}
	if doc.Limit < 0 {
		return nil, fmt.Errorf("invalid limit (%d): must not be negative", doc.Limit)
	}

	constraints := make([]*matching.Constraint, 0, len(doc.Constraints))
	for i, cd := range doc.Constraints {
		c, err := cd.constraint()
		if err != nil {
			return nil, fmt.Errorf("invalid constraint %d: %w", i+1, err)
		}
		constraints = append(constraints, c)
	}
	return &ProblemFile{constraints: constraints, limit: doc.Limit}, nil
}

func (cd constraintDocument) constraint() (*matching.Constraint, error) {
	if cd.Pattern == "" || cd.Expression == "" {
		return nil, fmt.Errorf("both pattern and expression are required")
	}
	pattern, err := term.Parse(cd.Pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}
	expression, err := term.Parse(cd.Expression)
	if err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}
	return matching.NewConstraint(pattern, expression)
}

// Problem builds the matching problem of f.
func (f *ProblemFile) Problem(options ...matching.Option) (*matching.Problem, error) {
	return matching.New(append([]matching.Option{matching.WithConstraints(f.constraints...)}, options...)...)
}
