package matching

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
)

// Step names the point of the search a SearchPosition was taken at.
type Step string

const (
	StepSolve     Step = "solve"
	StepBranch    Step = "branch"
	StepCapture   Step = "capture"
	StepRepeat    Step = "repeat"
	StepSolution  Step = "solution"
	StepExhausted Step = "exhausted"
)

type SearchPosition interface {
	Step() Step
	Message() string
	Constraints() []*Constraint
	Partial() *Solution
}

type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

// LoggingTracer narrates the search to Writer.
type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "--- %s: %s\n", p.Step(), p.Message())
	if cs := p.Constraints(); len(cs) > 0 {
		fmt.Fprintf(t.Writer, "Constraints:\n")
		for _, c := range cs {
			fmt.Fprintf(t.Writer, "- %s\n", c)
		}
	}
	if s := p.Partial(); s != nil {
		fmt.Fprintf(t.Writer, "Solution: %s\n", s)
	}
}

// LogrTracer reports search positions as structured log entries at V(1).
type LogrTracer struct {
	Logger logr.Logger
}

func (t LogrTracer) Trace(p SearchPosition) {
	log := t.Logger.V(1)
	if !log.Enabled() {
		return
	}
	kv := []any{"step", string(p.Step()), "constraints", len(p.Constraints())}
	if s := p.Partial(); s != nil {
		kv = append(kv, "solution", s.String())
	}
	log.Info(p.Message(), kv...)
}

type position struct {
	step        Step
	message     string
	constraints []*Constraint
	partial     *Solution
}

func (p position) Step() Step                 { return p.step }
func (p position) Message() string            { return p.message }
func (p position) Constraints() []*Constraint { return p.constraints }
func (p position) Partial() *Solution         { return p.partial }
