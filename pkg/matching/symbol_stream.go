package matching

import (
	"strconv"

	"github.com/operator-framework/homatch/pkg/term"
)

// SymbolStream produces symbol names that occur neither in its seed terms
// nor among the names it produced before. Copying a stream by value gives
// an independent stream at the same position.
type SymbolStream struct {
	avoid map[string]struct{}
	next  int
}

func NewSymbolStream(seeds ...*term.Term) SymbolStream {
	avoid := map[string]struct{}{}
	for _, seed := range seeds {
		for s := range term.Symbols(seed) {
			avoid[s] = struct{}{}
		}
	}
	return SymbolStream{avoid: avoid}
}

func (s *SymbolStream) Next() string {
	for {
		name := "v" + strconv.Itoa(s.next)
		s.next++
		if _, used := s.avoid[name]; !used {
			return name
		}
	}
}

// NextN returns n new names at once.
func (s *SymbolStream) NextN(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = s.Next()
	}
	return names
}
