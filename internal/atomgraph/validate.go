package atomgraph

import (
	"fmt"
	"strings"
)

// Validate reports data-integrity problems found while building the graph:
// duplicate ids, dangling prerequisites and cycles. The graph remains
// usable when Validate fails; callers decide whether to log or reject.
func (g *Graph) Validate() error {
	var errs []string

	for _, id := range g.duplicates {
		errs = append(errs, fmt.Sprintf("duplicate atom ID: %q", id))
	}
	for _, e := range g.dangling {
		errs = append(errs, fmt.Sprintf("atom %q references nonexistent prerequisite %q", e.Atom, e.Prerequisite))
	}
	if len(g.cyclic) > 0 {
		errs = append(errs, fmt.Sprintf("cycle detected involving atoms: %s", strings.Join(g.cyclic, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("atom graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
