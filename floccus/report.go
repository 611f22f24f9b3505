package floccus

import "github.com/whjimmortal/floccus/diff"

// Report summarizes one completed Run call, for logging.
type Report struct {
	FirstSync        bool
	LocalActions     int
	ServerActions    int
	LocalActionsByType  map[string]int
	ServerActionsByType map[string]int
}

func summarize(plan *diff.Diff) map[string]int {
	counts := map[string]int{}
	for _, a := range plan.Actions() {
		counts[a.Type.String()]++
	}
	return counts
}
