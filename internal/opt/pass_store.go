package opt

import (
	"sync"

	"careassign/internal/model"
)

type passKey struct {
	Org         string
	WindowStart string
}

var (
	mu     sync.Mutex
	passes = map[passKey]model.PassMetrics{}
)

// RecordPass keeps the latest pass metrics for an org/window in memory so
// callers can inspect the most recent run without a store round-trip.
func RecordPass(orgID, windowStart string, m model.PassMetrics) {
	mu.Lock()
	passes[passKey{Org: orgID, WindowStart: windowStart}] = m
	mu.Unlock()
}

func GetPasses(orgID string) map[string]model.PassMetrics {
	mu.Lock()
	defer mu.Unlock()
	out := map[string]model.PassMetrics{}
	for k, v := range passes {
		if k.Org == orgID {
			out[k.WindowStart] = v
		}
	}
	return out
}
