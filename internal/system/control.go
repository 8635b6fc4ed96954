package system

import (
	"sigil/internal/space"
)

// LimitTotal stops a run once the total firing count reaches limit.
func LimitTotal(limit uint64) ControlFunc {
	return func(_ string, _ space.Access, count uint64) Control {
		if count >= limit {
			return Stop
		}
		return Continue
	}
}

// LimitPerRule stops a run once any single rule has fired limit times.
func LimitPerRule(limit uint64) ControlFunc {
	counts := make(map[string]uint64)
	return func(ruleName string, _ space.Access, _ uint64) Control {
		counts[ruleName]++
		if counts[ruleName] >= limit {
			return Stop
		}
		return Continue
	}
}

// ControlAll combines controls; the run stops as soon as any of them says
// stop.
func ControlAll(controls ...ControlFunc) ControlFunc {
	return func(ruleName string, acc space.Access, count uint64) Control {
		for _, control := range controls {
			if control(ruleName, acc, count) == Stop {
				return Stop
			}
		}
		return Continue
	}
}
