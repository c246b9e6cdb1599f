package engine

import (
	"strings"
	"time"

	"github.com/joshsymonds/sieve/internal/gmail"
	"github.com/joshsymonds/sieve/internal/rules"
)

// evaluateStateFilters matches the thread against state filters in declared
// order. The first filter whose label predicates match consumes the thread:
// a keep TTL pins it (no actions, later filters never see it), anything
// else fires only once the thread is aged under that filter's TTLs.
func evaluateStateFilters(rs rules.RuleSet, snap Snapshot, th gmail.Thread, now time.Time) []ActionIntent {
	labels := snap.threadLabels(th)

	for _, sf := range rs.StateFilters {
		if !hasAll(labels, sf.Labels) {
			continue
		}
		if hasAny(labels, sf.ExcludeLabels) {
			continue
		}
		if sf.TTL.Keep {
			return nil
		}
		if !threadAged(th, sf.TTL, rs.Threading, now) {
			return nil
		}
		intents := make([]ActionIntent, 0, len(sf.Actions))
		for _, a := range sf.Actions {
			switch a.Type {
			case rules.StateMove:
				intents = append(intents, ActionIntent{
					TargetKind:  TargetThread,
					TargetID:    string(th.ID),
					Action:      ActionMove,
					Destination: a.Destination,
					Filter:      sf.Name,
				})
			case rules.StateDelete:
				intents = append(intents, ActionIntent{
					TargetKind: TargetThread,
					TargetID:   string(th.ID),
					Action:     ActionDelete,
					Filter:     sf.Name,
				})
			}
		}
		return intents
	}
	return nil
}

func hasAll(set map[string]struct{}, wanted []string) bool {
	for _, w := range wanted {
		if _, ok := set[strings.ToLower(w)]; !ok {
			return false
		}
	}
	return true
}

func hasAny(set map[string]struct{}, wanted []string) bool {
	for _, w := range wanted {
		if _, ok := set[strings.ToLower(w)]; ok {
			return true
		}
	}
	return false
}
