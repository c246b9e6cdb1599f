package engine

import (
	"fmt"
	"strings"
	"time"
)

// Result is the report of one execution cycle. A cycle always produces a
// Result; failures along the way accumulate in Errors instead of aborting.
type Result struct {
	Account               string
	ThreadsProcessed      int
	MessageFiltersApplied []ActionIntent
	StateFiltersApplied   []ActionIntent
	Errors                []string
	Duration              time.Duration
}

// DurationMillis is the cycle duration as reported to callers.
func (r Result) DurationMillis() int64 { return r.Duration.Milliseconds() }

// HasEmergency reports whether any emitted intent carries the emergency tag.
func (r Result) HasEmergency() bool {
	for _, in := range r.MessageFiltersApplied {
		if in.Emergency {
			return true
		}
	}
	return false
}

// Summary renders a short human-readable report.
func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sieve — account %s: %d threads, %d message actions, %d state actions in %dms\n",
		r.Account, r.ThreadsProcessed,
		len(r.MessageFiltersApplied), len(r.StateFiltersApplied), r.DurationMillis())
	for _, in := range r.MessageFiltersApplied {
		writeIntent(&b, in)
	}
	for _, in := range r.StateFiltersApplied {
		writeIntent(&b, in)
	}
	if len(r.Errors) > 0 {
		b.WriteString("errors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	return b.String()
}

func writeIntent(b *strings.Builder, in ActionIntent) {
	fmt.Fprintf(b, "  %-7s %s %s", in.Action, in.TargetKind, in.TargetID)
	if in.Destination != "" {
		fmt.Fprintf(b, " -> %s", in.Destination)
	}
	fmt.Fprintf(b, " (%s)", in.Filter)
	if in.Emergency {
		b.WriteString(" [emergency]")
	}
	b.WriteString("\n")
}
