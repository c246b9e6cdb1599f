// sieve-check validates a rule file and prints the compiled rule set
// without touching the mailbox.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joshsymonds/sieve/internal/config"
	"github.com/joshsymonds/sieve/internal/rules"
)

func main() {
	configPath := flag.String("config", "sieve.yml", "rule file (YAML)")
	flag.Parse()

	rs, err := (config.Provider{Path: *configPath}).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(describe(rs))
}

func describe(rs rules.RuleSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "account: %s <%s>\n", rs.Account.Name, rs.Account.Email)
	fmt.Fprintf(&b, "threading: enabled=%v require-all=%v recent-activity=%s\n",
		rs.Threading.Enabled, rs.Threading.RequireAllMessagesAged, rs.Threading.RecentActivityThreshold)
	if qh := rs.QuietHours; qh != nil && qh.Enabled {
		fmt.Fprintf(&b, "quiet hours: %s-%s %s\n", qh.Start, qh.End, qh.Location)
	}
	if len(rs.EmergencyKeywords) > 0 {
		fmt.Fprintf(&b, "emergency keywords: %s\n", strings.Join(rs.EmergencyKeywords, ", "))
	}

	fmt.Fprintf(&b, "message filters (%d):\n", len(rs.MessageFilters))
	for _, f := range rs.MessageFilters {
		var preds []string
		if len(f.To) > 0 {
			preds = append(preds, fmt.Sprintf("to=%v", f.To))
		}
		if len(f.Cc) > 0 {
			preds = append(preds, fmt.Sprintf("cc=%v", f.Cc))
		}
		if f.From != nil {
			from := fmt.Sprintf("from=%v", f.From.Patterns)
			if f.From.SuperiorsOnly {
				from += " (superiors-only)"
			}
			preds = append(preds, from)
		}
		if len(f.Labels) > 0 {
			preds = append(preds, fmt.Sprintf("labels=%v", f.Labels))
		}
		if len(preds) == 0 {
			preds = append(preds, "catch-all")
		}
		fmt.Fprintf(&b, "  %-24s %s -> %s\n", f.Name, strings.Join(preds, " "), describeFilterActions(f.Actions))
	}

	fmt.Fprintf(&b, "state filters (%d):\n", len(rs.StateFilters))
	for _, f := range rs.StateFilters {
		ttl := "keep"
		if !f.TTL.Keep {
			ttl = fmt.Sprintf("read=%s unread=%s", f.TTL.Read, f.TTL.Unread)
		}
		var preds []string
		if len(f.Labels) > 0 {
			preds = append(preds, fmt.Sprintf("labels=%v", f.Labels))
		}
		if len(f.ExcludeLabels) > 0 {
			preds = append(preds, fmt.Sprintf("exclude=%v", f.ExcludeLabels))
		}
		fmt.Fprintf(&b, "  %-24s %s ttl[%s] -> %s\n", f.Name, strings.Join(preds, " "), ttl, describeStateActions(f.Actions))
	}
	return b.String()
}

func describeFilterActions(actions []rules.FilterAction) string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Type == rules.ActionMove {
			out = append(out, fmt.Sprintf("move:%s", a.Destination))
			continue
		}
		out = append(out, string(a.Type))
	}
	return strings.Join(out, ", ")
}

func describeStateActions(actions []rules.StateAction) string {
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Type == rules.StateMove {
			out = append(out, fmt.Sprintf("move:%s", a.Destination))
			continue
		}
		out = append(out, string(a.Type))
	}
	return strings.Join(out, ", ")
}
