package engine

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/joshsymonds/sieve/internal/gmail"
	"github.com/joshsymonds/sieve/internal/rules"
)

// evaluateMessageFilters runs every message filter, in declared order,
// against each message of the thread. Star and flag actions accumulate
// across matching filters; when two filters move the same message the later
// one wins and the override is recorded as an evaluation error.
func evaluateMessageFilters(rs rules.RuleSet, snap Snapshot, th gmail.Thread) ([]ActionIntent, []string) {
	var intents []ActionIntent
	var errs []string

	for _, m := range th.Messages {
		var (
			perMessage []ActionIntent
			starred    bool
			flagged    bool
			moveAt     = -1
		)
		for _, f := range rs.MessageFilters {
			if !messageMatches(f, m, snap, rs.Company) {
				continue
			}
			for _, a := range f.Actions {
				switch a.Type {
				case rules.ActionStar:
					if starred {
						continue
					}
					starred = true
					perMessage = append(perMessage, ActionIntent{
						TargetKind: TargetMessage,
						TargetID:   string(m.ID),
						Action:     ActionStar,
						Filter:     f.Name,
					})
				case rules.ActionFlag:
					if flagged {
						continue
					}
					flagged = true
					perMessage = append(perMessage, ActionIntent{
						TargetKind: TargetMessage,
						TargetID:   string(m.ID),
						Action:     ActionFlag,
						Filter:     f.Name,
					})
				case rules.ActionMove:
					next := ActionIntent{
						TargetKind:  TargetMessage,
						TargetID:    string(m.ID),
						Action:      ActionMove,
						Destination: a.Destination,
						Filter:      f.Name,
					}
					if moveAt >= 0 {
						prev := perMessage[moveAt]
						if prev.Destination != next.Destination {
							errs = append(errs, fmt.Sprintf(
								"evaluation: message %s: move to %q (filter %s) overrides move to %q (filter %s)",
								m.ID, next.Destination, next.Filter, prev.Destination, prev.Filter))
						}
						perMessage[moveAt] = next
						continue
					}
					perMessage = append(perMessage, next)
					moveAt = len(perMessage) - 1
				}
			}
		}
		if len(perMessage) > 0 && matchesEmergency(m, rs.EmergencyKeywords) {
			for i := range perMessage {
				perMessage[i].Emergency = true
			}
		}
		intents = append(intents, perMessage...)
	}
	return intents, errs
}

// messageMatches applies a filter's predicates conjunctively. A filter with
// no predicates is a catch-all.
func messageMatches(f rules.MessageFilter, m gmail.MessageMeta, snap Snapshot, company *rules.Company) bool {
	if len(f.To) > 0 && !addressIntersects(m.Headers["to"], f.To) {
		return false
	}
	if len(f.Cc) > 0 && !addressIntersects(m.Headers["cc"], f.Cc) {
		return false
	}
	if f.From != nil && !fromMatches(*f.From, m.Headers["from"], company) {
		return false
	}
	if len(f.Labels) > 0 {
		carried := snap.messageLabels(m)
		for _, want := range f.Labels {
			if _, ok := carried[strings.ToLower(want)]; !ok {
				return false
			}
		}
	}
	return true
}

func fromMatches(fm rules.FromMatcher, header string, company *rules.Company) bool {
	if fm.SuperiorsOnly {
		matched := false
		for _, addr := range addressesIn(header) {
			if company.IsSuperior(addr) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if len(fm.Patterns) > 0 && !containsAny(header, fm.Patterns) {
		return false
	}
	return true
}

// addressIntersects reports whether the header's address list shares at
// least one exact address (case-insensitive) with wanted.
func addressIntersects(header string, wanted []string) bool {
	addrs := addressesIn(header)
	for _, want := range wanted {
		want = strings.ToLower(strings.TrimSpace(want))
		for _, addr := range addrs {
			if addr == want {
				return true
			}
		}
	}
	return false
}

// addressesIn extracts lower-cased addresses from a To/Cc/From header.
func addressesIn(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if parsed, err := mail.ParseAddressList(header); err == nil {
		out := make([]string, 0, len(parsed))
		for _, a := range parsed {
			out = append(out, strings.ToLower(a.Address))
		}
		return out
	}
	// fall back to naive splitting for headers net/mail rejects
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if i := strings.LastIndex(part, "<"); i >= 0 {
			part = strings.Trim(part[i:], "<> ")
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsAny(header string, patterns []string) bool {
	header = strings.ToLower(header)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(header, p) {
			return true
		}
	}
	return false
}

// matchesEmergency reports whether the subject or any other header value
// contains a configured emergency keyword.
func matchesEmergency(m gmail.MessageMeta, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, v := range m.Headers {
		if containsAny(v, keywords) {
			return true
		}
	}
	return false
}
