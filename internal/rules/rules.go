package rules

import (
	"fmt"
	"strings"
	"time"
)

// RuleSet is the canonical, validated rule configuration for one account.
// It is built once per execution cycle and immutable thereafter.
type RuleSet struct {
	Account           Account
	MessageFilters    []MessageFilter
	StateFilters      []StateFilter
	Threading         ThreadingPolicy
	Company           *Company
	QuietHours        *QuietHours
	EmergencyKeywords []string
}

// Account identifies the mailbox the rules apply to.
type Account struct {
	Name     string
	Email    string
	ScriptID string
}

// FilterActionType enumerates message-filter actions.
type FilterActionType string

const (
	ActionStar FilterActionType = "star"
	ActionFlag FilterActionType = "flag"
	ActionMove FilterActionType = "move"
)

// StateActionType enumerates state-filter actions.
type StateActionType string

const (
	StateMove   StateActionType = "move"
	StateDelete StateActionType = "delete"
)

// FilterAction is one action of a message filter. Destination is set for
// move actions only.
type FilterAction struct {
	Type        FilterActionType
	Destination string
}

// StateAction is one action of a state filter.
type StateAction struct {
	Type        StateActionType
	Destination string
}

// MessageFilter matches individual messages by header predicates. All
// present predicates must hold; a filter with none is a catch-all.
type MessageFilter struct {
	Name    string
	To      []string
	Cc      []string
	From    *FromMatcher
	Labels  []string // message must already carry all of these
	Actions []FilterAction
}

// FromMatcher matches the sender. Patterns are substring matches; when
// SuperiorsOnly is set the sender address must additionally appear in
// Company.Superiors.
type FromMatcher struct {
	Patterns      []string
	SuperiorsOnly bool
}

// StateFilter matches whole threads by label state and fires once the
// thread is aged past its TTL.
type StateFilter struct {
	Name          string
	Labels        []string
	ExcludeLabels []string
	TTL           TTL
	Actions       []StateAction
}

// TTL is the aging policy of a state filter. Keep pins matching threads
// against aging; otherwise Read/Unread hold the expiry durations for the
// thread's read state.
type TTL struct {
	Keep   bool
	Read   time.Duration
	Unread time.Duration
}

// ForUnread returns the duration appropriate to the given read state.
func (t TTL) ForUnread(unread bool) time.Duration {
	if unread {
		return t.Unread
	}
	return t.Read
}

// ThreadingPolicy controls how per-message ages roll up to a thread verdict.
type ThreadingPolicy struct {
	Enabled                 bool
	RequireAllMessagesAged  bool
	RecentActivityThreshold time.Duration
}

// TimeOfDay is a wall-clock time in the quiet-hours timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.Hour*60 + t.Minute }

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// QuietHours is a suppression window. A window with Start > End wraps past
// midnight. Location is resolved from the configured timezone identifier at
// load time.
type QuietHours struct {
	Enabled  bool
	Start    TimeOfDay
	End      TimeOfDay
	Location *time.Location
}

// Company carries the organisation context used by superiors-only matching.
type Company struct {
	Domain    string
	Superiors []string
}

// IsSuperior reports whether addr is listed in Superiors, case-insensitively.
func (c *Company) IsSuperior(addr string) bool {
	if c == nil {
		return false
	}
	addr = strings.ToLower(strings.TrimSpace(addr))
	for _, s := range c.Superiors {
		if strings.ToLower(strings.TrimSpace(s)) == addr {
			return true
		}
	}
	return false
}
