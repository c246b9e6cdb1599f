package rules

import (
	"strings"
	"testing"
	"time"
)

func validRuleSet() RuleSet {
	return RuleSet{
		Account: Account{Name: "work", Email: "me@x.com", ScriptID: "abc123"},
		MessageFilters: []MessageFilter{
			{Name: "team", To: []string{"team@x.com"}, Actions: []FilterAction{{Type: ActionStar}}},
		},
		StateFilters: []StateFilter{
			{
				Name:    "archive-old",
				Labels:  []string{"archive"},
				TTL:     TTL{Read: 30 * 24 * time.Hour, Unread: 90 * 24 * time.Hour},
				Actions: []StateAction{{Type: StateMove, Destination: "Archive"}},
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RuleSet)
		wantErr string
	}{
		{name: "valid", mutate: func(*RuleSet) {}},
		{
			name:    "missing-account-name",
			mutate:  func(rs *RuleSet) { rs.Account.Name = "" },
			wantErr: "account name",
		},
		{
			name:    "missing-email",
			mutate:  func(rs *RuleSet) { rs.Account.Email = "" },
			wantErr: "account email",
		},
		{
			name:    "message-filter-no-actions",
			mutate:  func(rs *RuleSet) { rs.MessageFilters[0].Actions = nil },
			wantErr: "at least one action",
		},
		{
			name:    "state-filter-no-actions",
			mutate:  func(rs *RuleSet) { rs.StateFilters[0].Actions = nil },
			wantErr: "at least one action",
		},
		{
			name:    "state-filter-missing-ttl",
			mutate:  func(rs *RuleSet) { rs.StateFilters[0].TTL = TTL{} },
			wantErr: "TTL policy",
		},
		{
			name: "state-filter-keep-ok",
			mutate: func(rs *RuleSet) {
				rs.StateFilters[0].TTL = TTL{Keep: true}
			},
		},
		{
			name: "duplicate-message-filter",
			mutate: func(rs *RuleSet) {
				rs.MessageFilters = append(rs.MessageFilters, rs.MessageFilters[0])
			},
			wantErr: "duplicate message filter",
		},
		{
			name: "move-without-destination",
			mutate: func(rs *RuleSet) {
				rs.MessageFilters[0].Actions = []FilterAction{{Type: ActionMove}}
			},
			wantErr: "destination",
		},
		{
			name: "unknown-action",
			mutate: func(rs *RuleSet) {
				rs.MessageFilters[0].Actions = []FilterAction{{Type: "snooze"}}
			},
			wantErr: "unknown action",
		},
		{
			name: "quiet-hours-without-location",
			mutate: func(rs *RuleSet) {
				rs.QuietHours = &QuietHours{Enabled: true}
			},
			wantErr: "timezone",
		},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			rs := validRuleSet()
			tc.mutate(&rs)
			err := Validate(rs)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestIsSuperior(t *testing.T) {
	c := &Company{Domain: "x.com", Superiors: []string{"Boss@x.com"}}
	if !c.IsSuperior("boss@x.com") {
		t.Fatalf("expected case-insensitive match")
	}
	if c.IsSuperior("peer@x.com") {
		t.Fatalf("unexpected match")
	}
	var nilCompany *Company
	if nilCompany.IsSuperior("boss@x.com") {
		t.Fatalf("nil company must not match")
	}
}
