// Package config loads sieve rule files. The on-disk shape uses hyphenated
// YAML keys; everything past this boundary speaks the canonical rules shape.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshsymonds/sieve/internal/rules"
)

// Error is a configuration failure. It is fatal: the cycle aborts before
// any mailbox access.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Provider loads and validates rule sets from a YAML file.
type Provider struct {
	Path string
}

// Load reads, normalizes, and validates the rule file.
func (p Provider) Load() (rules.RuleSet, error) {
	raw, err := os.ReadFile(p.Path)
	if err != nil {
		return rules.RuleSet{}, &Error{Path: p.Path, Err: err}
	}
	rs, err := Parse(raw)
	if err != nil {
		return rules.RuleSet{}, &Error{Path: p.Path, Err: err}
	}
	return rs, nil
}

// Parse decodes the hyphenated YAML shape into a validated RuleSet.
func Parse(raw []byte) (rules.RuleSet, error) {
	var doc fileRuleSet
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return rules.RuleSet{}, fmt.Errorf("decode yaml: %w", err)
	}
	rs, err := doc.convert()
	if err != nil {
		return rules.RuleSet{}, err
	}
	if err := rules.Validate(rs); err != nil {
		return rules.RuleSet{}, err
	}
	return rs, nil
}

type fileRuleSet struct {
	Account struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		ScriptID string `yaml:"script-id"`
	} `yaml:"account"`
	MessageFilters []fileMessageFilter `yaml:"message-filters"`
	StateFilters   []fileStateFilter   `yaml:"state-filters"`
	Threading      struct {
		Enabled                 bool   `yaml:"enabled"`
		RequireAllMessagesAged  bool   `yaml:"require-all-messages-aged"`
		RecentActivityThreshold string `yaml:"recent-activity-threshold"`
	} `yaml:"threading"`
	Company           *fileCompany    `yaml:"company"`
	QuietHours        *fileQuietHours `yaml:"quiet-hours"`
	EmergencyKeywords []string        `yaml:"emergency-keywords"`
}

type fileCompany struct {
	Domain    string   `yaml:"domain"`
	Superiors []string `yaml:"superiors"`
}

type fileQuietHours struct {
	Enabled  bool   `yaml:"enabled"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Timezone string `yaml:"timezone"`
}

type fileMessageFilter struct {
	Name    string       `yaml:"name"`
	To      []string     `yaml:"to"`
	Cc      []string     `yaml:"cc"`
	From    *fromField   `yaml:"from"`
	Labels  []string     `yaml:"labels"`
	Actions []fileAction `yaml:"actions"`
}

type fileStateFilter struct {
	Name          string       `yaml:"name"`
	Labels        []string     `yaml:"labels"`
	ExcludeLabels []string     `yaml:"exclude-labels"`
	TTL           *ttlField    `yaml:"ttl"`
	Actions       []fileAction `yaml:"actions"`
}

type fileAction struct {
	Type        string `yaml:"type"`
	Destination string `yaml:"destination"`
}

// fromField accepts either a flat pattern list or the structured matcher.
type fromField struct {
	Patterns      []string
	SuperiorsOnly bool
}

func (f *fromField) UnmarshalYAML(value *yaml.Node) error {
	var flat []string
	if err := value.Decode(&flat); err == nil {
		f.Patterns = flat
		return nil
	}
	var structured struct {
		Patterns      []string `yaml:"patterns"`
		SuperiorsOnly bool     `yaml:"superiors-only"`
	}
	if err := value.Decode(&structured); err != nil {
		return fmt.Errorf("from: want pattern list or {patterns, superiors-only}: %w", err)
	}
	f.Patterns = structured.Patterns
	f.SuperiorsOnly = structured.SuperiorsOnly
	return nil
}

// ttlField accepts the literal "keep" or a {read, unread} duration pair.
type ttlField struct {
	Keep   bool
	Read   string
	Unread string
}

func (t *ttlField) UnmarshalYAML(value *yaml.Node) error {
	var literal string
	if err := value.Decode(&literal); err == nil {
		if literal != "keep" {
			return fmt.Errorf("ttl: unknown literal %q", literal)
		}
		t.Keep = true
		return nil
	}
	var pair struct {
		Read   string `yaml:"read"`
		Unread string `yaml:"unread"`
	}
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf(`ttl: want "keep" or {read, unread}: %w`, err)
	}
	t.Read = pair.Read
	t.Unread = pair.Unread
	return nil
}

func (doc fileRuleSet) convert() (rules.RuleSet, error) {
	rs := rules.RuleSet{
		Account: rules.Account{
			Name:     doc.Account.Name,
			Email:    doc.Account.Email,
			ScriptID: doc.Account.ScriptID,
		},
		EmergencyKeywords: doc.EmergencyKeywords,
	}

	for _, f := range doc.MessageFilters {
		mf := rules.MessageFilter{
			Name:   f.Name,
			To:     f.To,
			Cc:     f.Cc,
			Labels: f.Labels,
		}
		if f.From != nil {
			mf.From = &rules.FromMatcher{
				Patterns:      f.From.Patterns,
				SuperiorsOnly: f.From.SuperiorsOnly,
			}
		}
		for _, a := range f.Actions {
			mf.Actions = append(mf.Actions, rules.FilterAction{
				Type:        rules.FilterActionType(a.Type),
				Destination: a.Destination,
			})
		}
		rs.MessageFilters = append(rs.MessageFilters, mf)
	}

	for _, f := range doc.StateFilters {
		sf := rules.StateFilter{
			Name:          f.Name,
			Labels:        f.Labels,
			ExcludeLabels: f.ExcludeLabels,
		}
		if f.TTL == nil {
			return rules.RuleSet{}, fmt.Errorf("state filter %q must have TTL configuration", f.Name)
		}
		ttl, err := convertTTL(*f.TTL)
		if err != nil {
			return rules.RuleSet{}, fmt.Errorf("state filter %q: %w", f.Name, err)
		}
		sf.TTL = ttl
		for _, a := range f.Actions {
			sf.Actions = append(sf.Actions, rules.StateAction{
				Type:        rules.StateActionType(a.Type),
				Destination: a.Destination,
			})
		}
		rs.StateFilters = append(rs.StateFilters, sf)
	}

	rs.Threading = rules.ThreadingPolicy{
		Enabled:                doc.Threading.Enabled,
		RequireAllMessagesAged: doc.Threading.RequireAllMessagesAged,
	}
	if doc.Threading.RecentActivityThreshold != "" {
		d, err := rules.ParseDuration(doc.Threading.RecentActivityThreshold)
		if err != nil {
			return rules.RuleSet{}, fmt.Errorf("threading: %w", err)
		}
		rs.Threading.RecentActivityThreshold = d
	}

	if doc.Company != nil {
		rs.Company = &rules.Company{
			Domain:    doc.Company.Domain,
			Superiors: doc.Company.Superiors,
		}
	}

	if doc.QuietHours != nil {
		qh, err := convertQuietHours(*doc.QuietHours)
		if err != nil {
			return rules.RuleSet{}, err
		}
		rs.QuietHours = qh
	}
	return rs, nil
}

func convertTTL(t ttlField) (rules.TTL, error) {
	if t.Keep {
		return rules.TTL{Keep: true}, nil
	}
	read, err := rules.ParseDuration(t.Read)
	if err != nil {
		return rules.TTL{}, fmt.Errorf("read ttl: %w", err)
	}
	unread, err := rules.ParseDuration(t.Unread)
	if err != nil {
		return rules.TTL{}, fmt.Errorf("unread ttl: %w", err)
	}
	return rules.TTL{Read: read, Unread: unread}, nil
}

func convertQuietHours(qh fileQuietHours) (*rules.QuietHours, error) {
	out := &rules.QuietHours{Enabled: qh.Enabled}
	if !qh.Enabled {
		return out, nil
	}
	start, err := rules.ParseTimeOfDay(qh.Start)
	if err != nil {
		return nil, fmt.Errorf("quiet-hours start: %w", err)
	}
	end, err := rules.ParseTimeOfDay(qh.End)
	if err != nil {
		return nil, fmt.Errorf("quiet-hours end: %w", err)
	}
	loc, err := time.LoadLocation(qh.Timezone)
	if err != nil {
		return nil, fmt.Errorf("quiet-hours timezone: %w", err)
	}
	out.Start = start
	out.End = end
	out.Location = loc
	return out, nil
}
