package rules

import "fmt"

// Validate checks the invariants the engine relies on: account identity
// present, filter names unique within each list, every filter has at least
// one action, move actions carry a destination, and every state filter has
// a TTL policy.
func Validate(rs RuleSet) error {
	if rs.Account.Name == "" {
		return fmt.Errorf("account name is required")
	}
	if rs.Account.Email == "" {
		return fmt.Errorf("account email is required")
	}
	if rs.Account.ScriptID == "" {
		return fmt.Errorf("account script-id is required")
	}

	seen := map[string]struct{}{}
	for _, f := range rs.MessageFilters {
		if f.Name == "" {
			return fmt.Errorf("message filter name is required")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate message filter %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if len(f.Actions) == 0 {
			return fmt.Errorf("message filter %q must have at least one action", f.Name)
		}
		for _, a := range f.Actions {
			switch a.Type {
			case ActionStar, ActionFlag:
			case ActionMove:
				if a.Destination == "" {
					return fmt.Errorf("message filter %q: move action needs a destination", f.Name)
				}
			default:
				return fmt.Errorf("message filter %q: unknown action %q", f.Name, a.Type)
			}
		}
		if f.From != nil && len(f.From.Patterns) == 0 && !f.From.SuperiorsOnly {
			return fmt.Errorf("message filter %q: empty from matcher", f.Name)
		}
	}

	seen = map[string]struct{}{}
	for _, f := range rs.StateFilters {
		if f.Name == "" {
			return fmt.Errorf("state filter name is required")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate state filter %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if len(f.Actions) == 0 {
			return fmt.Errorf("state filter %q must have at least one action", f.Name)
		}
		if !f.TTL.Keep && (f.TTL.Read <= 0 || f.TTL.Unread <= 0) {
			return fmt.Errorf("state filter %q must have a TTL policy", f.Name)
		}
		for _, a := range f.Actions {
			switch a.Type {
			case StateDelete:
			case StateMove:
				if a.Destination == "" {
					return fmt.Errorf("state filter %q: move action needs a destination", f.Name)
				}
			default:
				return fmt.Errorf("state filter %q: unknown action %q", f.Name, a.Type)
			}
		}
	}

	if rs.Threading.Enabled && rs.Threading.RecentActivityThreshold < 0 {
		return fmt.Errorf("threading recent-activity-threshold must not be negative")
	}
	if qh := rs.QuietHours; qh != nil && qh.Enabled && qh.Location == nil {
		return fmt.Errorf("quiet-hours timezone is required")
	}
	return nil
}
