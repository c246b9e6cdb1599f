package engine

import (
	"time"

	"github.com/joshsymonds/sieve/internal/gmail"
	"github.com/joshsymonds/sieve/internal/rules"
)

// messageAged reports whether a single message has outlived the TTL for its
// current read state.
func messageAged(m gmail.MessageMeta, ttl rules.TTL, now time.Time) bool {
	if ttl.Keep {
		return false
	}
	return now.Sub(m.InternalDate) > ttl.ForUnread(m.Unread)
}

// threadAged rolls per-message ages up to a thread verdict under the given
// threading policy.
//
// With threading disabled the verdict degrades to the newest message's own
// aging. With threading enabled, require-all-messages-aged selects AND over
// all messages versus newest-message aging, and recent activity on the
// thread always forces "not aged" so active conversations are never swept.
func threadAged(t gmail.Thread, ttl rules.TTL, pol rules.ThreadingPolicy, now time.Time) bool {
	if ttl.Keep || len(t.Messages) == 0 {
		return false
	}
	newest := t.Newest()
	if !pol.Enabled {
		return messageAged(newest, ttl, now)
	}
	if pol.RecentActivityThreshold > 0 && now.Sub(newest.InternalDate) < pol.RecentActivityThreshold {
		return false
	}
	if pol.RequireAllMessagesAged {
		for _, m := range t.Messages {
			if !messageAged(m, ttl, now) {
				return false
			}
		}
		return true
	}
	return messageAged(newest, ttl, now)
}
