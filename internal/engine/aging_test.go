package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/joshsymonds/sieve/internal/gmail"
	"github.com/joshsymonds/sieve/internal/rules"
)

var testNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// agedMsg builds a message whose age (relative to testNow) and read state
// are the only fields the aggregator looks at.
func agedMsg(id string, age time.Duration, unread bool) gmail.MessageMeta {
	return gmail.MessageMeta{
		ID:           gmail.MessageID(id),
		InternalDate: testNow.Add(-age),
		Unread:       unread,
		Headers:      map[string]string{},
	}
}

func thread(id string, msgs ...gmail.MessageMeta) gmail.Thread {
	return gmail.Thread{ID: gmail.ThreadID(id), Messages: msgs}
}

func TestMessageAged(t *testing.T) {
	ttl := rules.TTL{Read: 30 * day, Unread: 90 * day}
	if !messageAged(agedMsg("a", 31*day, false), ttl, testNow) {
		t.Fatalf("read message past read ttl must be aged")
	}
	if messageAged(agedMsg("a", 31*day, true), ttl, testNow) {
		t.Fatalf("unread message under unread ttl must not be aged")
	}
	if !messageAged(agedMsg("a", 91*day, true), ttl, testNow) {
		t.Fatalf("unread message past unread ttl must be aged")
	}
	if messageAged(agedMsg("a", 31*day, false), rules.TTL{Keep: true}, testNow) {
		t.Fatalf("keep ttl never ages")
	}
}

func TestThreadAged(t *testing.T) {
	ttl := rules.TTL{Read: 30 * day, Unread: 90 * day}
	tests := []struct {
		name   string
		thread gmail.Thread
		policy rules.ThreadingPolicy
		want   bool
	}{
		{
			name:   "disabled-newest-aged",
			thread: thread("t", agedMsg("a", 31*day, false)),
			policy: rules.ThreadingPolicy{},
			want:   true,
		},
		{
			name:   "disabled-newest-fresh",
			thread: thread("t", agedMsg("a", 29*day, false)),
			policy: rules.ThreadingPolicy{},
			want:   false,
		},
		{
			name:   "require-all-one-unaged",
			thread: thread("t", agedMsg("old", 400*day, false), agedMsg("mid", 31*day, false), agedMsg("new", 10*day, false)),
			policy: rules.ThreadingPolicy{Enabled: true, RequireAllMessagesAged: true},
			want:   false,
		},
		{
			name:   "require-all-all-aged",
			thread: thread("t", agedMsg("old", 400*day, false), agedMsg("new", 31*day, false)),
			policy: rules.ThreadingPolicy{Enabled: true, RequireAllMessagesAged: true},
			want:   true,
		},
		{
			name:   "newest-only-aged",
			thread: thread("t", agedMsg("old", 400*day, false), agedMsg("new", 31*day, false)),
			policy: rules.ThreadingPolicy{Enabled: true},
			want:   true,
		},
		{
			name:   "newest-only-fresh",
			thread: thread("t", agedMsg("old", 400*day, false), agedMsg("new", 1*day, false)),
			policy: rules.ThreadingPolicy{Enabled: true},
			want:   false,
		},
		{
			name:   "recent-activity-overrides",
			thread: thread("t", agedMsg("old", 400*day, false), agedMsg("new", 12*time.Hour, false)),
			policy: rules.ThreadingPolicy{Enabled: true, RequireAllMessagesAged: false, RecentActivityThreshold: 24 * time.Hour},
			want:   false,
		},
		{
			name:   "recent-activity-overrides-require-all",
			thread: thread("t", agedMsg("old", 400*day, false), agedMsg("new", 12*time.Hour, false)),
			policy: rules.ThreadingPolicy{Enabled: true, RequireAllMessagesAged: true, RecentActivityThreshold: 24 * time.Hour},
			want:   false,
		},
		{
			name:   "mixed-read-state",
			thread: thread("t", agedMsg("read", 31*day, false), agedMsg("unread", 91*day, true)),
			policy: rules.ThreadingPolicy{Enabled: true, RequireAllMessagesAged: true},
			want:   true,
		},
		{
			name:   "empty-thread",
			thread: gmail.Thread{ID: "t"},
			policy: rules.ThreadingPolicy{Enabled: true},
			want:   false,
		},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			if got := threadAged(tc.thread, ttl, tc.policy, testNow); got != tc.want {
				t.Fatalf("threadAged = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestThreadAgedKeepNeverFires(t *testing.T) {
	keep := rules.TTL{Keep: true}
	for _, age := range []time.Duration{1 * day, 1000 * day} {
		th := thread("t", agedMsg("a", age, false))
		pol := rules.ThreadingPolicy{Enabled: true, RequireAllMessagesAged: true}
		if threadAged(th, keep, pol, testNow) {
			t.Fatalf("keep ttl aged at %v", age)
		}
	}
}

func TestThreadAgedIgnoresOverrideWhenDisabled(t *testing.T) {
	// Recent-activity forcing applies to thread-aware aging only.
	ttl := rules.TTL{Read: time.Hour, Unread: time.Hour}
	th := thread("t", agedMsg("a", 2*time.Hour, false))
	pol := rules.ThreadingPolicy{Enabled: false, RecentActivityThreshold: 3 * time.Hour}
	if !threadAged(th, ttl, pol, testNow) {
		t.Fatalf("disabled threading must not apply recent-activity override")
	}
}

func ExampleShouldSkip() {
	qh := &rules.QuietHours{
		Enabled:  true,
		Start:    rules.TimeOfDay{Hour: 22},
		End:      rules.TimeOfDay{Hour: 6},
		Location: time.UTC,
	}
	fmt.Println(ShouldSkip(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC), qh))
	fmt.Println(ShouldSkip(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), qh))
	// Output:
	// true
	// false
}
