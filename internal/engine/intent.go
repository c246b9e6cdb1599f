package engine

// TargetKind says what an ActionIntent mutates.
type TargetKind string

const (
	TargetMessage TargetKind = "message"
	TargetThread  TargetKind = "thread"
)

// Action is the mutation an intent requests.
type Action string

const (
	ActionStar   Action = "star"
	ActionFlag   Action = "flag"
	ActionMove   Action = "move"
	ActionDelete Action = "delete"
)

// ActionIntent is an engine-emitted, not-yet-applied mailbox mutation. It is
// never mutated after the evaluators emit it. Emergency marks intents whose
// message matched an emergency keyword; the notification layer uses it to
// bypass quiet-hours suppression.
type ActionIntent struct {
	TargetKind  TargetKind
	TargetID    string
	Action      Action
	Destination string // move only
	Filter      string // originating filter name
	Emergency   bool
}
