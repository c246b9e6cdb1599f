package gmail

import "time"

type MessageID string
type ThreadID string
type LabelID string

// Gmail system labels the engine manipulates directly.
const (
	LabelInbox     LabelID = "INBOX"
	LabelUnread    LabelID = "UNREAD"
	LabelStarred   LabelID = "STARRED"
	LabelImportant LabelID = "IMPORTANT"
)

// MessageMeta is the metadata-only view of a message: labels plus the
// headers requested at fetch time. Header names are lower-cased.
type MessageMeta struct {
	ID           MessageID
	ThreadID     ThreadID
	Labels       []LabelID
	Headers      map[string]string // from, to, cc, subject, list-id, etc.
	InternalDate time.Time
	Unread       bool
}

// Thread is a conversation: messages ordered by arrival time, oldest first.
type Thread struct {
	ID       ThreadID
	Messages []MessageMeta
	Snippet  string
}

// Newest returns the most recent message in the thread.
func (t Thread) Newest() MessageMeta {
	return t.Messages[len(t.Messages)-1]
}

// HasLabel reports whether any message in the thread carries the label.
func (t Thread) HasLabel(l LabelID) bool {
	for _, m := range t.Messages {
		for _, ml := range m.Labels {
			if ml == l {
				return true
			}
		}
	}
	return false
}

type ThreadRef struct {
	ID ThreadID
}

// ThreadPage is one page of a threads.list call.
type ThreadPage struct {
	Refs          []ThreadRef
	NextPageToken string
}

type ModifyOps struct {
	AddLabels    []LabelID
	RemoveLabels []LabelID
}

type Query struct {
	Raw string // Gmail query string, already formed (e.g. `in:inbox -is:chat`)
}
