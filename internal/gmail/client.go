package gmail

import "context"

// Client is the narrow Gmail surface required by sieve. Mutations are
// idempotent at this boundary: re-adding a label, re-moving to the same
// destination, or re-trashing a thread is a no-op.
type Client interface {
	ListLabels(ctx context.Context) (map[string]LabelID, map[LabelID]string, error)
	ListThreads(ctx context.Context, q Query, pageToken string, pageSize int) (ThreadPage, error)
	GetThread(ctx context.Context, id ThreadID, headers []string) (Thread, error)
	BatchModify(ctx context.Context, ids []MessageID, ops ModifyOps) error
	ModifyThread(ctx context.Context, id ThreadID, ops ModifyOps) error
	TrashThread(ctx context.Context, id ThreadID) error
	EnsureLabel(ctx context.Context, name string) (LabelID, error)
	SendMessage(ctx context.Context, to, subject, body string) error
}
