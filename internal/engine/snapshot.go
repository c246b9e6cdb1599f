package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/joshsymonds/sieve/internal/gmail"
)

// snapshotHeaders is the metadata fetched per message. Everything the
// matchers consult must be listed here.
var snapshotHeaders = []string{
	"From", "To", "Cc", "Subject", "List-Id", "Sender", "Reply-To", "Precedence",
}

// Snapshot is the read-only mailbox view one cycle evaluates against.
type Snapshot struct {
	Threads    []gmail.Thread
	LabelNames map[gmail.LabelID]string
	LabelIDs   map[string]gmail.LabelID
}

// messageLabels returns the lower-cased label names a message carries.
func (s Snapshot) messageLabels(m gmail.MessageMeta) map[string]struct{} {
	out := make(map[string]struct{}, len(m.Labels))
	for _, id := range m.Labels {
		name, ok := s.LabelNames[id]
		if !ok {
			name = string(id)
		}
		out[strings.ToLower(name)] = struct{}{}
	}
	return out
}

// threadLabels is the union of message labels across the thread.
func (s Snapshot) threadLabels(t gmail.Thread) map[string]struct{} {
	out := map[string]struct{}{}
	for _, m := range t.Messages {
		for name := range s.messageLabels(m) {
			out[name] = struct{}{}
		}
	}
	return out
}

// buildSnapshot pulls up to maxThreads candidate threads. A failed thread
// fetch is recorded and the thread excluded; the cycle continues. Each
// gateway call is a single attempt.
func (s *Service) buildSnapshot(ctx context.Context, q gmail.Query, pageSize, maxThreads int) (Snapshot, []string) {
	var errs []string
	snap := Snapshot{}

	if err := s.wait(ctx); err != nil {
		return snap, append(errs, err.Error())
	}
	byName, byID, err := s.Client.ListLabels(ctx)
	if err != nil {
		return snap, append(errs, fmt.Sprintf("gateway: list labels: %v", err))
	}
	snap.LabelIDs = byName
	snap.LabelNames = byID

	var refs []gmail.ThreadRef
	token := ""
	for len(refs) < maxThreads {
		if err := s.wait(ctx); err != nil {
			return snap, append(errs, err.Error())
		}
		page, err := s.Client.ListThreads(ctx, q, token, pageSize)
		if err != nil {
			errs = append(errs, fmt.Sprintf("gateway: list threads: %v", err))
			break
		}
		refs = append(refs, page.Refs...)
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	if len(refs) > maxThreads {
		refs = refs[:maxThreads]
	}

	for _, ref := range refs {
		if err := s.wait(ctx); err != nil {
			errs = append(errs, err.Error())
			return snap, errs
		}
		th, err := s.Client.GetThread(ctx, ref.ID, snapshotHeaders)
		if err != nil {
			errs = append(errs, fmt.Sprintf("gateway: get thread %s: %v", ref.ID, err))
			continue
		}
		if len(th.Messages) == 0 {
			continue
		}
		snap.Threads = append(snap.Threads, th)
	}
	return snap, errs
}
