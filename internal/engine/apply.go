package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/joshsymonds/sieve/internal/gmail"
)

// batchModify allows 1000 messages per call.
const modifyChunk = 1000

// applyIntents sends the emitted intents to the gateway. Message-level label
// changes are merged per message, grouped by identical add/remove sets, and
// applied through chunked batch modifies; thread-level moves and deletes go
// out one call each. Failures are recorded and the rest still applies.
func (s *Service) applyIntents(ctx context.Context, snap Snapshot, msgIntents, threadIntents []ActionIntent) []string {
	var errs []string
	labelCache := map[string]gmail.LabelID{}
	for name, id := range snap.LabelIDs {
		labelCache[name] = id
	}

	ensure := func(name string) (gmail.LabelID, error) {
		if id, ok := labelCache[name]; ok {
			return id, nil
		}
		if err := s.wait(ctx); err != nil {
			return "", err
		}
		id, err := s.Client.EnsureLabel(ctx, name)
		if err != nil {
			return "", err
		}
		labelCache[name] = id
		return id, nil
	}

	// Merge message intents into one ops set per message.
	type msgOps struct {
		id     gmail.MessageID
		add    map[gmail.LabelID]struct{}
		remove map[gmail.LabelID]struct{}
	}
	var order []gmail.MessageID
	byMessage := map[gmail.MessageID]*msgOps{}
	opsFor := func(id gmail.MessageID) *msgOps {
		if mo, ok := byMessage[id]; ok {
			return mo
		}
		mo := &msgOps{
			id:     id,
			add:    map[gmail.LabelID]struct{}{},
			remove: map[gmail.LabelID]struct{}{},
		}
		byMessage[id] = mo
		order = append(order, id)
		return mo
	}

	for _, in := range msgIntents {
		mo := opsFor(gmail.MessageID(in.TargetID))
		switch in.Action {
		case ActionStar:
			mo.add[gmail.LabelStarred] = struct{}{}
		case ActionFlag:
			mo.add[gmail.LabelImportant] = struct{}{}
		case ActionMove:
			dest, err := ensure(in.Destination)
			if err != nil {
				errs = append(errs, fmt.Sprintf("gateway: ensure label %q: %v", in.Destination, err))
				continue
			}
			mo.add[dest] = struct{}{}
			mo.remove[gmail.LabelInbox] = struct{}{}
		}
	}

	// Group messages by identical ops, preserving first-seen order.
	type group struct {
		ops gmail.ModifyOps
		ids []gmail.MessageID
	}
	var groupOrder []string
	groups := map[string]*group{}
	for _, id := range order {
		mo := byMessage[id]
		if len(mo.add) == 0 && len(mo.remove) == 0 {
			continue
		}
		ops := gmail.ModifyOps{
			AddLabels:    sortedLabels(mo.add),
			RemoveLabels: sortedLabels(mo.remove),
		}
		key := opsKey(ops)
		g, ok := groups[key]
		if !ok {
			g = &group{ops: ops}
			groups[key] = g
			groupOrder = append(groupOrder, key)
		}
		g.ids = append(g.ids, id)
	}

	for _, key := range groupOrder {
		g := groups[key]
		for i := 0; i < len(g.ids); i += modifyChunk {
			j := min(i+modifyChunk, len(g.ids))
			if err := s.wait(ctx); err != nil {
				return append(errs, err.Error())
			}
			if err := s.Client.BatchModify(ctx, g.ids[i:j], g.ops); err != nil {
				errs = append(errs, fmt.Sprintf("gateway: batch modify %d messages: %v", j-i, err))
			}
		}
	}

	for _, in := range threadIntents {
		if err := s.wait(ctx); err != nil {
			return append(errs, err.Error())
		}
		id := gmail.ThreadID(in.TargetID)
		switch in.Action {
		case ActionMove:
			dest, err := ensure(in.Destination)
			if err != nil {
				errs = append(errs, fmt.Sprintf("gateway: ensure label %q: %v", in.Destination, err))
				continue
			}
			ops := gmail.ModifyOps{
				AddLabels:    []gmail.LabelID{dest},
				RemoveLabels: []gmail.LabelID{gmail.LabelInbox},
			}
			if err := s.Client.ModifyThread(ctx, id, ops); err != nil {
				errs = append(errs, fmt.Sprintf("gateway: move thread %s: %v", id, err))
			}
		case ActionDelete:
			if err := s.Client.TrashThread(ctx, id); err != nil {
				errs = append(errs, fmt.Sprintf("gateway: delete thread %s: %v", id, err))
			}
		}
	}
	return errs
}

func sortedLabels(set map[gmail.LabelID]struct{}) []gmail.LabelID {
	out := make([]gmail.LabelID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func opsKey(ops gmail.ModifyOps) string {
	var b strings.Builder
	for _, id := range ops.AddLabels {
		b.WriteString("+" + string(id))
	}
	for _, id := range ops.RemoveLabels {
		b.WriteString("-" + string(id))
	}
	return b.String()
}
