// Package runtime adapts the Google API client to the narrow gateway
// surface the engine consumes, and owns credential bootstrap.
package runtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	gc "github.com/joshsymonds/sieve/internal/gmail"
)

type googleClient struct {
	svc *gmail.Service
}

// NewGoogleAPIClient wraps *gmail.Service in the gateway interface.
func NewGoogleAPIClient(svc *gmail.Service) gc.Client { return &googleClient{svc: svc} }

func (g *googleClient) ListLabels(ctx context.Context) (map[string]gc.LabelID, map[gc.LabelID]string, error) {
	res, err := g.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("list labels: %w", err)
	}
	byName := make(map[string]gc.LabelID, len(res.Labels))
	byID := make(map[gc.LabelID]string, len(res.Labels))
	for _, l := range res.Labels {
		byName[l.Name] = gc.LabelID(l.Id)
		byID[gc.LabelID(l.Id)] = l.Name
	}
	return byName, byID, nil
}

func (g *googleClient) ListThreads(ctx context.Context, q gc.Query, pageToken string, pageSize int) (gc.ThreadPage, error) {
	call := g.svc.Users.Threads.List("me").Q(q.Raw).MaxResults(int64(pageSize))
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return gc.ThreadPage{}, fmt.Errorf("list threads: %w", err)
	}
	page := gc.ThreadPage{NextPageToken: res.NextPageToken}
	for _, t := range res.Threads {
		page.Refs = append(page.Refs, gc.ThreadRef{ID: gc.ThreadID(t.Id)})
	}
	return page, nil
}

func (g *googleClient) GetThread(ctx context.Context, id gc.ThreadID, headers []string) (gc.Thread, error) {
	res, err := g.svc.Users.Threads.Get("me", string(id)).
		Format("metadata").
		MetadataHeaders(headers...).
		Context(ctx).Do()
	if err != nil {
		return gc.Thread{}, fmt.Errorf("get thread %s: %w", id, err)
	}
	th := gc.Thread{ID: id, Snippet: res.Snippet}
	for _, m := range res.Messages {
		th.Messages = append(th.Messages, toMessageMeta(m))
	}
	sort.Slice(th.Messages, func(i, j int) bool {
		return th.Messages[i].InternalDate.Before(th.Messages[j].InternalDate)
	})
	return th, nil
}

func toMessageMeta(m *gmail.Message) gc.MessageMeta {
	meta := gc.MessageMeta{
		ID:           gc.MessageID(m.Id),
		ThreadID:     gc.ThreadID(m.ThreadId),
		InternalDate: time.UnixMilli(m.InternalDate),
		Headers:      map[string]string{},
	}
	for _, id := range m.LabelIds {
		lid := gc.LabelID(id)
		meta.Labels = append(meta.Labels, lid)
		if lid == gc.LabelUnread {
			meta.Unread = true
		}
	}
	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			meta.Headers[strings.ToLower(h.Name)] = h.Value
		}
	}
	return meta
}

func (g *googleClient) BatchModify(ctx context.Context, ids []gc.MessageID, ops gc.ModifyOps) error {
	req := &gmail.BatchModifyMessagesRequest{Ids: toStrings(ids)}
	if len(ops.AddLabels) > 0 {
		req.AddLabelIds = toStringsL(ops.AddLabels)
	}
	if len(ops.RemoveLabels) > 0 {
		req.RemoveLabelIds = toStringsL(ops.RemoveLabels)
	}
	if err := g.svc.Users.Messages.BatchModify("me", req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("batch modify: %w", err)
	}
	return nil
}

func (g *googleClient) ModifyThread(ctx context.Context, id gc.ThreadID, ops gc.ModifyOps) error {
	req := &gmail.ModifyThreadRequest{
		AddLabelIds:    toStringsL(ops.AddLabels),
		RemoveLabelIds: toStringsL(ops.RemoveLabels),
	}
	if _, err := g.svc.Users.Threads.Modify("me", string(id), req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("modify thread %s: %w", id, err)
	}
	return nil
}

func (g *googleClient) TrashThread(ctx context.Context, id gc.ThreadID) error {
	if _, err := g.svc.Users.Threads.Trash("me", string(id)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("trash thread %s: %w", id, err)
	}
	return nil
}

func (g *googleClient) EnsureLabel(ctx context.Context, name string) (gc.LabelID, error) {
	byName, _, err := g.ListLabels(ctx)
	if err != nil {
		return "", err
	}
	if id, ok := byName[name]; ok {
		return id, nil
	}
	created, err := g.svc.Users.Labels.Create("me", &gmail.Label{Name: name}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create label %q: %w", name, err)
	}
	return gc.LabelID(created.Id), nil
}

func (g *googleClient) SendMessage(ctx context.Context, to, subject, body string) error {
	raw := strings.Join([]string{
		"To: " + to,
		"Subject: " + subject,
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw))}
	if _, err := g.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func toStrings(ids []gc.MessageID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func toStringsL(ids []gc.LabelID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
