package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"taskflow/internal/model"
)

// wireEvent is one change notification as the service sends it: the event
// kind plus the affected row's new and/or old values.
type wireEvent struct {
	Type string      `json:"type"` // INSERT, UPDATE, DELETE
	New  *model.Task `json:"new,omitempty"`
	Old  *struct {
		ID string `json:"id"`
	} `json:"old,omitempty"`
}

// SubscribeTasks opens the server-sent-event feed for the user's tasks.
// The stream reconnects with exponential backoff until ctx is cancelled;
// the returned channel is closed on cancellation.
func (b *Backend) SubscribeTasks(ctx context.Context, userID string) (<-chan model.TaskChange, error) {
	out := make(chan model.TaskChange, 64)

	go func() {
		defer close(out)
		policy := backoff.WithContext(newFeedBackoff(), ctx)
		for {
			err := b.streamOnce(ctx, userID, out)
			if ctx.Err() != nil {
				return
			}
			wait := policy.NextBackOff()
			if wait == backoff.Stop {
				return
			}
			b.log.Warn().Err(err).Dur("retry_in", wait).Msg("task feed disconnected")
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()

	return out, nil
}

// streamOnce holds one SSE connection open and forwards its events.
func (b *Backend) streamOnce(ctx context.Context, userID string, out chan<- model.TaskChange) error {
	resp, err := b.stream.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		SetQueryParams(map[string]string{
			"table":   "tasks",
			"user_id": "eq." + userID,
		}).
		Get("/realtime/v1/changes")
	if err != nil {
		return fmt.Errorf("open feed: %w", err)
	}
	body := resp.RawBody()
	defer func() { _ = body.Close() }()

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("open feed: status %d", resp.StatusCode())
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var ev wireEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			b.log.Warn().Err(err).Msg("skipping malformed feed event")
			continue
		}
		change, ok := ev.toChange()
		if !ok {
			continue
		}
		select {
		case out <- change:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read feed: %w", err)
	}
	return fmt.Errorf("feed closed by server")
}

// toChange converts the wire representation into a store-level change.
// Updates carry the full new row, rendered as a patch covering every
// field so re-applying it is idempotent.
func (e wireEvent) toChange() (model.TaskChange, bool) {
	switch e.Type {
	case "INSERT":
		if e.New == nil {
			return model.TaskChange{}, false
		}
		return model.TaskChange{Kind: model.ChangeInsert, ID: e.New.ID, Task: e.New}, true
	case "UPDATE":
		if e.New == nil {
			return model.TaskChange{}, false
		}
		return model.TaskChange{Kind: model.ChangeUpdate, ID: e.New.ID, Patch: rowPatch(e.New)}, true
	case "DELETE":
		if e.Old == nil {
			return model.TaskChange{}, false
		}
		return model.TaskChange{Kind: model.ChangeDelete, ID: e.Old.ID}, true
	default:
		return model.TaskChange{}, false
	}
}

// rowPatch renders a full row as a sparse patch touching every column.
func rowPatch(t *model.Task) *model.TaskPatch {
	p := &model.TaskPatch{
		Title:     &t.Title,
		Completed: &t.Completed,
		Priority:  &t.Priority,
	}
	if t.Description != nil {
		p.Description = t.Description
	} else {
		p.ClearDescription = true
	}
	if t.CategoryID != nil {
		p.CategoryID = t.CategoryID
	} else {
		p.ClearCategory = true
	}
	if t.DueDate != nil {
		p.DueDate = t.DueDate
	} else {
		p.ClearDueDate = true
	}
	return p
}

func newFeedBackoff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0 // retry forever
	return policy
}
