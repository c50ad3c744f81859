// Package usersink forwards console activity into a go-users activity sink.
package usersink

import (
	"context"
	"maps"
	"slices"

	"github.com/goliatone/go-admin-console/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Sink is the subset of the go-users activity sink the hook writes to.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook adapts a Sink to activity.Hook.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify converts evt into an ActivityRecord. Events without a verb or
// object type, or a hook without a sink, are ignored.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if !evt.Valid() {
		return nil
	}
	data := maps.Clone(evt.Metadata)
	if data == nil {
		data = map[string]any{}
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = slices.Clone(evt.Recipients)
	}
	return h.Sink.Log(ctx, types.ActivityRecord{
		ActorID:    parseID(evt.ActorID),
		UserID:     parseID(evt.UserID),
		TenantID:   parseID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	})
}

func parseID(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
