package activity

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Event is a single auditable action performed in the console.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Valid reports whether the event carries the fields every sink needs.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectType != ""
}

// NormalizeEvent trims identifiers, clones mutable fields and stamps
// OccurredAt when unset.
func NormalizeEvent(evt Event) Event {
	evt.Verb = strings.TrimSpace(evt.Verb)
	evt.ActorID = strings.TrimSpace(evt.ActorID)
	evt.UserID = strings.TrimSpace(evt.UserID)
	evt.TenantID = strings.TrimSpace(evt.TenantID)
	evt.ObjectType = strings.TrimSpace(evt.ObjectType)
	evt.ObjectID = strings.TrimSpace(evt.ObjectID)
	evt.Channel = strings.TrimSpace(evt.Channel)
	evt.DefinitionCode = strings.TrimSpace(evt.DefinitionCode)
	evt.Recipients = slices.Clone(evt.Recipients)
	if evt.Metadata != nil {
		evt.Metadata = maps.Clone(evt.Metadata)
	} else {
		evt.Metadata = map[string]any{}
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	return evt
}
