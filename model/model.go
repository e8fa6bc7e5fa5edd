// Package model defines the directory entities and their stored form.
//
// Hydration is total and shallow. Relationship fields are hydrated into
// unresolved references holding only ids, so the cycle between users,
// associations and events is never followed implicitly.
package model

import (
	"github.com/nasdf/campus/ref"
)

// Collection names.
const (
	UsersCollection        = "users"
	AssociationsCollection = "associations"
	EventsCollection       = "events"
)

var (
	// Users describes how users are stored.
	Users = &ref.Kind[*User]{Collection: UsersCollection}
	// Associations describes how associations are stored.
	Associations = &ref.Kind[*Association]{Collection: AssociationsCollection}
	// Events describes how events are stored.
	Events = &ref.Kind[*Event]{Collection: EventsCollection}
)

// hydrate functions refer to the other kinds
func init() {
	Users.Hydrate = HydrateUser
	Users.Serialize = (*User).Document
	Associations.Hydrate = HydrateAssociation
	Associations.Serialize = (*Association).Document
	Events.Hydrate = HydrateEvent
	Events.Serialize = (*Event).Document
}

// stringList returns an []any holding the given strings.
func stringList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
