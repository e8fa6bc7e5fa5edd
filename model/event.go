package model

import (
	"time"

	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/ref"
)

// Event is an event hosted by one or more associations.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	ImageURL    string
	Start       time.Time
	End         time.Time
	Tags        []string

	Host         *ref.Reference[*User]
	Organizers   *ref.Collection[*Association]
	Participants *ref.Collection[*User]
}

// NewEvent returns an event with empty relationships.
func NewEvent(id string) *Event {
	return &Event{
		ID:           id,
		Tags:         []string{},
		Host:         ref.NewReference(Users, ""),
		Organizers:   ref.NewCollection(Associations),
		Participants: ref.NewCollection(Users),
	}
}

// UID implements ref.Entity.
func (e *Event) UID() string {
	return e.ID
}

// Duration returns the length of the event or zero if the end is unknown.
func (e *Event) Duration() time.Duration {
	if e.Start.IsZero() || e.End.Before(e.Start) {
		return 0
	}
	return e.End.Sub(e.Start)
}

// HydrateEvent builds an event from a stored document.
func HydrateEvent(id string, doc document.Document) *Event {
	return &Event{
		ID:           id,
		Title:        doc.String("title"),
		Description:  doc.String("description"),
		Location:     doc.String("location"),
		ImageURL:     doc.String("imageUrl"),
		Start:        doc.Time("start"),
		End:          doc.Time("end"),
		Tags:         doc.Strings("tags"),
		Host:         ref.NewReference(Users, doc.String("host")),
		Organizers:   ref.NewCollection(Associations, doc.Strings("organizers")...),
		Participants: ref.NewCollection(Users, doc.Strings("participants")...),
	}
}

// Document returns the stored form of the event.
func (e *Event) Document() document.Document {
	doc := document.Document{
		"title":       e.Title,
		"description": e.Description,
		"location":    e.Location,
		"imageUrl":    e.ImageURL,
		"tags":        stringList(e.Tags),
	}
	if !e.Start.IsZero() {
		doc["start"] = document.FormatTime(e.Start)
	}
	if !e.End.IsZero() {
		doc["end"] = document.FormatTime(e.End)
	}
	if e.Host != nil && e.Host.ID() != "" {
		doc["host"] = e.Host.ID()
	}
	if e.Organizers != nil {
		doc["organizers"] = stringList(e.Organizers.IDs())
	}
	if e.Participants != nil {
		doc["participants"] = stringList(e.Participants.IDs())
	}
	return doc
}
