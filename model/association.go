package model

import (
	"time"

	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/ref"
)

// Association is a student association.
type Association struct {
	ID          string
	Name        string
	Acronym     string
	Description string
	LogoURL     string
	CreatedAt   time.Time

	Members *ref.Collection[*User]
	Events  *ref.Collection[*Event]
}

// NewAssociation returns an association with empty relationships.
func NewAssociation(id string) *Association {
	return &Association{
		ID:      id,
		Members: ref.NewCollection(Users),
		Events:  ref.NewCollection(Events),
	}
}

// UID implements ref.Entity.
func (a *Association) UID() string {
	return a.ID
}

// DisplayName returns the acronym if set and the name otherwise.
func (a *Association) DisplayName() string {
	if a.Acronym != "" {
		return a.Acronym
	}
	return a.Name
}

// HydrateAssociation builds an association from a stored document.
func HydrateAssociation(id string, doc document.Document) *Association {
	return &Association{
		ID:          id,
		Name:        doc.String("name"),
		Acronym:     doc.String("acronym"),
		Description: doc.String("description"),
		LogoURL:     doc.String("logoUrl"),
		CreatedAt:   doc.Time("createdAt"),
		Members:     ref.NewCollection(Users, doc.Strings("members")...),
		Events:      ref.NewCollection(Events, doc.Strings("events")...),
	}
}

// Document returns the stored form of the association.
func (a *Association) Document() document.Document {
	doc := document.Document{
		"name":        a.Name,
		"acronym":     a.Acronym,
		"description": a.Description,
		"logoUrl":     a.LogoURL,
	}
	if !a.CreatedAt.IsZero() {
		doc["createdAt"] = document.FormatTime(a.CreatedAt)
	}
	if a.Members != nil {
		doc["members"] = stringList(a.Members.IDs())
	}
	if a.Events != nil {
		doc["events"] = stringList(a.Events.IDs())
	}
	return doc
}
