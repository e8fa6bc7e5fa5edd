package model

import (
	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/ref"
)

// User is a member of the directory.
type User struct {
	ID        string
	Name      string
	Email     string
	PhotoURL  string
	Bio       string
	Interests []string

	FollowedAssociations *ref.Collection[*Association]
	SavedEvents          *ref.Collection[*Event]
}

// NewUser returns a user with empty relationships.
func NewUser(id string) *User {
	return &User{
		ID:                   id,
		Interests:            []string{},
		FollowedAssociations: ref.NewCollection(Associations),
		SavedEvents:          ref.NewCollection(Events),
	}
}

// UID implements ref.Entity.
func (u *User) UID() string {
	return u.ID
}

// HydrateUser builds a user from a stored document.
func HydrateUser(id string, doc document.Document) *User {
	return &User{
		ID:                   id,
		Name:                 doc.String("name"),
		Email:                doc.String("email"),
		PhotoURL:             doc.String("photoUrl"),
		Bio:                  doc.String("bio"),
		Interests:            doc.Strings("interests"),
		FollowedAssociations: ref.NewCollection(Associations, doc.Strings("followedAssociations")...),
		SavedEvents:          ref.NewCollection(Events, doc.Strings("savedEvents")...),
	}
}

// Document returns the stored form of the user.
func (u *User) Document() document.Document {
	doc := document.Document{
		"name":      u.Name,
		"email":     u.Email,
		"photoUrl":  u.PhotoURL,
		"bio":       u.Bio,
		"interests": stringList(u.Interests),
	}
	if u.FollowedAssociations != nil {
		doc["followedAssociations"] = stringList(u.FollowedAssociations.IDs())
	}
	if u.SavedEvents != nil {
		doc["savedEvents"] = stringList(u.SavedEvents.IDs())
	}
	return doc
}
