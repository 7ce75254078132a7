package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Term names a descriptive field of a collection.
type Term string

const (
	TermTitle        Term = "title"
	TermDescription  Term = "description"
	TermDateUploaded Term = "date_uploaded"
	TermDateModified Term = "date_modified"
)

// Collectible is implemented by anything that can be placed in a collection.
type Collectible interface {
	MemberID() uuid.UUID
}

// Owned is implemented by resources that carry a depositor.
type Owned interface {
	DepositorID() uuid.UUID
}

type Collection struct {
	ID           uuid.UUID   `json:"id"`
	Depositor    uuid.UUID   `json:"depositor"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Members      []uuid.UUID `json:"members"`
	DateUploaded time.Time   `json:"date_uploaded"`
	DateModified time.Time   `json:"date_modified"`
}

func NewCollection(depositor uuid.UUID) *Collection {
	return &Collection{
		Depositor: depositor,
		Members:   []uuid.UUID{},
	}
}

// DepositorID is uuid.Nil on a nil collection, which nobody owns.
func (c *Collection) DepositorID() uuid.UUID {
	if c == nil {
		return uuid.Nil
	}
	return c.Depositor
}

// CollectionRef identifies a collection without exposing its description or
// membership.
type CollectionRef struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	DateUploaded time.Time `json:"date_uploaded"`
	DateModified time.Time `json:"date_modified"`
}

func (c *Collection) Ref() CollectionRef {
	return CollectionRef{
		ID:           c.ID,
		Title:        c.Title,
		DateUploaded: c.DateUploaded,
		DateModified: c.DateModified,
	}
}

// SetMembers replaces the membership list, keeping the given order.
func (c *Collection) SetMembers(members ...Collectible) {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.MemberID())
	}
	c.Members = ids
}

func (c *Collection) AddMember(m Collectible) {
	c.Members = append(c.Members, m.MemberID())
}

// RemoveMember drops the first occurrence of m. It reports whether anything
// was removed.
func (c *Collection) RemoveMember(m Collectible) bool {
	i := slices.Index(c.Members, m.MemberID())
	if i < 0 {
		return false
	}
	c.Members = slices.Delete(c.Members, i, i+1)
	return true
}

func (c *Collection) HasMember(id uuid.UUID) bool {
	return slices.Contains(c.Members, id)
}

// Touch records a save at now. DateUploaded is only ever set once.
func (c *Collection) Touch(now time.Time) {
	if c.DateUploaded.IsZero() {
		c.DateUploaded = now
	}
	c.DateModified = now
}

// Clone returns a deep copy, so membership edits on the copy never leak back.
func (c *Collection) Clone() *Collection {
	cp := *c
	cp.Members = slices.Clone(c.Members)
	if cp.Members == nil {
		cp.Members = []uuid.UUID{}
	}
	return &cp
}

func (c *Collection) TermsForDisplay() []Term {
	return []Term{TermTitle, TermDescription, TermDateUploaded, TermDateModified}
}

func (c *Collection) TermsForEditing() []Term {
	return []Term{TermTitle, TermDescription}
}
