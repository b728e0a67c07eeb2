package models

import "time"

// Ref is a populated cross-reference, filled in by list and get queries.
type Ref struct {
	ID    string `bson:"id" json:"id"`
	Label string `bson:"label" json:"label"`
}

// Base carries the identity and timestamps shared by every document.
type Base struct {
	ID        string         `bson:"id" json:"id"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
	Refs      map[string]Ref `bson:"refs,omitempty" json:"refs,omitempty"`
}

// Entity is implemented by every persisted model through its embedded Base.
type Entity interface {
	GetID() string
	SetID(id string)
	Stamp(now time.Time)
	Detach()
}

func (b *Base) GetID() string   { return b.ID }
func (b *Base) SetID(id string) { b.ID = id }

// Stamp sets CreatedAt on first write and always refreshes UpdatedAt.
func (b *Base) Stamp(now time.Time) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Detach drops populated references so they are never written back.
func (b *Base) Detach() { b.Refs = nil }

// Ref returns the populated reference with the given name, if any.
func (b *Base) Ref(name string) (Ref, bool) {
	r, ok := b.Refs[name]
	return r, ok
}
