package core

import (
	"context"
	"time"
)

// EntityStore persists tags and meeting places. Implementations return
// ErrConflict when a create or rename collides with an existing
// case-insensitive name, and ErrNotFound for unknown ids.
type EntityStore interface {
	FindNamedEntities(ctx context.Context, ownerID string, kind EntityKind) ([]NamedEntity, error)
	CreateNamedEntity(ctx context.Context, ownerID string, kind EntityKind, name string) (NamedEntity, error)
	RenameNamedEntity(ctx context.Context, ownerID string, kind EntityKind, id, name string) (NamedEntity, error)
	DeleteNamedEntity(ctx context.Context, ownerID string, kind EntityKind, id string) error
	CountNamedEntityUsage(ctx context.Context, ownerID string, kind EntityKind, id string) (int64, error)
}

// ContactStore persists contacts. CreateContact writes the contact, its tag
// associations and its links atomically.
type ContactStore interface {
	CreateContact(ctx context.Context, ownerID string, in ContactInput) (Contact, error)
	QueryContacts(ctx context.Context, q Query) ([]Contact, error)
	GetContact(ctx context.Context, ownerID, id string) (Contact, error)
	UpdateContact(ctx context.Context, ownerID, id string, p ContactPatch) (Contact, error)
	DeleteContact(ctx context.Context, ownerID, id string) error
	DeleteAllContacts(ctx context.Context, ownerID string) (int64, error)
	SetContactPhoto(ctx context.Context, ownerID, id string, photo *string) (Contact, error)
}

// NoteStore persists notes. Every call is scoped through the owning contact.
type NoteStore interface {
	CreateNote(ctx context.Context, ownerID, contactID, title, description string) (Note, error)
	UpdateNote(ctx context.Context, ownerID, contactID, noteID string, title, description *string) (Note, error)
	DeleteNote(ctx context.Context, ownerID, contactID, noteID string) error
}

// StatsStore answers the aggregate counts behind Service.Stats.
type StatsStore interface {
	CountContacts(ctx context.Context, ownerID string, since *time.Time) (int64, error)
	CountNamedEntities(ctx context.Context, ownerID string, kind EntityKind) (int64, error)
	CountNotes(ctx context.Context, ownerID string) (int64, error)
}

// Store is the full storage collaborator used by Service.
type Store interface {
	EntityStore
	ContactStore
	NoteStore
	StatsStore

	Dialect() Dialect
	Ping(ctx context.Context) error
}
