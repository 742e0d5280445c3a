package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// fakeStore is an in-memory Store that counts calls and can inject failures.
type fakeStore struct {
	mu sync.Mutex

	entities map[EntityKind][]NamedEntity
	contacts []Contact
	notes    []Note
	calls    map[string]int
	seq      int

	findErr           error
	createEntityErr   map[string]error // keyed by lower(name)
	createContactErr  map[string]error // keyed by contact name
	lastQuery         Query
	usage             map[string]int64
	countContactsErr  error
	recentSinceCalled *time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entities:         map[EntityKind][]NamedEntity{},
		calls:            map[string]int{},
		createEntityErr:  map[string]error{},
		createContactErr: map[string]error{},
		usage:            map[string]int64{},
	}
}

func (f *fakeStore) call(name string) {
	f.calls[name]++
}

func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) seed(kind EntityKind, owner, name string) NamedEntity {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := NamedEntity{ID: f.nextID(string(kind)), OwnerID: owner, Name: name}
	f.entities[kind] = append(f.entities[kind], e)
	return e
}

func (f *fakeStore) named(kind EntityKind, owner string) []NamedEntity {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []NamedEntity
	for _, e := range f.entities[kind] {
		if e.OwnerID == owner {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeStore) Dialect() Dialect { return DialectPostgres }

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) FindNamedEntities(_ context.Context, owner string, kind EntityKind) ([]NamedEntity, error) {
	f.mu.Lock()
	f.call("FindNamedEntities")
	err := f.findErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.named(kind, owner), nil
}

func (f *fakeStore) CreateNamedEntity(_ context.Context, owner string, kind EntityKind, name string) (NamedEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("CreateNamedEntity")
	if err := f.createEntityErr[strings.ToLower(name)]; err != nil {
		return NamedEntity{}, err
	}
	for _, e := range f.entities[kind] {
		if e.OwnerID == owner && strings.EqualFold(e.Name, name) {
			return NamedEntity{}, ErrConflict
		}
	}
	e := NamedEntity{ID: f.nextID(string(kind)), OwnerID: owner, Name: name}
	f.entities[kind] = append(f.entities[kind], e)
	return e, nil
}

func (f *fakeStore) RenameNamedEntity(_ context.Context, owner string, kind EntityKind, id, name string) (NamedEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("RenameNamedEntity")
	for i, e := range f.entities[kind] {
		if e.OwnerID == owner && e.ID == id {
			f.entities[kind][i].Name = name
			return f.entities[kind][i], nil
		}
	}
	return NamedEntity{}, ErrNotFound
}

func (f *fakeStore) DeleteNamedEntity(_ context.Context, owner string, kind EntityKind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("DeleteNamedEntity")
	list := f.entities[kind]
	for i, e := range list {
		if e.OwnerID == owner && e.ID == id {
			f.entities[kind] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) CountNamedEntityUsage(_ context.Context, _ string, _ EntityKind, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("CountNamedEntityUsage")
	return f.usage[id], nil
}

func (f *fakeStore) CreateContact(_ context.Context, owner string, in ContactInput) (Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("CreateContact")
	if err := f.createContactErr[in.Name]; err != nil {
		return Contact{}, err
	}
	c := Contact{
		ID:             f.nextID("contact"),
		OwnerID:        owner,
		Name:           in.Name,
		ContactFields:  in.ContactFields,
		CustomFields:   in.CustomFields,
		MetAt:          in.MetAt,
		MeetingPlaceID: in.MeetingPlaceID,
		Links:          in.Links,
	}
	for _, id := range in.TagIDs {
		c.Tags = append(c.Tags, NamedEntity{ID: id, OwnerID: owner})
	}
	f.contacts = append(f.contacts, c)
	return c, nil
}

func (f *fakeStore) QueryContacts(_ context.Context, q Query) ([]Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("QueryContacts")
	f.lastQuery = q
	owner, _ := q.Args[0].(string)
	var out []Contact
	for _, c := range f.contacts {
		if c.OwnerID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetContact(_ context.Context, owner, id string) (Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("GetContact")
	for _, c := range f.contacts {
		if c.OwnerID == owner && c.ID == id {
			return c, nil
		}
	}
	return Contact{}, ErrNotFound
}

func (f *fakeStore) UpdateContact(_ context.Context, owner, id string, p ContactPatch) (Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("UpdateContact")
	for i, c := range f.contacts {
		if c.OwnerID != owner || c.ID != id {
			continue
		}
		if p.Name != nil {
			c.Name = *p.Name
		}
		if p.TagIDs != nil {
			c.Tags = nil
			for _, tid := range *p.TagIDs {
				c.Tags = append(c.Tags, NamedEntity{ID: tid, OwnerID: owner})
			}
		}
		f.contacts[i] = c
		return c, nil
	}
	return Contact{}, ErrNotFound
}

func (f *fakeStore) DeleteContact(_ context.Context, owner, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("DeleteContact")
	for i, c := range f.contacts {
		if c.OwnerID == owner && c.ID == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) DeleteAllContacts(_ context.Context, owner string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("DeleteAllContacts")
	var kept []Contact
	var n int64
	for _, c := range f.contacts {
		if c.OwnerID == owner {
			n++
			continue
		}
		kept = append(kept, c)
	}
	f.contacts = kept
	return n, nil
}

func (f *fakeStore) SetContactPhoto(_ context.Context, owner, id string, photo *string) (Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("SetContactPhoto")
	for i, c := range f.contacts {
		if c.OwnerID == owner && c.ID == id {
			f.contacts[i].Photo = photo
			return f.contacts[i], nil
		}
	}
	return Contact{}, ErrNotFound
}

func (f *fakeStore) CreateNote(_ context.Context, _, contactID, title, description string) (Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("CreateNote")
	n := Note{ID: f.nextID("note"), ContactID: contactID, Title: title, Description: description}
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *fakeStore) UpdateNote(_ context.Context, _, contactID, noteID string, title, description *string) (Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("UpdateNote")
	for i, n := range f.notes {
		if n.ID == noteID && n.ContactID == contactID {
			if title != nil {
				f.notes[i].Title = *title
			}
			if description != nil {
				f.notes[i].Description = *description
			}
			return f.notes[i], nil
		}
	}
	return Note{}, ErrNotFound
}

func (f *fakeStore) DeleteNote(_ context.Context, _, contactID, noteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("DeleteNote")
	for i, n := range f.notes {
		if n.ID == noteID && n.ContactID == contactID {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) CountContacts(_ context.Context, owner string, since *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("CountContacts")
	if f.countContactsErr != nil {
		return 0, f.countContactsErr
	}
	if since != nil {
		s := *since
		f.recentSinceCalled = &s
	}
	var n int64
	for _, c := range f.contacts {
		if c.OwnerID == owner && (since == nil || !c.CreatedAt.Before(*since)) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountNamedEntities(_ context.Context, owner string, kind EntityKind) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("CountNamedEntities")
	var n int64
	for _, e := range f.entities[kind] {
		if e.OwnerID == owner {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountNotes(context.Context, string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.call("CountNotes")
	return int64(len(f.notes)), nil
}
