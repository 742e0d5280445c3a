package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultImportTimeout bounds a single import batch once it has started.
const DefaultImportTimeout = 2 * time.Minute

// RecentWindow is the look-back period for Stats.RecentContacts.
const RecentWindow = 30 * 24 * time.Hour

// Service provides the core business logic for contact management.
type Service struct {
	store         Store
	limiter       *ImportLimiter
	importTimeout time.Duration
	now           func() time.Time
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithImportLimiter bounds concurrent import batches.
func WithImportLimiter(l *ImportLimiter) ServiceOption {
	return func(s *Service) { s.limiter = l }
}

// WithImportTimeout overrides DefaultImportTimeout.
func WithImportTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.importTimeout = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service instance.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:         store,
		importTimeout: DefaultImportTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the import limiter, or nil if imports are unbounded.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Ping checks that storage is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ============================================================================
// Contacts
// ============================================================================

// CreateContact stores a single contact. The name is required and trimmed.
func (s *Service) CreateContact(ctx context.Context, ownerID string, in ContactInput) (Contact, error) {
	name, err := ValidateName("name", in.Name)
	if err != nil {
		return Contact{}, &ValidationError{Field: "name", Err: ErrMissingName}
	}
	in.Name = name
	if in.MetAt.IsZero() {
		in.MetAt = s.now()
	}
	if in.MeetingPlaceID != nil && *in.MeetingPlaceID == "" {
		in.MeetingPlaceID = nil
	}
	in.TagIDs = dedupe(in.TagIDs)
	if err := validateLinks(in.Links); err != nil {
		return Contact{}, err
	}
	return s.store.CreateContact(ctx, ownerID, in)
}

// GetContact returns one contact including its notes, newest first.
func (s *Service) GetContact(ctx context.Context, ownerID, id string) (Contact, error) {
	return s.store.GetContact(ctx, ownerID, id)
}

// UpdateContact applies a partial update.
func (s *Service) UpdateContact(ctx context.Context, ownerID, id string, p ContactPatch) (Contact, error) {
	if p.Name != nil {
		name, err := ValidateName("name", *p.Name)
		if err != nil {
			return Contact{}, &ValidationError{Field: "name", Err: ErrMissingName}
		}
		p.Name = &name
	}
	if p.TagIDs != nil {
		ids := dedupe(*p.TagIDs)
		p.TagIDs = &ids
	}
	if p.Links != nil {
		if err := validateLinks(*p.Links); err != nil {
			return Contact{}, err
		}
	}
	return s.store.UpdateContact(ctx, ownerID, id, p)
}

// DeleteContact removes a contact with its links, tag associations and notes.
func (s *Service) DeleteContact(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteContact(ctx, ownerID, id)
}

// DeleteAllContacts removes every contact of the owner and returns how many were removed.
func (s *Service) DeleteAllContacts(ctx context.Context, ownerID string) (int64, error) {
	return s.store.DeleteAllContacts(ctx, ownerID)
}

// SetContactPhoto stores a photo reference; nil or blank clears it.
func (s *Service) SetContactPhoto(ctx context.Context, ownerID, id string, photo *string) (Contact, error) {
	return s.store.SetContactPhoto(ctx, ownerID, id, TrimOptional(photo))
}

// ============================================================================
// Tags and meeting places
// ============================================================================

// ListNamed returns the owner's entities of kind ordered by name.
func (s *Service) ListNamed(ctx context.Context, ownerID string, kind EntityKind) ([]NamedEntity, error) {
	return s.store.FindNamedEntities(ctx, ownerID, kind)
}

// CreateNamed creates a tag or meeting place. A case-insensitive duplicate
// yields ErrConflict.
func (s *Service) CreateNamed(ctx context.Context, ownerID string, kind EntityKind, name string) (NamedEntity, error) {
	name, err := ValidateName("name", name)
	if err != nil {
		return NamedEntity{}, err
	}
	e, err := s.store.CreateNamedEntity(ctx, ownerID, kind, name)
	if err != nil {
		return NamedEntity{}, fmt.Errorf("create %s: %w", kind.Label(), err)
	}
	return e, nil
}

// RenameNamed renames a tag or meeting place.
func (s *Service) RenameNamed(ctx context.Context, ownerID string, kind EntityKind, id, name string) (NamedEntity, error) {
	name, err := ValidateName("name", name)
	if err != nil {
		return NamedEntity{}, err
	}
	e, err := s.store.RenameNamedEntity(ctx, ownerID, kind, id, name)
	if err != nil {
		return NamedEntity{}, fmt.Errorf("rename %s: %w", kind.Label(), err)
	}
	return e, nil
}

// DeleteNamed deletes a tag or meeting place that no contact references.
func (s *Service) DeleteNamed(ctx context.Context, ownerID string, kind EntityKind, id string) error {
	n, err := s.store.CountNamedEntityUsage(ctx, ownerID, kind, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &InUseError{Kind: kind, Count: n}
	}
	return s.store.DeleteNamedEntity(ctx, ownerID, kind, id)
}

// ============================================================================
// Notes
// ============================================================================

// CreateNote attaches a note to a contact. Title and description are trimmed.
func (s *Service) CreateNote(ctx context.Context, ownerID, contactID, title, description string) (Note, error) {
	title, err := ValidateName("title", title)
	if err != nil {
		return Note{}, err
	}
	return s.store.CreateNote(ctx, ownerID, contactID, title, strings.TrimSpace(description))
}

// UpdateNote changes the non-nil fields of a note.
func (s *Service) UpdateNote(ctx context.Context, ownerID, contactID, noteID string, title, description *string) (Note, error) {
	if title != nil {
		t, err := ValidateName("title", *title)
		if err != nil {
			return Note{}, err
		}
		title = &t
	}
	if description != nil {
		d := strings.TrimSpace(*description)
		description = &d
	}
	return s.store.UpdateNote(ctx, ownerID, contactID, noteID, title, description)
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, ownerID, contactID, noteID string) error {
	return s.store.DeleteNote(ctx, ownerID, contactID, noteID)
}

// ============================================================================
// Stats
// ============================================================================

// Stats gathers the owner's totals. The counts run concurrently.
func (s *Service) Stats(ctx context.Context, ownerID string) (Stats, error) {
	var st Stats
	since := s.now().Add(-RecentWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalContacts, err = s.store.CountContacts(gctx, ownerID, nil)
		return err
	})
	g.Go(func() (err error) {
		st.RecentContacts, err = s.store.CountContacts(gctx, ownerID, &since)
		return err
	})
	g.Go(func() (err error) {
		st.TotalTags, err = s.store.CountNamedEntities(gctx, ownerID, KindTag)
		return err
	})
	g.Go(func() (err error) {
		st.TotalMeetingPlaces, err = s.store.CountNamedEntities(gctx, ownerID, KindMeetingPlace)
		return err
	})
	g.Go(func() (err error) {
		st.TotalNotes, err = s.store.CountNotes(gctx, ownerID)
		return err
	})

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func validateLinks(links []Link) error {
	for i, l := range links {
		if err := ValidateLink(l); err != nil {
			return &ValidationError{Field: fmt.Sprintf("links[%d]", i), Value: l.Value, Message: err.Error()}
		}
	}
	return nil
}

// dedupe drops repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
