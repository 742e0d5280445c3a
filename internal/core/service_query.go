package core

import (
	"context"
	"fmt"
)

// ListContacts returns the owner's contacts matching spec. Total is the
// number of contacts returned; there is no pagination.
func (s *Service) ListContacts(ctx context.Context, ownerID string, spec FilterSpec) (ContactList, error) {
	q, err := CompileFilter(s.store.Dialect(), ownerID, spec)
	if err != nil {
		return ContactList{}, err
	}

	contacts, err := s.store.QueryContacts(ctx, q)
	if err != nil {
		return ContactList{}, fmt.Errorf("list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	return ContactList{Contacts: contacts, Total: len(contacts)}, nil
}
