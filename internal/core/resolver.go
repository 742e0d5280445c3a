package core

import (
	"context"
	"fmt"
	"strings"
)

// NameResolver maps free-text names of one entity kind to ids for a single
// owner, creating entities that do not exist yet.
//
// The owner's existing entities are loaded once. Lookups are
// case-insensitive; the first casing seen is the one persisted. A resolver
// is meant for one import batch and is not safe for concurrent use.
type NameResolver struct {
	store   EntityStore
	ownerID string
	kind    EntityKind
	ids     map[string]string // lower(name) -> id
}

// NewNameResolver preloads the owner's entities of kind.
func NewNameResolver(ctx context.Context, store EntityStore, ownerID string, kind EntityKind) (*NameResolver, error) {
	existing, err := store.FindNamedEntities(ctx, ownerID, kind)
	if err != nil {
		return nil, fmt.Errorf("load %s names: %w", kind.Label(), err)
	}

	ids := make(map[string]string, len(existing))
	for _, e := range existing {
		key := strings.ToLower(e.Name)
		if _, dup := ids[key]; !dup {
			ids[key] = e.ID
		}
	}

	return &NameResolver{store: store, ownerID: ownerID, kind: kind, ids: ids}, nil
}

// Resolve returns the id for raw, creating the entity on first sight.
// Repeated calls with any casing of the same name return the same id
// without touching storage.
func (r *NameResolver) Resolve(ctx context.Context, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &ValidationError{Field: string(r.kind), Value: raw, Err: ErrEmptyName}
	}

	key := strings.ToLower(name)
	if id, ok := r.ids[key]; ok {
		return id, nil
	}

	created, err := r.store.CreateNamedEntity(ctx, r.ownerID, r.kind, name)
	if err != nil {
		return "", fmt.Errorf("create %s %q: %w", r.kind.Label(), name, err)
	}

	r.ids[key] = created.ID
	return created.ID, nil
}

// Len returns the number of names currently known to the resolver.
func (r *NameResolver) Len() int {
	return len(r.ids)
}
