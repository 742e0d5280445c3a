package core

// importer.go reconciles a batch of contact drafts into persisted contacts.
//
// The flow for one batch is:
//  1. ValidateBatch rejects empty and oversized batches before any storage call
//  2. Tag and meeting-place resolvers preload the owner's names once
//  3. Each draft is validated, its names resolved and the contact created
//  4. Failures are counted and described; processing continues with the next draft
//
// Items commit independently. A failed item never rolls back earlier ones and
// names created while resolving a failed item stay in place.

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JonMunkholm/contactbook/internal/logging"
)

// ImportContacts imports drafts for ownerID. Only batch precondition
// violations and storage failures during preload are returned as errors;
// every per-item problem is reported in the result.
func (s *Service) ImportContacts(ctx context.Context, ownerID string, drafts []ContactDraft) (ImportResult, error) {
	if err := ValidateBatch(drafts); err != nil {
		return ImportResult{}, err
	}

	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return ImportResult{}, err
		}
		defer s.limiter.Release()
	}

	// Once started, a batch runs to completion even if the caller goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.importTimeout)
	defer cancel()

	logger := logging.WithOwner(ctx, ownerID).With("items", len(drafts))
	start := time.Now()

	tags, err := NewNameResolver(ctx, s.store, ownerID, KindTag)
	if err != nil {
		return ImportResult{}, err
	}
	places, err := NewNameResolver(ctx, s.store, ownerID, KindMeetingPlace)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Errors: []string{}}
	for i, d := range drafts {
		if err := s.importOne(ctx, ownerID, d, tags, places); err != nil {
			err.Index = i
			result.Failed++
			result.Errors = append(result.Errors, err.Error())
			logger.Debug("import item failed", "index", i, "stage", err.Stage, "error", err.Err)
			continue
		}
		result.Success++
	}

	logger.Info("import finished",
		"success", result.Success,
		"failed", result.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (s *Service) importOne(ctx context.Context, ownerID string, d ContactDraft, tags, places *NameResolver) *ItemError {
	name := strings.TrimSpace(d.Name)
	fail := func(stage ImportStage, err error) *ItemError {
		return &ItemError{Name: name, Stage: stage, Err: err}
	}

	if err := ValidateItem(d); err != nil {
		return fail(StageValidation, err)
	}

	in := draftInput(d, s.now())

	seen := make(map[string]struct{}, len(d.Tags))
	for _, raw := range d.Tags {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		id, err := tags.Resolve(ctx, raw)
		if err != nil {
			return fail(StageResolution, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		in.TagIDs = append(in.TagIDs, id)
	}

	if d.MeetingPlace != nil && strings.TrimSpace(*d.MeetingPlace) != "" {
		id, err := places.Resolve(ctx, *d.MeetingPlace)
		if err != nil {
			return fail(StageResolution, err)
		}
		in.MeetingPlaceID = &id
	}

	if _, err := s.store.CreateContact(ctx, ownerID, in); err != nil {
		return fail(StagePersistence, err)
	}
	return nil
}

// draftInput converts a validated draft. Dates were checked by ValidateItem;
// a missing metAt becomes now.
func draftInput(d ContactDraft, now time.Time) ContactInput {
	in := ContactInput{
		Name:  strings.TrimSpace(d.Name),
		MetAt: now,
		ContactFields: ContactFields{
			Gender:            TrimOptional(d.Gender),
			Age:               d.Age,
			AgeType:           TrimOptional(d.AgeType),
			Height:            d.Height,
			HeightType:        TrimOptional(d.HeightType),
			Occupation:        TrimOptional(d.Occupation),
			OccupationDetails: TrimOptional(d.OccupationDetails),
			Residence:         TrimOptional(d.Residence),
			ResidenceDetails:  TrimOptional(d.ResidenceDetails),
			WhereMet:          TrimOptional(d.WhereMet),
			HowMet:            TrimOptional(d.HowMet),
			Details:           TrimOptional(d.Details),
		},
	}

	if d.BirthDate != nil {
		if t, ok := ParseDate(*d.BirthDate); ok {
			in.BirthDate = &t
		}
	}
	if d.MetAt != nil {
		if t, ok := ParseDate(*d.MetAt); ok {
			in.MetAt = t
		}
	}

	for _, l := range d.Links {
		in.Links = append(in.Links, Link{
			Type:  strings.TrimSpace(l.Type),
			Label: TrimOptional(l.Label),
			Value: strings.TrimSpace(l.Value),
		})
	}
	return in
}

// IsPrecondition reports whether err rejected a whole import batch.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
