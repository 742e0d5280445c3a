package core

// validation.go checks import batches and items before any storage work.
//
// Validation happens at two levels:
//  1. Batch: size bounds, checked once before anything is read or written
//  2. Item: name and parseable optional fields, checked per draft so that
//     a bad item only fails itself

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ValidateBatch enforces the batch size bounds.
func ValidateBatch(drafts []ContactDraft) error {
	switch {
	case len(drafts) == 0:
		return &PreconditionError{Err: ErrEmptyBatch}
	case len(drafts) > MaxImportBatch:
		return &PreconditionError{Err: ErrBatchTooLarge, Size: len(drafts)}
	}
	return nil
}

// ValidateItem checks a single draft. The first problem found is returned.
func ValidateItem(d ContactDraft) error {
	if d.nameNotString || strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrMissingName}
	}
	if d.decodeErr != nil {
		return &ValidationError{Field: "item", Message: "invalid item: " + describeDecodeErr(d.decodeErr), Err: d.decodeErr}
	}

	if d.BirthDate != nil && strings.TrimSpace(*d.BirthDate) != "" {
		if _, ok := ParseDate(*d.BirthDate); !ok {
			return &ValidationError{Field: "birthDate", Value: *d.BirthDate, Message: "invalid date"}
		}
	}
	if d.MetAt != nil && strings.TrimSpace(*d.MetAt) != "" {
		if _, ok := ParseDate(*d.MetAt); !ok {
			return &ValidationError{Field: "metAt", Value: *d.MetAt, Message: "invalid date"}
		}
	}

	return validateLinks(d.Links)
}

// ValidateLink requires both a type and a value.
func ValidateLink(l Link) error {
	if strings.TrimSpace(l.Type) == "" || strings.TrimSpace(l.Value) == "" {
		return fmt.Errorf("invalid link: type and value are required")
	}
	return nil
}

// ValidateName trims name and rejects blank input.
func ValidateName(field, name string) (string, error) {
	v := strings.TrimSpace(name)
	if v == "" {
		return "", &ValidationError{Field: field, Value: name, Message: fmt.Sprintf("%s is required", field)}
	}
	return v, nil
}

// describeDecodeErr names the offending field without leaking Go type names.
func describeDecodeErr(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has the wrong type (got %s)", typeErr.Field, typeErr.Value)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "malformed json"
	}
	return "unexpected shape"
}
