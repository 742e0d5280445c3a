package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the service and storage layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("already exists")
	ErrInUse         = errors.New("entity is in use")
	ErrInvalidFilter = errors.New("invalid filter")
)

// Batch precondition failures. Both are wrapped in *PreconditionError.
var (
	ErrEmptyBatch    = errors.New("Contacts array cannot be empty")
	ErrBatchTooLarge = fmt.Errorf("Cannot import more than %d contacts at once", MaxImportBatch)
)

// Item validation failures.
var (
	ErrMissingName = errors.New("Name is required")
	ErrEmptyName   = errors.New("name must not be empty")
)

// PreconditionError rejects a whole batch before any storage access.
type PreconditionError struct {
	Err  error
	Size int
}

func (e *PreconditionError) Error() string { return e.Err.Error() }

func (e *PreconditionError) Unwrap() error { return e.Err }

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field name
	Value   string // The invalid value
	Message string // Human-readable error message
	Err     error  // Optional sentinel for errors.Is
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "invalid value"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ImportStage tells which step of item processing failed.
type ImportStage string

const (
	StageValidation  ImportStage = "validation"
	StageResolution  ImportStage = "resolution"
	StagePersistence ImportStage = "persistence"
)

// ItemError is the cause of a single failed import item.
type ItemError struct {
	Index int
	Name  string
	Stage ImportStage
	Err   error
}

func (e *ItemError) Error() string {
	name := e.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf(`Failed to import "%s": %s`, name, e.Err.Error())
}

func (e *ItemError) Unwrap() error { return e.Err }

// InUseError reports that an entity cannot be deleted while contacts reference it.
type InUseError struct {
	Kind  EntityKind
	Count int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("Cannot delete %s: it is used by %d contact(s)", e.Kind.Label(), e.Count)
}

func (e *InUseError) Unwrap() error { return ErrInUse }
