package core

// error_messages.go maps technical errors to user-friendly messages with codes
// for support reference. Users can quote the code when reporting a problem.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Empty batch: the import contained no contacts
//	IMP002 - Batch too large: more than MaxImportBatch contacts
//	IMP003 - System busy: too many imports in progress
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date
//	VAL002 - Required field (name)
//	VAL003 - Invalid filter (sort field, sort order, gender)
//	VAL004 - Invalid link
//	VAL005 - Generic field validation failure
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate name
//	DB002 - Not found
//	DB003 - Entity in use
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//	DB007 - Deadlock
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timeout
//	REQ003 - Malformed body
//
// # Rate Limiting (RATE001)
//
// # Default Error (ERR000)
//
// Typed errors are matched first with errors.Is / errors.As. The remaining
// technical errors are matched case-insensitively with strings.Contains and
// the first matching pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorKind maps a sentinel to a user message and HTTP status.
type errorKind struct {
	target error
	status int
	msg    UserMessage
}

var errorKinds = []errorKind{
	{ErrEmptyBatch, http.StatusBadRequest, UserMessage{
		Message: "Contacts array cannot be empty",
		Action:  "Include at least one contact in the import",
		Code:    "IMP001",
	}},
	{ErrBatchTooLarge, http.StatusBadRequest, UserMessage{
		Message: fmt.Sprintf("Cannot import more than %d contacts at once", MaxImportBatch),
		Action:  "Split the import into smaller batches",
		Code:    "IMP002",
	}},
	{ErrTooManyImports, http.StatusServiceUnavailable, UserMessage{
		Message: "System is busy processing other imports",
		Action:  "Please wait a moment and try again",
		Code:    "IMP003",
	}},
	{ErrMissingName, http.StatusBadRequest, UserMessage{
		Message: "Name is required",
		Action:  "Provide a non-empty name",
		Code:    "VAL002",
	}},
	{ErrInvalidFilter, http.StatusBadRequest, UserMessage{
		Message: "Invalid filter or sort parameter",
		Action:  "Check the allowed values for sortBy, sortOrder and gender",
		Code:    "VAL003",
	}},
	{ErrConflict, http.StatusConflict, UserMessage{
		Message: "An entry with this name already exists",
		Action:  "Choose a different name",
		Code:    "DB001",
	}},
	{ErrNotFound, http.StatusNotFound, UserMessage{
		Message: "Not found",
		Action:  "Verify the id is correct",
		Code:    "DB002",
	}},
	{ErrInUse, http.StatusConflict, UserMessage{
		Message: "This entry is still used by contacts",
		Action:  "Remove it from all contacts first",
		Code:    "DB003",
	}},
	{context.Canceled, 499, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, UserMessage{
		Message: "Request timed out",
		Action:  "Try importing fewer contacts or try again later",
		Code:    "REQ002",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{"invalid date", UserMessage{
		Message: "Invalid date format detected",
		Action:  "Use YYYY-MM-DD or an RFC 3339 timestamp",
		Code:    "VAL001",
	}},
	{"invalid link", UserMessage{
		Message: "Links need both a type and a value",
		Action:  "Fill in the link type and value",
		Code:    "VAL004",
	}},
	{"duplicate key", UserMessage{
		Message: "An entry with this name already exists",
		Action:  "Choose a different name",
		Code:    "DB001",
	}},
	{"unique constraint", UserMessage{
		Message: "An entry with this name already exists",
		Action:  "Choose a different name",
		Code:    "DB001",
	}},
	{"connection refused", UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{"connection reset", UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{"timeout", UserMessage{
		Message: "Operation timed out",
		Action:  "Please try again later",
		Code:    "DB006",
	}},
	{"deadlock", UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Please try again",
		Code:    "DB007",
	}},
	{"invalid json", UserMessage{
		Message: "Request body is not valid JSON",
		Action:  "Check the request payload",
		Code:    "REQ003",
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when nothing matches (ERR000). Support staff
// should check the application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("create tag: %w", ErrConflict))
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var inUse *InUseError
	if errors.As(err, &inUse) {
		return UserMessage{
			Message: inUse.Error(),
			Action:  "Remove it from all contacts first",
			Code:    "DB003",
		}
	}

	var ve *ValidationError
	if errors.As(err, &ve) && ve.Err == nil {
		return UserMessage{
			Message: ve.Error(),
			Action:  "Correct the highlighted field",
			Code:    "VAL005",
		}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// StatusFor returns the HTTP status code that best describes err.
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.status
		}
	}
	switch MapError(err).Code {
	case "VAL001", "VAL004", "REQ003":
		return http.StatusBadRequest
	case "DB001":
		return http.StatusConflict
	case "RATE001":
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
