package archive

import (
	"errors"
	"fmt"
)

// Code classifies a failure for callers. The HTTP layer maps these to
// status codes (422, 404, 409, 500).
type Code string

// Error codes.
const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeConflict   Code = "CONFLICT"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// Sentinel errors. Stores return these so the service layer can remap
// them without knowing the backend.
var (
	// ErrNotFound indicates no record exists at the given id or slug.
	ErrNotFound = errors.New("record not found")

	// ErrSlugTaken indicates another record of the same kind already
	// owns the slug. Stores must return it for unique-index rejections
	// as well, since the service-level pre-check is not atomic.
	ErrSlugTaken = errors.New("slug already in use")

	// ErrInvalidStatus indicates a status outside the lifecycle.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrUnknownKind indicates a collection name that is not one of the
	// six content kinds.
	ErrUnknownKind = errors.New("unknown content kind")
)

// Error is the typed failure every operation returns. Fields carries
// field-keyed validation detail when Code is CodeValidation, or names
// the conflicting field when Code is CodeConflict.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError builds a CodeValidation error from a field-keyed
// detail map.
func NewValidationError(fields map[string]string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// NewNotFoundError builds a CodeNotFound error for the given kind. The
// message never reveals whether the record exists under another status.
func NewNotFoundError(kind Kind) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("no %s record found", kind),
		Err:     ErrNotFound,
	}
}

// NewConflictError builds a CodeConflict error naming the conflicting
// field.
func NewConflictError(field, value string) *Error {
	return &Error{
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s %q is already in use", field, value),
		Fields:  map[string]string{field: "already in use"},
		Err:     ErrSlugTaken,
	}
}

// NewInternalError wraps an unclassifiable failure.
func NewInternalError(op string, err error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: fmt.Sprintf("operation %s failed", op),
		Err:     err,
	}
}

// CodeOf extracts the error code from err, classifying bare sentinels
// and falling back to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownKind):
		return CodeNotFound
	case errors.Is(err, ErrSlugTaken):
		return CodeConflict
	case errors.Is(err, ErrInvalidStatus):
		return CodeValidation
	}
	return CodeInternal
}

// wrapStoreError remaps a store failure into a typed error for kind,
// preserving already-typed errors untouched.
func wrapStoreError(kind Kind, op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return NewNotFoundError(kind)
	case errors.Is(err, ErrSlugTaken):
		return &Error{
			Code:    CodeConflict,
			Message: "slug is already in use",
			Fields:  map[string]string{"slug": "already in use"},
			Err:     ErrSlugTaken,
		}
	}
	return NewInternalError(op, err)
}
