package domain

import (
	"errors"
	"sort"
	"strings"
)

const (
	RoleUser = "user"

	MaxLengthRecipeName      = 256
	MaxLengthTagName         = 32
	MaxLengthTagSlug         = 32
	MaxLengthIngredientName  = 128
	MaxLengthMeasurementUnit = 64
	MinCookingTime           = 1
	MinIngredientAmount      = 1
	MaxCookingTime           = 32767
	MaxIngredientAmount      = 32767
	MaxLengthPassword        = 72
	MaxLengthShortLink       = 16

	DefaultPageSize = 6
	MaxPageSize     = 100
	MaxPage         = 1_000_000
)

var (
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageUserNotAllowed       = "user not allowed"
	MessageInternalError        = "internal server error"

	ErrParseUUID      = errors.New("failed to parse UUID")
	ErrUserNotAllowed = errors.New("user not allowed")
	ErrTokenNotFound  = errors.New("failed to token not found")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
)

// Error categories. Specific errors wrap one of these so handlers can map
// them to a status code with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{Fields: map[string][]string{}}
	e.Add(field, message)
	return e
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type (
	PaginationRequest struct {
		Page  int
		Limit int
	}

	PaginatedResponse struct {
		Count    int64   `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  any     `json:"results"`
	}
)
