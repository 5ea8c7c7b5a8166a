package core

import (
	"fmt"
	"strings"
)

// AuthError reports a missing or unusable local credential.
type AuthError struct {
	Provider string
	Reason   string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: credential not found", e.Provider)
	}
	return fmt.Sprintf("%s: credential not found: %s", e.Provider, e.Reason)
}

// FetchError reports a failed upstream call. StatusCode is zero when the
// request never produced a response.
type FetchError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": failed"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmptyCatalogError is a FetchError where the gateway answered but no record
// survived normalization.
type EmptyCatalogError struct {
	FetchError
	RawCount int
}

func NewEmptyCatalogError(rawCount int) *EmptyCatalogError {
	return &EmptyCatalogError{
		FetchError: FetchError{Op: "fetch models"},
		RawCount:   rawCount,
	}
}

func (e *EmptyCatalogError) Error() string {
	if e.RawCount > 0 {
		return fmt.Sprintf("%s: zero models returned (%d raw records discarded)", e.Op, e.RawCount)
	}
	return e.Op + ": zero models returned"
}

// As lets errors.As match *FetchError against an EmptyCatalogError.
func (e *EmptyCatalogError) As(target any) bool {
	if fe, ok := target.(**FetchError); ok {
		*fe = &e.FetchError
		return true
	}
	return false
}

// TruncateBody shortens an upstream body for inclusion in error messages.
func TruncateBody(body []byte, maxLen int) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
