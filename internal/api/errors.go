package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrTransport matches every TransportError via errors.Is.
var ErrTransport = errors.New("transport error")

// StatusError is a non-2xx response. Body is the raw (trimmed) response text.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s: %d: %s", e.Op, e.StatusCode, e.Body)
}

// Message returns the server text, or fallback when the body was empty.
func (e *StatusError) Message(fallback string) string {
	if strings.TrimSpace(e.Body) == "" {
		return fallback
	}
	return e.Body
}

// RegisterError is a failed registration. The service answers either
// {"errors": {"field": "msg"}} or {"message": "msg"}; neither is guaranteed.
type RegisterError struct {
	StatusCode int
	Fields     map[string]string
	Message    string
}

func (e *RegisterError) Error() string {
	switch {
	case len(e.Fields) > 0:
		parts := make([]string, 0, len(e.Fields))
		for _, k := range e.FieldNames() {
			parts = append(parts, k+": "+e.Fields[k])
		}
		return fmt.Sprintf("register: %d: %s", e.StatusCode, strings.Join(parts, "; "))
	case e.Message != "":
		return fmt.Sprintf("register: %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("register: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// FieldNames returns the field keys sorted so errors attach in a stable order.
func (e *RegisterError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// StatusOf returns the HTTP status carried by err, or 0 when there was no response.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var re *RegisterError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
