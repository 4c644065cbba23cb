package cli

import (
	"errors"
	"fmt"
)

// errInvalid marks input rejected before any request was sent.
var errInvalid = errors.New("invalid input")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// fieldError is a rejected form; the field messages were already written to stdout.
type fieldError struct {
	form   string
	fields map[string]string
}

func (e fieldError) Error() string {
	return fmt.Sprintf("%s: %d field error(s)", e.form, len(e.fields))
}
