// Package docerr defines the error kinds of the document pipeline and their
// mapping to HTTP status codes and metric labels.
package docerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/chapterhub/internal/app/documents/paginate"
	"github.com/dalemusser/chapterhub/internal/app/documents/render"
)

var (
	// ErrNotFound: a session, member, chapter, template or signature is missing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState: the session state does not allow the operation.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrConflict: another operation holds the resource, or it already exists.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput: the request is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrHashExists: a signature with the same content hash exists.
	ErrHashExists = errors.New("signature hash already exists")
	// ErrAlreadySigned: the session already has signed minutes.
	ErrAlreadySigned = fmt.Errorf("%w: session already signed", ErrConflict)

	ErrRender  = render.ErrRender
	ErrTimeout = paginate.ErrTimeout
)

// Kind returns a short label for err, used in metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrConflict), errors.Is(err, ErrHashExists):
		return "conflict"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrRender):
		return "render"
	}
	return "internal"
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK
	case "not_found":
		return http.StatusNotFound
	case "invalid_state", "conflict":
		return http.StatusConflict
	case "invalid_input":
		return http.StatusBadRequest
	case "timeout":
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
