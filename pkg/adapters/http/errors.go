package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/docflows/pkg/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error    string                `json:"error"`
	Failures []domain.GuardFailure `json:"failures,omitempty"`
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	var (
		invalid   *domain.InvalidTransitionError
		failed    *domain.GuardFailedError
		allFailed *domain.AllGuardsFailedError
	)
	switch {
	case errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrWorkflowNotFound):
		return http.StatusNotFound
	case errors.As(err, &invalid),
		errors.Is(err, domain.ErrReentrantTransition):
		return http.StatusConflict
	case errors.As(err, &failed), errors.As(err, &allFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	resp := ErrorResponse{Error: err.Error()}

	var allFailed *domain.AllGuardsFailedError
	if errors.As(err, &allFailed) {
		resp.Failures = allFailed.Failures
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	writeJSON(w, status, resp)
}
