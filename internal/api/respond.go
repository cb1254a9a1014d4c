package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"mealmate/internal/shared"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const maxBodyBytes = 1 << 20

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps err to its status code. Internal details are logged, not
// returned.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := shared.AsAppError(err)
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("code", string(appErr.Code)), zap.Error(err))
	}
	s.writeJSON(w, status, ErrorResponse{Code: string(appErr.Code), Message: appErr.Message})
}

func (s *Server) writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="mealmate"`)
	s.writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: message})
}

func (s *Server) writeText(w http.ResponseWriter, contentType, filename, body string) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, body)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return shared.NewValidationError("invalid request body: %v", err)
	}
	return nil
}
