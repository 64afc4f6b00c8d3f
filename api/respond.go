package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/philipcowcer-eng/LoadBalance/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type detailResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, detailResponse{Detail: detail}, status)
}

// writeError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *service.NotFoundError
	var ve *service.ValidationError
	switch {
	case errors.As(err, &nf):
		writeDetail(w, http.StatusNotFound, nf.Error())
	case errors.As(err, &ve):
		writeJSON(w, detailResponse{Detail: ve.Error(), Field: ve.Field}, http.StatusBadRequest)
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "insufficient permissions")
	default:
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a single JSON document into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &service.ValidationError{Message: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
