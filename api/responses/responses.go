// Package responses writes the JSON envelopes every handler returns. Error
// bodies look like {"error": "...", "code": "...", "details": ...}.
package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
	"github.com/Devvfong/inventory-management/pkg/types"
)

const contentTypeJSON = "application/json"

var fallbackBody = []byte(`{"error":"internal server error","code":"INTERNAL_ERROR"}` + "\n")

func WriteSuccess(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	write(w, status, data)
}

// WriteError maps err to its HTTP status and public body. Untyped errors
// become INTERNAL_ERROR. Messages of internal and dependency failures are
// replaced by the generic public text; the cause is only logged.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		if err == nil {
			err = errors.New("unknown error")
		}
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	body := types.ErrorBody{Code: string(typed.Code()), Error: meta.PublicMessage}
	if exposesMessage(typed.Code()) && typed.Message() != "" {
		body.Error = typed.Message()
	}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}
	write(w, meta.HTTPStatus, body)
}

func exposesMessage(code pkgerrors.Code) bool {
	return code != pkgerrors.CodeInternal && code != pkgerrors.CodeDependency
}

// write encodes before touching the response so an unencodable payload
// still yields a well formed 500.
func write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(fallbackBody)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
