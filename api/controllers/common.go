package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Devvfong/inventory-management/api/middleware"
	"github.com/Devvfong/inventory-management/api/validators"
	"github.com/Devvfong/inventory-management/internal/authz"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
)

func principalFrom(r *http.Request) (*authz.Principal, error) {
	principal := middleware.PrincipalFromContext(r.Context())
	if principal == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return principal, nil
}

func pathID(r *http.Request, param string) (uuid.UUID, error) {
	return validators.ParseUUID(chi.URLParam(r, param), param)
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
