package controllers

import (
	"context"
	"net/http"

	"github.com/Devvfong/inventory-management/api/middleware"
	"github.com/Devvfong/inventory-management/api/responses"
	"github.com/Devvfong/inventory-management/api/validators"
	"github.com/Devvfong/inventory-management/internal/auth"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

// withBody decodes and validates a JSON body of type T, then hands it to fn.
// Whatever fn returns is written with status.
func withBody[T any](logg *logger.Logger, status int, fn func(ctx context.Context, r *http.Request, body T) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body T
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := fn(r.Context(), r, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, status, out)
	}
}

// AuthRegister creates a supplier account and its profile. It issues no
// tokens; the client logs in afterwards.
func AuthRegister(svc auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return withBody(logg, http.StatusCreated, func(ctx context.Context, _ *http.Request, body auth.RegisterRequest) (any, error) {
		if svc == nil {
			return nil, unavailable("register")
		}
		return svc.Register(ctx, body)
	})
}

func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return withBody(logg, http.StatusOK, func(ctx context.Context, _ *http.Request, body auth.LoginRequest) (any, error) {
		if svc == nil {
			return nil, unavailable("auth")
		}
		return svc.Login(ctx, body)
	})
}

// AuthRefresh sits outside the Auth middleware because the presented access
// token may already be expired.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return withBody(logg, http.StatusOK, func(ctx context.Context, r *http.Request, body auth.RefreshRequest) (any, error) {
		if svc == nil {
			return nil, unavailable("auth")
		}
		token := middleware.BearerToken(r)
		if token == "" {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
		}
		return svc.Refresh(ctx, token, body)
	})
}

func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := me(r, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func me(r *http.Request, svc auth.Service) (any, error) {
	if svc == nil {
		return nil, unavailable("auth")
	}
	principal, err := principalFrom(r)
	if err != nil {
		return nil, err
	}
	return svc.Me(r.Context(), principal)
}

// AuthLogout revokes the session of the presented access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := principalFrom(r)
		if err == nil && svc == nil {
			err = unavailable("auth")
		}
		if err == nil {
			err = svc.Logout(r.Context(), principal)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
