package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Devvfong/inventory-management/api/responses"
	"github.com/Devvfong/inventory-management/internal/authz"
	pkgAuth "github.com/Devvfong/inventory-management/pkg/auth"
	"github.com/Devvfong/inventory-management/pkg/auth/session"
	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/enums"
	pkgerrors "github.com/Devvfong/inventory-management/pkg/errors"
	"github.com/Devvfong/inventory-management/pkg/logger"
)

// AnonymousAdminID identifies the principal used when auth is not enforced.
var AnonymousAdminID = uuid.MustParse("00000000-0000-0000-0000-00000000a0a0")

// AuthOptions controls how Auth treats requests without credentials.
type AuthOptions struct {
	JWT      config.JWTConfig
	Sessions session.AccessSessionChecker
	// Required rejects anonymous requests; when false they run as a synthetic admin.
	Required bool
}

// Auth validates a bearer token and seeds the request context with the principal.
// A bearer that is present is always validated, even when auth is optional.
func Auth(opts AuthOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				if opts.Required {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				next.ServeHTTP(w, r.WithContext(withPrincipalFields(r, logg, anonymousAdmin())))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(opts.JWT, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if opts.Sessions != nil {
				ok, err := opts.Sessions.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			principal := &authz.Principal{
				UserID:     claims.UserID,
				Email:      claims.Email,
				Role:       claims.Role,
				SupplierID: claims.SupplierID,
				SessionID:  claims.ID,
			}
			next.ServeHTTP(w, r.WithContext(withPrincipalFields(r, logg, principal)))
		})
	}
}

// BearerToken extracts the token from the Authorization header. A bare token
// without the scheme is accepted too.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw
}

// RequireAdmin lets only ADMIN principals through; kind only labels the denial.
func RequireAdmin(kind authz.Kind, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authz.RequireAdmin(PrincipalFromContext(r.Context()), kind); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func anonymousAdmin() *authz.Principal {
	return &authz.Principal{
		UserID:    AnonymousAdminID,
		Email:     "anonymous@localhost",
		Role:      enums.UserRoleAdmin,
		Synthetic: true,
	}
}

func withPrincipalFields(r *http.Request, logg *logger.Logger, principal *authz.Principal) context.Context {
	ctx := WithPrincipal(r.Context(), principal)
	if logg == nil {
		return ctx
	}
	fields := map[string]any{
		"user_id":    principal.UserID.String(),
		"actor_role": string(principal.Role),
	}
	if principal.SupplierID != nil {
		fields["supplier_id"] = principal.SupplierID.String()
	}
	if principal.Synthetic {
		fields["synthetic"] = true
	}
	return logg.WithFields(ctx, fields)
}
