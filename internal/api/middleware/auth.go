package middleware

import (
	"context"
	"errors"
	"net/http"

	"tangle_backend/internal/common"
	"tangle_backend/internal/common/security"
	"tangle_backend/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UsernameCtxKey contextKey = "username"
	UserRoleCtxKey contextKey = "userRole"
)

func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // set by jwtauth.Verifier

		if err != nil {
			if errors.Is(err, jwtauth.ErrNoTokenFound) || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		username, err := security.GetUsernameFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		userRole, err := security.GetUserRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), username, userRole)))
	})
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameCtxKey).(string)
	return username, ok
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(string)
	return userRole, ok
}

// AuthorizeUsername allows acting on username's data when it is the caller's
// own account or the caller is an admin.
func AuthorizeUsername(ctx context.Context, username string) error {
	if role, _ := GetUserRoleFromContext(ctx); role == model.RoleAdmin {
		return nil
	}
	caller, ok := GetUsernameFromContext(ctx)
	if !ok {
		return common.ErrUnauthorized
	}
	if caller != username {
		return common.Errorf("%w: cannot act on another user's data", common.ErrForbidden)
	}
	return nil
}

// WithIdentity returns ctx carrying an authenticated username and role.
func WithIdentity(ctx context.Context, username, role string) context.Context {
	ctx = context.WithValue(ctx, UsernameCtxKey, username)
	return context.WithValue(ctx, UserRoleCtxKey, role)
}
