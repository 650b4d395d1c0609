package middleware

import (
	"context"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/model"

	"github.com/labstack/echo/v4"
)

const (
	SessionCookie      = "sid"
	AdminSessionCookie = "admin_sid"

	identityKey  = "identity"
	sessionIDKey = "session_id"
	adminKey     = "admin"
)

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.Identity, error)
}

type AdminResolver interface {
	ResolveAdminSession(ctx context.Context, token string) (*model.Admin, error)
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireSession rejects the request unless the sid cookie resolves to a
// live session, and exposes the identity to later handlers.
func RequireSession(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookieValue(c, SessionCookie)
			identity, err := resolver.ResolveSession(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(identityKey, identity)
			c.Set(sessionIDKey, token)
			return next(c)
		}
	}
}

// RequireKind must run after RequireSession.
func RequireKind(kind model.IdentityKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := Identity(c)
			if identity == nil {
				return apperr.ErrSessionNotFound
			}
			if identity.Kind != kind {
				return apperr.ErrForbidden.With("only " + string(kind) + "s can do this")
			}
			return next(c)
		}
	}
}

func RequireAdmin(resolver AdminResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			admin, err := resolver.ResolveAdminSession(c.Request().Context(), cookieValue(c, AdminSessionCookie))
			if err != nil {
				return err
			}

			c.Set(adminKey, admin)
			return next(c)
		}
	}
}

// Identity returns the caller resolved by RequireSession, or nil.
func Identity(c echo.Context) *model.Identity {
	identity, _ := c.Get(identityKey).(*model.Identity)
	return identity
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionIDKey).(string)
	return id
}

func Admin(c echo.Context) *model.Admin {
	admin, _ := c.Get(adminKey).(*model.Admin)
	return admin
}

// SessionToken reads a session cookie without resolving it.
func SessionToken(c echo.Context, name string) string {
	return cookieValue(c, name)
}
