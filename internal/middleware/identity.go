package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/focusfeed/backend/internal/feed"
	"github.com/anonto42/focusfeed/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const viewerKey = "viewer"

// ErrInvalidToken marks a credential the identity provider rejected.
var ErrInvalidToken = errors.New("invalid bearer token")

// IdentityResolver maps a bearer token to a profile ID.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (uint, error)
}

// ResolverFunc adapts a function to IdentityResolver.
type ResolverFunc func(ctx context.Context, token string) (uint, error)

func (f ResolverFunc) Resolve(ctx context.Context, token string) (uint, error) {
	return f(ctx, token)
}

// SubjectProvisioner finds or creates the profile behind an identity-provider subject.
type SubjectProvisioner interface {
	ResolveSubject(ctx context.Context, subject string, seed models.ProfileSeed) (*models.Profile, error)
}

// Identity resolves the caller's viewer. A request without an Authorization
// header is anonymous; a header that is malformed or carries a rejected
// token is answered with 401 rather than downgraded to anonymous.
func Identity(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Set(viewerKey, feed.Anonymous())
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			profileID, err := resolver.Resolve(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
				}
				log.Error().Err(err).Msg("resolve identity")
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}

			c.Set(viewerKey, feed.Member(profileID))
			return next(c)
		}
	}
}

// RequireIdentity rejects anonymous callers. Mount it after Identity.
func RequireIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := ViewerFrom(c).ID(); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			return next(c)
		}
	}
}

// ViewerFrom returns the viewer Identity stored on the context, or an
// anonymous viewer if none was stored.
func ViewerFrom(c echo.Context) feed.Viewer {
	if v, ok := c.Get(viewerKey).(feed.Viewer); ok {
		return v
	}
	return feed.Anonymous()
}
