// Package guard holds the request-time authorization checks attached to routes.
package guard

import (
	"errors"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"hotel/internal/auth"
	apperrors "hotel/internal/errors"
)

// ClaimsContextKey is where Authenticated stores the verified *auth.Claims.
const ClaimsContextKey = "user"

// Guard is a pass/fail check evaluated before a handler. A non-nil error denies the request.
type Guard func(c echo.Context) error

// Authenticated returns middleware that requires a valid bearer token.
// Tokens issued before their subject was revoked are rejected too. store may be nil.
func Authenticated(jwtService *auth.JWTService, store auth.TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.Verify(token)
			if err != nil {
				return nil, err
			}
			if store != nil {
				revoked, _ := store.IsRevoked(c.Request().Context(), claims.UserID, issuedAt(claims))
				if revoked {
					return nil, auth.ErrTokenRevoked
				}
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var parseErr *echojwt.TokenParsingError
			switch {
			case errors.Is(err, auth.ErrTokenRevoked):
				return apperrors.ToEcho(apperrors.Unauthorized("Token has been revoked"))
			case errors.As(err, &parseErr):
				return apperrors.ToEcho(apperrors.Unauthorized("Invalid or expired token"))
			default:
				return apperrors.ToEcho(apperrors.Unauthorized("Missing or malformed token"))
			}
		},
	})
}

func issuedAt(claims *auth.Claims) time.Time {
	if claims.IssuedAt == nil {
		return time.Time{}
	}
	return claims.IssuedAt.Time
}

// ClaimsFrom returns the claims stored by Authenticated.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

// Require runs guards in order and stops at the first denial.
func Require(guards ...Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, g := range guards {
				if err := g(c); err != nil {
					return apperrors.ToEcho(err)
				}
			}
			return next(c)
		}
	}
}

var errForbidden = apperrors.Forbidden("Forbidden resource")

// IsMine passes when the token subject equals the numeric path parameter param.
func IsMine(param string) Guard {
	return func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return apperrors.Unauthorized("Missing or malformed token")
		}
		id, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil || uint(id) != claims.UserID {
			return errForbidden
		}
		return nil
	}
}

// IsAdmin passes when the token carries the admin flag.
func IsAdmin() Guard {
	return func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return apperrors.Unauthorized("Missing or malformed token")
		}
		if !claims.IsAdmin {
			return errForbidden
		}
		return nil
	}
}
