package httpserver

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/service"
	"github.com/Skotchmaster/inventory/internal/tokens"
)

const (
	ctxSession = "session"
	CtxUser    = "user"
)

const notAuthorized = "Not authorized, please login"

// RequireAuth verifies the token cookie and loads its user into the echo context under CtxUser.
func RequireAuth(issuer *tokens.Issuer, users *service.UserService) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		TokenLookup: "cookie:" + SessionCookie,
		ContextKey:  ctxSession,
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			return issuer.Verify(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", http.StatusUnauthorized, "reason", err.Error())
			return echo.NewHTTPError(http.StatusUnauthorized, notAuthorized)
		},
	})

	load := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			claims, ok := c.Get(ctxSession).(*tokens.SessionClaims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, notAuthorized)
			}

			user, err := users.Authenticate(ctx, claims.Subject)
			if err != nil {
				return fail(l, "auth", err)
			}

			c.Set(CtxUser, user)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l.With("user_id", user.ID.String()))))
			return next(c)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(load(next))
	}
}

func currentUser(c echo.Context) (*models.User, error) {
	user, ok := c.Get(CtxUser).(*models.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, notAuthorized)
	}
	return user, nil
}
