package echoapi

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/session"
)

const (
	claimsKey = "claims"
	loginPath = "/login"
)

// gate guards protected routes with the session cookie.
type gate struct {
	conf    *core.Config
	codec   *session.Codec
	revoker session.Revoker
	logger  core.Logger
}

func newGate(conf *core.Config, codec *session.Codec, revoker session.Revoker, logger core.Logger) *gate {
	return &gate{conf: conf, codec: codec, revoker: revoker, logger: logger}
}

func (g *gate) token(ctx echo.Context) string {
	cookie, err := ctx.Cookie(g.conf.Session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// claims verifies the request's cookie. Revocation lookups that fail deny access.
func (g *gate) claims(ctx echo.Context) *session.Claims {
	claims := g.codec.Verify(g.token(ctx))
	if claims == nil {
		return nil
	}
	revoked, err := g.revoker.IsRevoked(ctx.Request().Context(), claims.ID)
	if err != nil {
		g.logger.Error(fmt.Sprintf("checking revoked session: %v", err), err)
		return nil
	}
	if revoked {
		return nil
	}
	return claims
}

// api rejects unauthenticated requests with a 401.
func (g *gate) api(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims := g.claims(ctx)
		if claims == nil {
			g.clearStaleCookie(ctx)
			return core.ErrUnauthorized
		}
		ctx.Set(claimsKey, claims)
		return next(ctx)
	}
}

// page redirects unauthenticated requests to the login page.
func (g *gate) page(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims := g.claims(ctx)
		if claims == nil {
			g.clearStaleCookie(ctx)
			target := loginPath
			if p := ctx.Request().URL.Path; p != "/" && p != "" {
				target += "?next=" + url.QueryEscape(p)
			}
			return ctx.Redirect(http.StatusFound, target)
		}
		ctx.Set(claimsKey, claims)
		return next(ctx)
	}
}

func (g *gate) newCookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     g.conf.Session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   g.conf.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
}

func (g *gate) setCookie(ctx echo.Context, token string, claims session.Claims) {
	ctx.SetCookie(g.newCookie(token, int(g.codec.TTL().Seconds()), claims.ExpiresAt.Time))
}

func (g *gate) clearCookie(ctx echo.Context) {
	ctx.SetCookie(g.newCookie("", -1, time.Unix(0, 0)))
}

func (g *gate) clearStaleCookie(ctx echo.Context) {
	if g.token(ctx) != "" {
		g.clearCookie(ctx)
	}
}
