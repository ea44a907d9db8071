package echoapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/admin"
	"github.com/trezcool/coachdesk/core/session"
)

const seedSecretHeader = "X-Seed-Secret"

type authAPI struct {
	ServerDeps
	gate *gate
}

func registerAuthAPI(g *echo.Group, gate *gate, deps ServerDeps) {
	api := authAPI{ServerDeps: deps, gate: gate}
	limiter := newIPRateLimiter(deps.Conf.Server.LoginBurst, deps.Conf.Server.LoginEvery)

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login, limiter.middleware())
	ag.POST("/logout", api.logout)
	ag.POST("/seed", api.seed)

	// authed endpoints
	ag.GET("/me", api.me, gate.api)
	ag.POST("/change-password", api.changePassword, gate.api)
}

type (
	SessionResponse struct {
		Admin     admin.Administrator `json:"admin"`
		ExpiresAt time.Time           `json:"expires_at"`
	}

	MeResponse struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Role      string    `json:"role"`
		IssuedAt  time.Time `json:"issued_at"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	SeedResponse struct {
		Created bool                `json:"created"`
		Admin   admin.Administrator `json:"admin"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

// startSession signs a token for the Administrator and sets the session cookie.
func (api *authAPI) startSession(ctx echo.Context, adm admin.Administrator) (SessionResponse, error) {
	token, claims, err := api.Codec.Sign(session.NewClaims(adm))
	if err != nil {
		return SessionResponse{}, errors.Wrap(err, "signing session token")
	}
	api.gate.setCookie(ctx, token, claims)
	return SessionResponse{Admin: adm, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (api *authAPI) login(ctx echo.Context) error {
	var data admin.LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}

	adm, err := api.AdminSvc.Authenticate(ctx.Request().Context(), data.Identifier, data.Password)
	if err != nil {
		if errors.Cause(err) == admin.ErrInvalidCredentials {
			return errInvalidCredentials
		}
		return errors.Wrap(err, "authenticating")
	}

	res, err := api.startSession(ctx, adm)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

// logout always succeeds; a valid token is also revoked until it expires.
func (api *authAPI) logout(ctx echo.Context) error {
	if claims := api.Codec.Verify(api.gate.token(ctx)); claims != nil {
		if err := api.Revoker.Revoke(ctx.Request().Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			api.Logger.Error(fmt.Sprintf("revoking session: %v", err), err, claims.Admin())
		}
	}
	api.gate.clearCookie(ctx)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "logged out"})
}

func (api *authAPI) me(ctx echo.Context) error {
	claims := contextClaims(ctx)
	if claims == nil {
		return core.ErrUnauthorized
	}
	res := MeResponse{
		ID:       claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}
	if claims.IssuedAt != nil {
		res.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		res.ExpiresAt = claims.ExpiresAt.Time
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *authAPI) changePassword(ctx echo.Context) error {
	claims := contextClaims(ctx)
	if claims == nil {
		return core.ErrUnauthorized
	}
	adm, err := api.AdminSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			api.gate.clearCookie(ctx)
			return core.ErrUnauthorized
		}
		return errors.Wrap(err, "finding administrator")
	}

	var data admin.ChangePassword
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err = data.Validate(api.Validate, adm); err != nil {
		return err
	}

	if adm, err = api.AdminSvc.ChangePassword(ctx.Request().Context(), adm.ID, data); err != nil {
		return errors.Wrap(err, "changing password")
	}

	res, err := api.startSession(ctx, adm)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

// seed upserts the configured bootstrap Administrator.
func (api *authAPI) seed(ctx echo.Context) error {
	conf := api.Conf.Admin
	given := ctx.Request().Header.Get(seedSecretHeader)
	if conf.SeedSecret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(conf.SeedSecret)) != 1 {
		return errInvalidSeedSecret
	}

	for _, r := range []struct{ key, val string }{
		{"ADMIN_USERNAME", conf.Username},
		{"ADMIN_EMAIL", conf.Email},
		{"ADMIN_PASSWORD", conf.Password},
	} {
		if r.val == "" {
			return core.NewConfigError(r.key)
		}
	}

	data := admin.SeedAdmin{Email: conf.Email, Username: conf.Username, Password: conf.Password}
	if err := data.Validate(api.Validate); err != nil {
		return err
	}
	adm, created, err := api.AdminSvc.Seed(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "seeding administrator")
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, SeedResponse{Created: created, Admin: adm})
}
