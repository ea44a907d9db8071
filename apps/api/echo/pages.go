package echoapi

import (
	"embed"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed web
var webFS embed.FS

func registerPages(app *echo.Echo, gate *gate) {
	app.StaticFS("/static", echo.MustSubFS(webFS, "web/static"))
	app.GET(loginPath, loginPage(gate))
	app.GET("/", page("web/index.html"), gate.page)
}

func page(name string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.Blob(http.StatusOK, echo.MIMETextHTMLCharsetUTF8, mustRead(name))
	}
}

// loginPage sends authenticated visitors straight to where they were going.
func loginPage(gate *gate) echo.HandlerFunc {
	serve := page("web/login.html")
	return func(ctx echo.Context) error {
		if gate.claims(ctx) != nil {
			return ctx.Redirect(http.StatusFound, safeNext(ctx.QueryParam("next")))
		}
		return serve(ctx)
	}
}

// safeNext only allows local paths: `//host`, `/\host` and `/\t/host` fall back to the dashboard.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\t\r\n") ||
		strings.HasPrefix(next, loginPath) {
		return "/"
	}
	return next
}

func mustRead(name string) []byte {
	b, err := webFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return b
}
