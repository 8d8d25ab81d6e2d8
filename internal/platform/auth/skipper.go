package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// publicRoutes are API routes, relative to the API prefix, that need no
// bearer token.
var publicRoutes = []string{
	"",
	"/",
	"/health",
	"/auth/signup",
	"/auth/login",
}

// rootPublicRoutes are served outside the API prefix.
var rootPublicRoutes = []string{
	"/metrics",
	"/health/db",
}

// NewSkipper returns a Skipper that matches public routes under prefix by
// their registered route pattern.
func NewSkipper(prefix string) middleware.Skipper {
	public := make(map[string]bool, len(publicRoutes)+len(rootPublicRoutes))
	for _, p := range publicRoutes {
		public[prefix+p] = true
	}
	for _, p := range rootPublicRoutes {
		public[p] = true
	}
	return func(c echo.Context) bool {
		return public[c.Path()]
	}
}
