package echoapi

import "github.com/labstack/echo/v4"

// noStore keeps clients from caching live form and payment state.
func noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctx.Response().Header().Set("Cache-Control", "no-store")
		return next(ctx)
	}
}
