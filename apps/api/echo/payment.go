package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/edupay/core/payment"
)

type paymentApi struct {
	service *payment.Service
}

func registerPaymentAPI(g *echo.Group, svc *payment.Service) {
	api := paymentApi{service: svc}

	g.GET("/payments", api.list)
}

// list answers with the listing even when the backend failed, so clients can show the failure text.
func (api paymentApi) list(ctx echo.Context) error {
	listing := api.service.List(ctx.Request().Context())
	if listing.State == payment.StateFailed {
		return ctx.JSON(http.StatusBadGateway, listing)
	}
	return ctx.JSON(http.StatusOK, listing)
}
