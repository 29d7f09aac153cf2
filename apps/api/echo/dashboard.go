package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edupay/core/dashboard"
)

type (
	dashboardApi struct {
		service  *dashboard.Service
		validate *validator.Validate
	}

	dashboardData struct {
		dashboard.Summary
		Currency  string            `json:"currency"`
		TotalPaid float64           `json:"totalPaid"`
		HasUnread bool              `json:"hasUnread"`
		Tabs      []string          `json:"tabs"`
		Formatted map[string]string `json:"formatted"`
	}
)

func registerDashboardAPI(g *echo.Group, svc *dashboard.Service, validate *validator.Validate) {
	api := dashboardApi{service: svc, validate: validate}

	g.GET("/dashboard", api.summary)
}

func (api dashboardApi) summary(ctx echo.Context) error {
	var cur Currency
	if err := cur.Bind(ctx, api.validate); err != nil {
		return err
	}

	sum, err := api.service.Load(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading dashboard")
	}

	total := sum.TotalPaid()
	return ctx.JSON(http.StatusOK, dashboardData{
		Summary:   sum,
		Currency:  cur.Code,
		TotalPaid: total,
		HasUnread: sum.HasUnread(),
		Tabs:      dashboard.Tabs,
		Formatted: map[string]string{
			"balance":   dashboard.FormatCurrency(sum.Balance, cur.Code),
			"totalPaid": dashboard.FormatCurrency(total, cur.Code),
		},
	})
}
