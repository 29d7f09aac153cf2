package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edupay/core/form"
)

type (
	formApi struct {
		service *form.Service
	}

	openFormData struct {
		Kind   string                     `json:"kind"`
		Values map[string]json.RawMessage `json:"values"`
	}

	changeFormData struct {
		Values map[string]json.RawMessage `json:"values"`
	}
)

func registerFormAPI(g *echo.Group, svc *form.Service) {
	api := formApi{service: svc}

	forms := g.Group("/forms")
	forms.POST("", api.open)
	forms.GET("/:id", api.retrieve)
	forms.PATCH("/:id", api.change)
	forms.DELETE("/:id", api.close)
	forms.POST("/:id/submit", api.submit)
	forms.POST("/:id/reset", api.reset)
	forms.POST("/:id/follow-up", api.followUp)
}

func (api formApi) open(ctx echo.Context) error {
	var data openFormData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to openFormData")
	}
	kind, err := form.ParseKind(data.Kind)
	if err != nil {
		return formError(err)
	}
	view, err := api.service.Open(kind, data.Values)
	if err != nil {
		return formError(err)
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api formApi) retrieve(ctx echo.Context) error {
	view, err := api.service.View(ctx.Param("id"))
	if err != nil {
		return formError(err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api formApi) change(ctx echo.Context) error {
	var data changeFormData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to changeFormData")
	}
	view, err := api.service.Change(ctx.Param("id"), data.Values)
	if err != nil {
		return formError(err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api formApi) submit(ctx echo.Context) error {
	view, err := api.service.Submit(ctx.Param("id"))
	if err != nil {
		return formError(err)
	}
	return ctx.JSON(http.StatusAccepted, view)
}

func (api formApi) reset(ctx echo.Context) error {
	view, err := api.service.Reset(ctx.Param("id"))
	if err != nil {
		return formError(err)
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api formApi) followUp(ctx echo.Context) error {
	view, err := api.service.OpenFollowUp(ctx.Param("id"))
	if err != nil {
		return formError(err)
	}
	return ctx.JSON(http.StatusCreated, view)
}

func (api formApi) close(ctx echo.Context) error {
	if err := api.service.Close(ctx.Param("id")); err != nil {
		return formError(err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
