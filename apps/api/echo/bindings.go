package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edupay/core"
)

var (
	currencyParam   = "currency"
	defaultCurrency = "USD"
)

type Currency struct {
	Code string
}

// Bind reads the currency query param, defaulting to USD.
func (cur *Currency) Bind(ctx echo.Context, validate *validator.Validate) error {
	cur.Code = strings.ToUpper(core.CleanString(ctx.QueryParam(currencyParam)))
	if cur.Code == "" {
		cur.Code = defaultCurrency
	}
	if err := validate.Var(cur.Code, "oneof=USD TZS"); err != nil {
		return core.NewValidationError(
			errors.Wrap(err, "validating currency"),
			core.FieldError{Field: currencyParam, Error: "must be one of USD, TZS"},
		)
	}
	return nil
}
