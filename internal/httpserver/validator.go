package httpserver

import (
	"fmt"

	"github.com/Skotchmaster/ecom/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type requestValidator struct {
	v *validator.Validate
}

func NewValidator() echo.Validator {
	return &requestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (r *requestValidator) Validate(i any) error {
	if err := r.v.Struct(i); err != nil {
		return fmt.Errorf("%w: %s", service.ErrValidation, err.Error())
	}
	return nil
}
