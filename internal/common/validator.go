package common

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

var (
	defaultValidator     *validator.Validate
	defaultValidatorOnce sync.Once
)

func sharedValidator() *validator.Validate {
	defaultValidatorOnce.Do(func() {
		defaultValidator = validator.New()
	})
	return defaultValidator
}

// ValidateStruct runs all struct tag validations on i.
func ValidateStruct(i interface{}) error {
	if err := sharedValidator().Struct(i); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

// ValidatePartial validates only the named fields of i.
func ValidatePartial(i interface{}, fields ...string) error {
	if err := sharedValidator().StructPartial(i, fields...); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}

type GenericEchoValidator struct {
	Validator *validator.Validate
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	if gv.Validator == nil {
		gv.Validator = sharedValidator()
	}
	if err := gv.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	return nil
}
