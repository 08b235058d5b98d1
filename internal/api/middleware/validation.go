package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "speechbench/internal/api/errors"
)

// Validator is the domain validation hook.
type Validator interface {
	Validate() error
}

// ValidateForm binds multipart/form fields into req and runs struct tag and
// domain validation.
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(validationErrs))
			for _, fieldError := range validationErrs {
				fields = append(fields, strings.ToLower(fieldError.Field()))
			}
			return apierrors.NewValidationError(
				"invalid request fields: " + strings.Join(fields, ", "))
		}
		return apierrors.NewBadRequestError("malformed request")
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
