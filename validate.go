package textbelt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var requestValidator = validator.New()

// validateRequest runs the struct-tag checks on a request record and folds
// any field failures into a single KindValidation error. It performs no I/O.
func validateRequest(req any) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		return newError(KindValidation, "invalid request: "+strings.Join(parts, ", "), err)
	}
	return newError(KindValidation, "invalid request", err)
}
