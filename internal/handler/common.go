package handler

import (
	"github.com/soranokaze/glimpanel/pkg/validator"
)

func formatValidationError(err error) string {
	return validator.FormatValidationError(err)
}
