package service

import (
	"errors"
	"fmt"
	"strings"

	"go-catalog-ws/pkg/validator"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrGone     = errors.New("product was deleted")
	ErrConflict = errors.New("product code already exists")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []*validator.ErrorResponse
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("'%s' failed on '%s'", f.FailedField, f.Tag))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func validate(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
