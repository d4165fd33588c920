// Package validate validates request payloads with go-playground/validator
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError describes why one field failed validation
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is returned by Struct when at least one field is invalid
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	reasons := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		reasons = append(reasons, f.Reason)
	}
	return "validation failed: " + strings.Join(reasons, "; ")
}

// Validator wraps a configured validator with English messages
type Validator struct {
	core  *validator.Validate
	trans ut.Translator
}

// New creates a Validator that reports fields by their json names
func New() *Validator {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")

	v := validator.New()
	_ = en_translations.RegisterDefaultTranslations(v, trans)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{core: v, trans: trans}
}

// Struct validates s. It returns *Error for invalid fields, nil otherwise.
func (v *Validator) Struct(s any) error {
	err := v.core.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, item := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:  item.Field(),
			Reason: item.Translate(v.trans),
		})
	}
	return out
}
