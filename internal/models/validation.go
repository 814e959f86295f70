package models

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/sarenasr/Rappi-Dashboard/internal/filter"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// Validator returns the shared request validator. Messages name fields by
// their query parameter.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		translator, _ = uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("query")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, translator)

		_ = v.RegisterValidation("weekdays", func(fl validator.FieldLevel) bool {
			_, err := filter.ParseWeekdays(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterTranslation("weekdays", translator,
			func(ut ut.Translator) error {
				return ut.Add("weekdays", "{0} must be a comma separated list of weekday names", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("weekdays", fe.Field())
				return msg
			},
		)

		validate = v
	})
	return validate
}

// FieldError is the first failing field of a request
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Validate checks v against its validate tags. A failure is returned as a
// *FieldError for the first offending field.
func Validate(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &FieldError{Field: verrs[0].Field(), Message: verrs[0].Translate(translator)}
	}
	return err
}
