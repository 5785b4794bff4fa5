package models

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate trims the free-text fields and checks the create rules.
func (in *EventInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)

	if in.Title == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	return fromValidator(validate.Struct(in))
}

// Validate checks a partial update. Title may be omitted but never blanked.
func (p *EventPatch) Validate() error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		p.Title = &title
	}
	if p.Date != nil && p.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "must not be empty"}
	}
	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		p.Category = &category
	}
	if p.Location != nil {
		location := strings.TrimSpace(*p.Location)
		p.Location = &location
	}
	return fromValidator(validate.Struct(p))
}

func fromValidator(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := "is invalid"
		if fe.Tag() == "max" {
			reason = "must be at most " + fe.Param() + " characters"
		}
		return &ValidationError{Field: fe.Field(), Reason: reason}
	}
	return &ValidationError{Reason: err.Error()}
}
