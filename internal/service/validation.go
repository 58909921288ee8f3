package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"petition-service/internal/model"
)

// NewValidator returns a validator with the petition domain rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("zone", func(fl validator.FieldLevel) bool {
		_, ok := model.NormalizeZone(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("encroachment_type", func(fl validator.FieldLevel) bool {
		_, ok := model.NormalizeEncroachmentType(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("petition_source", func(fl validator.FieldLevel) bool {
		_, ok := model.NormalizeSource(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("submitter_type", func(fl validator.FieldLevel) bool {
		_, ok := model.NormalizeSubmitter(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("time_bound", func(fl validator.FieldLevel) bool {
		return model.TimeBound(fl.Field().String()).Valid()
	})
	return v
}

// invalidInput converts validator failures into ErrInvalidInput with a
// readable field list.
func invalidInput(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not a valid %s", fe.Field(), strings.ReplaceAll(fe.Tag(), "_", " ")))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
