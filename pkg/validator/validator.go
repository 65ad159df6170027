package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hebamio/midwife-api/internal/schedule"
)

// Validator wraps go-playground/validator with the custom rules used by
// booking payloads.
type Validator struct {
	v *validator.Validate
}

func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := Register(v); err != nil {
		return nil, err
	}
	return &Validator{v: v}, nil
}

// Register adds the custom rules to an existing validator engine, such
// as the one gin uses for binding tags.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return fmt.Errorf("failed to register clock rule: %w", err)
	}
	if err := v.RegisterValidation("datekey", validateDateKey); err != nil {
		return fmt.Errorf("failed to register datekey rule: %w", err)
	}
	return nil
}

func (va *Validator) Validate(obj interface{}) error {
	err := va.v.Struct(obj)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// validateClock accepts HH:MM 24h strings.
func validateClock(fl validator.FieldLevel) bool {
	_, err := schedule.ParseClock(fl.Field().String())
	return err == nil
}

// validateDateKey accepts dd/mm/yyyy strings.
func validateDateKey(fl validator.FieldLevel) bool {
	_, err := schedule.ParseDateKey(fl.Field().String(), nil)
	return err == nil
}
