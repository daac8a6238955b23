package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type RegisterInput struct {
	Username string `validate:"required,min=3,max=80"`
	Password string `validate:"required,min=6"`
}

var registerMessages = map[string]string{
	"Username.required": "Username and password required",
	"Password.required": "Username and password required",
	"Username.min":      "Username must be at least 3 characters",
	"Username.max":      "Username must be at most 80 characters",
	"Password.min":      "Password must be at least 6 characters",
}

type GoalInput struct {
	Title    string   `validate:"required,max=200"`
	Deadline string   `validate:"required,max=50"`
	Tasks    []string `validate:"required,min=1,dive,required,max=300"`
}

var goalMessages = map[string]string{
	"Title.required":    "Goal title and deadline are required",
	"Deadline.required": "Goal title and deadline are required",
	"Title.max":         "Goal title must be at most 200 characters",
	"Deadline.max":      "Deadline must be at most 50 characters",
	"Tasks.required":    "Please add at least one task",
	"Tasks.min":         "Please add at least one task",
	"Tasks[].required":  "Task descriptions cannot be empty",
	"Tasks[].max":       "Task descriptions must be at most 300 characters",
}

// validateInput runs struct validation and converts the first failure into a
// ValidationError using messages, keyed by "Field.tag" ("Field[].tag" for
// slice elements).
func validateInput(input interface{}, messages map[string]string) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := fe.Field()
	if base, _, found := strings.Cut(field, "["); found {
		field = base + "[]"
	}
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return NewValidationError(msg)
	}
	return NewValidationError(fmt.Sprintf("%s is invalid", field))
}
