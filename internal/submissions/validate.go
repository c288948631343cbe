package submissions

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for birth dates.
const DateLayout = "2006-01-02"

// MinBirthDate is the oldest accepted birth date.
var MinBirthDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// namePattern accepts letters in any script plus spaces, hyphens, and
// apostrophes.
var namePattern = regexp.MustCompile(`^[\p{L} '-]+$`)

// Input carries the untrusted submit payload.
type Input struct {
	Name        string `json:"name" validate:"required,max=100,personname"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
}

var (
	inputValidate *validator.Validate
	validateOnce  sync.Once
)

// inputValidator returns the shared validator, configured on first use
// with json field naming and the person-name rule.
func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		inputValidate = validator.New()

		inputValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = inputValidate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
			return namePattern.MatchString(fl.Field().String())
		})
	})
	return inputValidate
}

// validationMessage renders one field error as user-facing text.
func validationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		switch fe.Tag() {
		case "required":
			return "name is required"
		case "max":
			return "name must be at most 100 characters"
		case "personname":
			return "name may only contain letters, spaces, hyphens, and apostrophes"
		}
	case "dateOfBirth":
		switch fe.Tag() {
		case "required":
			return "dateOfBirth is required"
		case "datetime":
			return "dateOfBirth must be a valid date in YYYY-MM-DD format"
		}
	}
	return fe.Field() + " failed validation: " + fe.Tag()
}

// ValidateInput trims and checks an untrusted payload, accumulating a
// message for every failed field so the caller can report them all at
// once. On success it returns the cleaned name and the parsed birth
// date. The range rules (not before MinBirthDate, not after the current
// date) compare calendar days against now in UTC.
func ValidateInput(in Input, now time.Time) (string, time.Time, []string) {
	in.Name = strings.TrimSpace(in.Name)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)

	var msgs []string
	if err := inputValidator().Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				msgs = append(msgs, validationMessage(fe))
			}
		} else {
			msgs = append(msgs, "submission payload is invalid")
		}
	}

	var born time.Time
	if parsed, err := time.Parse(DateLayout, in.DateOfBirth); err == nil {
		born = parsed
		utcNow := now.UTC()
		today := time.Date(utcNow.Year(), utcNow.Month(), utcNow.Day(), 0, 0, 0, 0, time.UTC)
		if born.After(today) {
			msgs = append(msgs, "dateOfBirth cannot be in the future")
		} else if born.Before(MinBirthDate) {
			msgs = append(msgs, "dateOfBirth cannot be before 1900-01-01")
		}
	}

	if len(msgs) > 0 {
		return "", time.Time{}, msgs
	}
	return in.Name, born, nil
}
