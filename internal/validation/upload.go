package validation

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMissingName = errors.New("missing name")
	ErrMissingType = errors.New("missing type")
	ErrMissingData = errors.New("missing data")
)

var validate = validator.New()

// Upload holds the client supplied fields of a new file record.
type Upload struct {
	Name string `validate:"required"`
	Type string `validate:"required,oneof=folder file image"`
	Data string `validate:"required_unless=Type folder"`
}

// ValidateUpload checks name, type and data in that order and reports the first problem.
// An unknown type is reported as a missing one.
func ValidateUpload(u Upload) error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	switch validationErrs[0].Field() {
	case "Name":
		return ErrMissingName
	case "Type":
		return ErrMissingType
	default:
		return ErrMissingData
	}
}
