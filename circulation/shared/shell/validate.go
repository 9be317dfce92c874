package shell

import (
	"github.com/go-playground/validator/v10"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

var commandValidator = validator.New()

// ValidateCommand checks the struct tags of a command or query. Violations are core.InvalidInput errors.
func ValidateCommand(command any) error {
	if err := commandValidator.Struct(command); err != nil {
		return core.InvalidInput(err)
	}

	return nil
}
