package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// usernamePattern matches 3-64 lowercase letters, digits, dots, hyphens and
// underscores, mirroring what the registration form accepts.
var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,64}$`)

// registerCustomValidators installs custom binding validators on gin's
// validator engine. Safe to call more than once.
func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	}
}
