package v1

import (
	"go-hiring-workflow/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidations adds workflow-specific rules to gin's binding engine.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("outcome", func(fl validator.FieldLevel) bool {
		return domain.DecisionOutcome(fl.Field().String()).IsValid()
	})
}
