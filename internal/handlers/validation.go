package handlers

import (
	"sync"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the domain tags used by dto binding rules to gin's validator.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("intent", func(fl validator.FieldLevel) bool {
			return domain.Intent(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("draft_status", func(fl validator.FieldLevel) bool {
			return domain.DraftStatus(fl.Field().String()).IsValid()
		})
	})
}
