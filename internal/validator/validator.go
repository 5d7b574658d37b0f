// Package validator registers the custom binding rules used by request
// structs on gin's underlying validator engine.
package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"academy_backend/internal/models"
)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Register installs the custom rules. Call once at startup.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	rules := map[string]validator.Func{
		"userrole":   isUserRole,
		"lessontype": isLessonType,
		"subdomain":  isSubdomain,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func isUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).Valid()
}

func isLessonType(fl validator.FieldLevel) bool {
	return models.LessonType(fl.Field().String()).Valid()
}

func isSubdomain(fl validator.FieldLevel) bool {
	sub := strings.ToLower(fl.Field().String())
	return len(sub) >= 3 && len(sub) <= 63 && subdomainPattern.MatchString(sub)
}
