package config

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/motionkit/internal/effect"
	"github.com/alexisbeaulieu97/motionkit/internal/motion"
	"github.com/alexisbeaulieu97/motionkit/internal/sequence"
	"github.com/alexisbeaulieu97/motionkit/internal/spring"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	identPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
			return identPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			_, err := ParseDuration(fl.Field().String())
			return err == nil
		})

		registerParser(v, "preset", func(s string) error { _, err := effect.ParsePreset(s); return err })
		registerParser(v, "easing", func(s string) error { _, err := effect.ParseEasing(s); return err })
		registerParser(v, "direction", func(s string) error { _, err := sequence.ParseDirection(s); return err })
		registerParser(v, "operator", func(s string) error { _, err := sequence.ParseOp(s); return err })
		registerParser(v, "sensitivity", func(s string) error { _, err := motion.ParseLevel(s); return err })
		registerParser(v, "category", func(s string) error { _, err := motion.ParseCategory(s); return err })
		registerParser(v, "importance", func(s string) error { _, err := motion.ParseImportance(s); return err })
		registerParser(v, "spring_preset", func(s string) error { _, err := spring.ParsePreset(s); return err })
		registerParser(v, "integrator", func(s string) error { _, err := spring.ParseIntegrator(s); return err })

		validateInst = v
	})

	return validateInst
}

// registerParser exposes a name parser from a runtime package as a validation tag.
func registerParser(v *validator.Validate, tag string, parse func(string) error) {
	_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return parse(fl.Field().String()) == nil
	})
}

// GetValidator returns a configured validator instance for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}
