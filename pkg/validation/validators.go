package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxCVVersion bounds operator-entered versions.
const MaxCVVersion = 999

var (
	// Letters, numbers, spaces and common professional punctuation: . ' - / & ( ) ,
	nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),-]+$`)

	// E164-like phone: optional +, 7-15 digits once separators are stripped
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// New returns a validator with the custom rules registered and errors keyed by JSON field name.
func New() *validator.Validate {
	v := validator.New()
	Configure(v)
	return v
}

// Configure keys errors by JSON field name and registers the custom rules. The HTTP layer
// applies it to gin's binding validator so request tags can use the same rules.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	RegisterValidators(v)
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("cv_version", CVVersion)
}

func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// ValidPhone accepts spaces, dashes and dots between digits.
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	stripped := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(val)
	return phoneRegex.MatchString(stripped)
}

// NoEmoji rejects supplementary-plane characters and symbol categories.
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// CVVersion requires a positive version no larger than MaxCVVersion.
func CVVersion(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 1 && v <= MaxCVVersion
}
