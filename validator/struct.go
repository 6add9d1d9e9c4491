// Package validator turns struct validation failures into per-field
// messages keyed by JSON name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// errorMessages maps languages to validation tags to messages.
var errorMessages = map[string]map[string]string{
	"en": {
		"required": "The field '%s' is required.",
		"email":    "The field '%s' must be a valid email address.",
		"min":      "The field '%s' must be at least %s characters long.",
		"max":      "The field '%s' must be no longer than %s characters.",
	},
	"it": {
		"required": "Il campo '%s' è obbligatorio.",
		"email":    "Il campo '%s' deve essere un indirizzo email valido.",
		"min":      "Il campo '%s' deve contenere almeno %s caratteri.",
		"max":      "Il campo '%s' non può superare %s caratteri.",
	},
}

func parseMessage(field string, e validator.FieldError, lang string) string {
	if msgs, ok := errorMessages[lang]; ok {
		if msg, ok := msgs[e.Tag()]; ok {
			if strings.Count(msg, "%s") == 2 {
				return fmt.Sprintf(msg, field, e.Param())
			}
			return fmt.Sprintf(msg, field)
		}
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", field, e.Tag())
}

// ValidateStruct validates s and returns JSON field names mapped to
// messages. The result is empty when s is valid. lang defaults to "en".
func ValidateStruct(s any, lang ...string) map[string]string {
	l := "en"
	if len(lang) > 0 && lang[0] != "" {
		l = lang[0]
	}

	out := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, e := range verrs {
		out[e.Field()] = parseMessage(e.Field(), e, l)
	}
	return out
}
