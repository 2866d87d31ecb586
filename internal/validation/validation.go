package validation

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

const DefaultLanguage = "en"

// messageProvider is implemented by request DTOs that carry their own
// user-facing messages, keyed by "GoField.tag".
type messageProvider interface {
	ValidationMessages() map[string]string
}

// Validator validates request DTOs and renders field errors in the
// request's culture.
type Validator struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
}

func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("password_policy", validatePasswordPolicy); err != nil {
		return nil, err
	}

	english := en.New()
	uni := ut.New(english, english, fr.New())

	enTrans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}
	frTrans, _ := uni.GetTranslator("fr")
	if err := fr_translations.RegisterDefaultTranslations(validate, frTrans); err != nil {
		return nil, err
	}
	if err := addMessages(uni); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, uni: uni}, nil
}

// Struct validates s and returns messages per JSON field name, or nil when s
// is valid. Messages are rendered in lang.
func (v *Validator) Struct(s interface{}, lang string) (map[string][]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	var custom map[string]string
	if mp, ok := s.(messageProvider); ok {
		custom = mp.ValidationMessages()
	}

	trans := v.translator(lang)
	out := make(map[string][]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		var msg string
		if key, ok := custom[fe.StructField()+"."+fe.Tag()]; ok {
			msg = lookup(trans, key)
		} else {
			msg = fe.Translate(trans)
		}
		out[fe.Field()] = append(out[fe.Field()], msg)
	}
	return out, nil
}

func (v *Validator) translator(lang string) ut.Translator {
	trans, found := v.uni.GetTranslator(lang)
	if !found {
		trans, _ = v.uni.GetTranslator(DefaultLanguage)
	}
	return trans
}

// validatePasswordPolicy requires at least 6 characters including a digit,
// a lowercase letter, an uppercase letter and a non-alphanumeric character.
func validatePasswordPolicy(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len([]rune(password)) < 6 {
		return false
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}
	return hasDigit && hasLower && hasUpper && hasSymbol
}
