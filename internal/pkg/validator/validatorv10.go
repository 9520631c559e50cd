package validator

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// Password bounds follow NIST 800-63B. The upper bound is bcrypt's input
// limit in bytes.
const (
	passwordMinLen = 8
	passwordMaxLen = 72
)

var ErrTranslatorNotFound = errors.New("validator: translator not found")

// V10ValidationError maps a field key to its English message. Keys are the
// json tag of the field, or its snake_case name when untagged.
type V10ValidationError map[string]string

func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}
	b, _ := json.Marshal(map[string]string(vs)) //nolint:errchkjson // string map cannot fail
	return string(b)
}

func (vs V10ValidationError) Values() map[string]string { return vs }

// V10Validator implements Validator with go-playground/validator.
type V10Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewV10Validator() (*V10Validator, error) {
	lang := en.New()
	trans, ok := ut.New(lang, lang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(tagName)

	if err := entrans.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}
	if err := registerPassword(v, trans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: v, trans: trans}, nil
}

// tagName is the name used in messages and error keys.
func tagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fieldKey(f.Name)
	default:
		return name
	}
}

func registerPassword(v *validator.Validate, trans ut.Translator) error {
	err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		n := len(fl.Field().String())
		return n >= passwordMinLen && n <= passwordMaxLen
	})
	if err != nil {
		return err
	}

	return v.RegisterTranslation("password", trans,
		func(t ut.Translator) error {
			return t.Add("password", "{0} must be 8-72 characters", false)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(fe.Tag(), fe.Field())
			return msg
		},
	)
}

// Validate returns V10ValidationError for rule failures and the raw error
// for misuse such as passing a non struct.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}

	out := make(V10ValidationError, len(fes))
	for _, fe := range fes {
		out[fe.Field()] = fe.Translate(v.trans)
	}
	return out
}
