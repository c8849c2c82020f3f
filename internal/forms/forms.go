// Package forms decodes submitted HTML forms and validates them field by field.
package forms

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/mold/v4/modifiers"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type RegisterForm struct {
	Email    string `form:"email" mod:"trim" validate:"required,email,max=100"`
	Username string `form:"username" mod:"trim" validate:"required,max=150"`
	// bcrypt refuses passwords longer than 72 bytes
	Password string `form:"password" validate:"required,maxbytes=72"`
}

type LoginForm struct {
	Email    string `form:"email" mod:"trim" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type PostForm struct {
	Title    string `form:"title" mod:"trim" validate:"required,max=250"`
	Subtitle string `form:"subtitle" mod:"trim" validate:"required,max=250"`
	ImgURL   string `form:"img_url" mod:"trim" validate:"required,url,max=250"`
	Body     string `form:"body" mod:"trim" validate:"required"`
}

type CommentForm struct {
	Text string `form:"text" mod:"trim" validate:"required"`
}

var (
	decoder = newDecoder()
	conform = modifiers.New()
)

func newDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("form")
	return d
}

// Errors maps a form field name to its message.
type Errors map[string]string

func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(err)
	}
	err := validate.RegisterTranslation("maxbytes", trans,
		func(ut ut.Translator) error {
			return ut.Add("maxbytes", "{0} must be at most {1} bytes long", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("maxbytes", fe.Field(), fe.Param())
			return t
		},
	)
	if err != nil {
		panic(err)
	}

	return &Validator{validate: validate, trans: trans}
}

// maxBytes limits the encoded length of a string, not its rune count.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate returns nil when the form is valid, otherwise one message per field.
func (v *Validator) Validate(dst any) Errors {
	return v.translate(v.validate.Struct(dst))
}

// ValidateExcept validates dst but skips the named struct fields.
func (v *Validator) ValidateExcept(dst any, fields ...string) Errors {
	return v.translate(v.validate.StructExcept(dst, fields...))
}

func (v *Validator) translate(err error) Errors {
	if err == nil {
		return nil
	}

	errs := Errors{}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs.Add("form", err.Error())
		return errs
	}
	for _, fe := range validationErrors {
		errs.Add(fe.Field(), fe.Translate(v.trans))
	}
	return errs
}

// Decode fills dst (a struct pointer) from the request form using the `form`
// tag, then applies the `mod` modifiers such as trim.
func Decode(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return err
	}
	return conform.Struct(r.Context(), dst)
}
