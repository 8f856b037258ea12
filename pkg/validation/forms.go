package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ContactForm is the public contact form.
type ContactForm struct {
	Name    string `form:"name" json:"name" validate:"required"`
	Email   string `form:"email" json:"email" validate:"required,simple_email"`
	Subject string `form:"subject" json:"subject" validate:"required"`
	Message string `form:"message" json:"message" validate:"required,min=10"`
}

// SignUpForm is the registration form.
type SignUpForm struct {
	Username        string `form:"username" json:"username" validate:"required,username"`
	Email           string `form:"email" json:"email" validate:"required,simple_email"`
	Password        string `form:"password" json:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" validate:"eqfield=Password"`
}

// ResetPasswordForm sets a new password.
type ResetPasswordForm struct {
	Password        string `form:"password" json:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" validate:"eqfield=Password"`
}

// FieldError is one failed rule, keyed by the form field name.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

var validate = newValidator(DefaultPasswordOptions())

func newValidator(opts PasswordOptions) *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return CheckRequirements(fl.Field().String(), opts).Met()
	})
	return v
}

// Validate trims string fields of form in place and checks them. It returns
// one FieldError per failing field, in field order. form must be a pointer to
// one of the form structs.
func Validate(form any) []FieldError {
	trimStrings(form)

	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "simple_email":
		return MsgEmail
	case "min":
		if fe.Field() == "message" {
			return MsgMessageLength
		}
		return "Must be at least " + fe.Param() + " characters long."
	case "username":
		return MsgUsername
	case "password":
		pw, _ := fe.Value().(string)
		if errs := compositionErrors(pw, DefaultPasswordOptions()); len(errs) > 0 {
			return errs[0]
		}
		return "Password does not meet the requirements"
	case "eqfield":
		return MsgMismatch
	default:
		return "Invalid value."
	}
}

// trimStrings trims every string field except passwords, which are kept
// verbatim.
func trimStrings(form any) {
	v := reflect.ValueOf(form)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() {
			continue
		}
		if strings.Contains(strings.ToLower(t.Field(i).Name), "password") {
			continue
		}
		f.SetString(strings.TrimSpace(f.String()))
	}
}
