package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/thablackcodes/gresh-finance/internal/money"
)

// ValidationError reports the first invalid field of a request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// messages maps "<Struct>.<field>.<tag>" or "<field>.<tag>" to a client message.
var messages = map[string]string{
	"accountNumber.required":                 "Account number must be exactly 10 characters long.",
	"accountNumber.len":                      "Account number must be exactly 10 characters long.",
	"accountNumber.accountnumber":            "Account number must contain only digits.",
	"amount.gt":                              "Amount must be a positive number.",
	"narration.max":                          "Narration cannot exceed 255 characters.",
	"fromAccountNumber.required":             "Sender account number must be 10 digits",
	"fromAccountNumber.len":                  "Sender account number must be 10 digits",
	"fromAccountNumber.accountnumber":        "Sender account number must be 10 digits",
	"toAccountNumber.required":               "Recipient account number must be 10 digits",
	"toAccountNumber.len":                    "Recipient account number must be 10 digits",
	"toAccountNumber.accountnumber":          "Recipient account number must be 10 digits",
	"TransferRequest.amount.gt":              "Transfer amount must be greater than zero",
	"firstName.required":                     "first name is required",
	"lastName.required":                      "last name is required",
	"email.required":                         "Invalid email address",
	"email.email":                            "Invalid email address",
	"password.required":                      "Password must be at least 8 characters long",
	"password.min":                           "Password must be at least 8 characters long",
	"password.hasupper":                      "Password must contain at least one uppercase letter",
	"password.hasdigit":                      "Password must contain at least one number",
	"password.hasspecial":                    "Password must contain at least one special character",
	"confirmPassword.required":               "Passwords do not match",
	"confirmPassword.eqfield":                "Passwords do not match",
	"UpdateAccountRequest.accountType.oneof": "account type must be either HIDA or CURRENT",
	"status.oneof":                           "status must be one of ACTIVE, FROZEN or CLOSED",
	"CreateAccountRequest.accountType.oneof": "account type must be either SAVINGS,HIDA OR CURRENT",
	"accountType.required":                   "account type must be either SAVINGS,HIDA OR CURRENT",
	"currency.len":                           "currency must be a 3-letter ISO code",
	"currency.alpha":                         "currency must be a 3-letter ISO code",
}

// Validator checks request bodies against their struct tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the account number and password
// rules and decimal support registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("accountnumber", func(fl validator.FieldLevel) bool {
		return money.IsAccountNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("hasupper", containsRune(unicode.IsUpper))
	_ = v.RegisterValidation("hasdigit", containsRune(unicode.IsDigit))
	_ = v.RegisterValidation("hasspecial", containsRune(func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}))

	return &Validator{validate: v}
}

func containsRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), pred) >= 0
	}
}

// Struct validates req and returns a *ValidationError for the first failure.
func (v *Validator) Struct(req any) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	structName := strings.SplitN(fe.Namespace(), ".", 2)[0]
	if msg, ok := messages[structName+"."+fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}
