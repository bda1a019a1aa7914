// Package validation holds the input rules shared by every entry point:
// the HTTP services, the admin bootstrap and the XLSX importer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	NameMinLen        = 20
	NameMaxLen        = 60
	AddressMaxLen     = 400
	PasswordMinLen    = 8
	PasswordMaxLen    = 16
	PasswordSymbols   = "!@#$%^&*"
	passwordPolicyTag = "password_policy"
	roleTag           = "user_role"
)

// Roles accepted by the user_role tag. Kept in sync with model.UserRole.
var Roles = []string{"SYSTEM_ADMIN", "NORMAL_USER", "STORE_OWNER"}

var (
	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		_ = validate.RegisterValidation(passwordPolicyTag, func(fl validator.FieldLevel) bool {
			return PasswordPolicy(fl.Field().String())
		})
		_ = validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
			return IsRole(fl.Field().String())
		})
	})
	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// PasswordPolicy: 8-16 characters, at least one uppercase letter and one of PasswordSymbols.
func PasswordPolicy(password string) bool {
	n := len([]rune(password))
	if n < PasswordMinLen || n > PasswordMaxLen {
		return false
	}
	var hasUpper, hasSymbol bool
	for _, r := range password {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if strings.ContainsRune(PasswordSymbols, r) {
			hasSymbol = true
		}
	}
	return hasUpper && hasSymbol
}

func IsRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Errors is a field-level validation failure keyed by JSON field name.
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first one.
func (e *Errors) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Field returns a single-field validation error.
func Field(field, message string) *Errors {
	e := &Errors{}
	e.Add(field, message)
	return e
}

// AsErrors unwraps err into *Errors.
func AsErrors(err error) (*Errors, bool) {
	var verr *Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Struct validates v against its `validate` tags.
func Struct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "must be a valid email address"
	case passwordPolicyTag:
		return fmt.Sprintf("password must be %d-%d characters long, include at least one uppercase letter and one special character (%s)",
			PasswordMinLen, PasswordMaxLen, PasswordSymbols)
	case roleTag:
		return "must be one of " + strings.Join(Roles, ", ")
	case "min", "max", "gte", "lte":
		return rangeMessage(fe)
	}
	return fmt.Sprintf("%s is invalid", field)
}

func rangeMessage(fe validator.FieldError) string {
	field := fe.Field()
	if fe.Kind() == reflect.String {
		switch field {
		case "name":
			return fmt.Sprintf("name must be between %d and %d characters", NameMinLen, NameMaxLen)
		case "address":
			return fmt.Sprintf("address must be at most %d characters", AddressMaxLen)
		}
		if fe.Tag() == "min" || fe.Tag() == "gte" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	if field == "value" {
		return "rating must be between 1 and 5"
	}
	if fe.Tag() == "min" || fe.Tag() == "gte" {
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	}
	return fmt.Sprintf("%s must be at most %s", field, fe.Param())
}
