package common

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground validator with the project's custom rules.
type Validator struct {
	validate *validator.Validate
}

var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
	acceptedDomains      = []string{"gmail.com", "yahoo.com"}
	acceptedDomainsMu    sync.RWMutex
)

// SetAcceptedEmailDomains replaces the domain suffixes allowed by the
// email_domain rule. Called once at startup from config.
func SetAcceptedEmailDomains(domains []string) {
	if len(domains) == 0 {
		return
	}
	acceptedDomainsMu.Lock()
	defer acceptedDomainsMu.Unlock()
	acceptedDomains = append([]string(nil), domains...)
}

func AcceptedEmailDomains() []string {
	acceptedDomainsMu.RLock()
	defer acceptedDomainsMu.RUnlock()
	return append([]string(nil), acceptedDomains...)
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("email_domain", validateEmailDomain)
	v.RegisterValidation("safe_name", validateSafeName)
	return &Validator{validate: v}
}

// Validate checks struct tags and returns an ErrValidation carrying one message
// per failed field.
func Validate(i interface{}) error {
	defaultValidatorOnce.Do(func() { defaultValidator = NewValidator() })
	return defaultValidator.Validate(i)
}

func (cv *Validator) Validate(i interface{}) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "eqfield":
		return "passwords do not match"
	case "email":
		return field + " must be a valid email address"
	case "email_domain":
		return "email must end with " + strings.Join(prefixed(AcceptedEmailDomains()), " or ")
	case "safe_name":
		return field + " contains unsupported characters"
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	case "max", "lte":
		return field + " must be at most " + fe.Param()
	case "datetime":
		return field + " must be a date formatted as " + fe.Param()
	default:
		return field + " is invalid"
	}
}

func validateEmailDomain(fl validator.FieldLevel) bool {
	return HasAcceptedEmailDomain(fl.Field().String())
}

// HasAcceptedEmailDomain reports whether email ends with "@<domain>" for one of
// the accepted domains. Domains compare case-insensitively.
func HasAcceptedEmailDomain(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, d := range AcceptedEmailDomains() {
		if strings.HasSuffix(email, "@"+d) {
			return true
		}
	}
	return false
}

// validateSafeName rejects values that would escape a file name: path
// separators, dot entries and control characters.
func validateSafeName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "." || s == ".." {
		return false
	}
	for _, r := range s {
		if r == '/' || r == '\\' || r < 0x20 {
			return false
		}
	}
	return true
}

func prefixed(domains []string) []string {
	out := make([]string, len(domains))
	for i, d := range domains {
		out[i] = "@" + d
	}
	return out
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
