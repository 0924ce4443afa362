// Package validation checks registration, login and upload payloads and
// reports every problem as a human-readable message.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	uploadDto "anoa.com/droneanalytics/internal/modules/upload/dto"
	userDto "anoa.com/droneanalytics/internal/modules/user/dto"
	appValidator "anoa.com/droneanalytics/pkg/validator"
)

// Result is the outcome of a validation run. Errors keeps the order in which
// the rules were checked.
type Result struct {
	Valid  bool
	Errors []string
}

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	digitPattern    = regexp.MustCompile(`\d`)
	specialPattern  = regexp.MustCompile(`[@$!%*?&]`)

	engine = newEngine()
)

func newEngine() *validator.Validate {
	v := appValidator.New()
	appValidator.MustRegister(v, "looseemail", func(fl validator.FieldLevel) bool {
		return EmailProblem(fl.Field().String()) == ""
	})
	appValidator.MustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
		return PasswordProblem(fl.Field().String(), true) == ""
	})
	appValidator.MustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return UsernameProblem(fl.Field().String()) == ""
	})
	return v
}

// EmailProblem returns the message for an unusable email, or "".
func EmailProblem(email string) string {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(trimmed) {
		return "Please provide a valid email address"
	}
	return ""
}

// PasswordProblem returns the first failed password rule, or "". Strength
// rules only apply when strict is set; login only checks presence.
func PasswordProblem(password string, strict bool) string {
	if password == "" {
		return "Password is required"
	}
	if !strict {
		return ""
	}

	switch {
	case utf8.RuneCountInString(password) < 8:
		return "Password must be at least 8 characters long"
	case !lowerPattern.MatchString(password):
		return "Password must contain at least one lowercase letter"
	case !upperPattern.MatchString(password):
		return "Password must contain at least one uppercase letter"
	case !digitPattern.MatchString(password):
		return "Password must contain at least one number"
	case !specialPattern.MatchString(password):
		return "Password must contain at least one special character"
	}
	return ""
}

// UsernameProblem returns the message for an unusable username, or "".
func UsernameProblem(username string) string {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "Username is required"
	}
	if utf8.RuneCountInString(trimmed) < 3 {
		return "Username must be at least 3 characters"
	}
	if !usernamePattern.MatchString(trimmed) {
		return "Username can only contain letters, numbers, and underscores"
	}
	return ""
}

func Registration(req userDto.RegisterRequest) Result {
	return run(req, accountMessage)
}

func Login(req userDto.LoginRequest) Result {
	return run(req, accountMessage)
}

func Upload(req uploadDto.UploadRequest) Result {
	return run(req, uploadMessage)
}

func run(payload any, msg func(validator.FieldError) string) Result {
	errs := appValidator.Messages(engine.Struct(payload), msg)
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func accountMessage(fe validator.FieldError) string {
	value, _ := fe.Value().(string)

	switch fe.Tag() {
	case "looseemail":
		return EmailProblem(value)
	case "strongpassword":
		return PasswordProblem(value, true)
	case "username":
		return UsernameProblem(value)
	case "required":
		if fe.Field() == "password" {
			return PasswordProblem("", false)
		}
		return fmt.Sprintf("%s is required", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func uploadMessage(fe validator.FieldError) string {
	field := fe.Field()

	var msg string
	switch fe.Tag() {
	case "notblank":
		if _, isString := fe.Value().(string); isString || appValidator.IsMissing(fe) {
			msg = fmt.Sprintf("%s is required", field)
		} else {
			msg = fmt.Sprintf("%s must be a string", field)
		}
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "jsonnumber":
		if appValidator.IsMissing(fe) {
			msg = fmt.Sprintf("%s is required", field)
		} else {
			msg = fmt.Sprintf("%s must be a number", field)
		}
	case "min":
		msg = fmt.Sprintf("%s must be a non-empty array", field)
	case "ymd":
		msg = fmt.Sprintf("%s must be in YYYY-MM-DD format", field)
	case "hms":
		msg = fmt.Sprintf("%s must be in HH:MM:SS format", field)
	case "latitude":
		msg = fmt.Sprintf("%s must be a number between -90 and 90", field)
	case "longitude":
		msg = fmt.Sprintf("%s must be a number between -180 and 180", field)
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}

	if field == "violations" && fe.Tag() == "required" {
		msg = "violations must be a non-empty array"
	}

	if idx, ok := appValidator.SliceIndex(fe); ok {
		return fmt.Sprintf("Violation %d: %s", idx, msg)
	}
	return msg
}
