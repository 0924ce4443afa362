package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// New returns a validator that reports fields by their json name and knows
// the shared tags: notblank, ymd (YYYY-MM-DD), hms (HH:MM:SS) and jsonnumber.
// They accept fields of any type, so raw decoded JSON values can be checked.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		s, ok := stringValue(fl.Field())
		return ok && strings.TrimSpace(s) != ""
	})
	mustRegister(v, "ymd", func(fl validator.FieldLevel) bool {
		s, ok := stringValue(fl.Field())
		return ok && datePattern.MatchString(s)
	})
	mustRegister(v, "hms", func(fl validator.FieldLevel) bool {
		s, ok := stringValue(fl.Field())
		return ok && clockPattern.MatchString(s)
	})
	mustRegister(v, "jsonnumber", func(fl validator.FieldLevel) bool {
		return fl.Field().Kind() == reflect.Float64
	})

	return v
}

func stringValue(field reflect.Value) (string, bool) {
	if field.Kind() != reflect.String {
		return "", false
	}
	return field.String(), true
}

// IsMissing reports whether the field behind fe was absent or null.
func IsMissing(fe validator.FieldError) bool {
	return fe.Value() == nil
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// MustRegister adds a caller-specific tag to v.
func MustRegister(v *validator.Validate, tag string, fn validator.Func) {
	mustRegister(v, tag, fn)
}

// Messages translates every field error in err with msg. Errors that are not
// validation errors come back as a single message.
func Messages(err error, msg func(validator.FieldError) string) []string {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, msg(fieldError))
	}
	return messages
}

// SliceIndex returns the innermost slice index in the error's namespace, e.g.
// 2 for "UploadRequest.violations[2].latitude".
func SliceIndex(fe validator.FieldError) (int, bool) {
	matches := indexPattern.FindAllStringSubmatch(fe.Namespace(), -1)
	if len(matches) == 0 {
		return 0, false
	}
	idx, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0, false
	}
	return idx, true
}

// DescribeDecodeError turns a JSON decoding failure into a caller-facing message.
func DescribeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return fmt.Sprintf("%s must be %s", field, jsonKind(typeErr.Type))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	}

	return err.Error()
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	default:
		return "valid"
	}
}

// BindingMessages renders gin binding errors (query strings, URIs).
func BindingMessages(err error) []string {
	return Messages(err, getFieldErrorMessage)
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Limit":   "limit",
		"Offset":  "offset",
		"ID":      "id",
		"DroneID": "droneId",
		"Query":   "q",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
