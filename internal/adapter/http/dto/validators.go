package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/Panmoni/localsolana-api/internal/solana"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	fiatCodeRe  = regexp.MustCompile(`^[A-Z]{3}$`)
	clockTimeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("solana_address", validateSolanaAddress)
		_ = v.RegisterValidation("fiat_code", validateFiatCode)
		_ = v.RegisterValidation("clock_time", validateClockTime)
	}
}

// validateSolanaAddress accepts canonical base58-encoded 32-byte public keys.
func validateSolanaAddress(fl validator.FieldLevel) bool {
	_, err := solana.NormalizeWallet(fl.Field().String())
	return err == nil
}

// validateFiatCode accepts ISO 4217 style uppercase three-letter codes.
func validateFiatCode(fl validator.FieldLevel) bool {
	return fiatCodeRe.MatchString(fl.Field().String())
}

// validateClockTime accepts HH:MM in 24-hour form.
func validateClockTime(fl validator.FieldLevel) bool {
	return clockTimeRe.MatchString(fl.Field().String())
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer. Applied to free-text request
// bodies before they reach the services.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
