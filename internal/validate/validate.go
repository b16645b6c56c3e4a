// Package validate holds the syntactic checks for short codes and long URLs.
// Neither check touches the network.
package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// TagShortCode is the validator tag backed by ShortCode.
	TagShortCode = "shortcode"
	// TagLongURL is the validator tag backed by LongURL.
	TagLongURL = "longurl"
)

var (
	shortCodeRe = regexp.MustCompile(`^[a-z0-9_-]+$`)
	longURLRe   = regexp.MustCompile(`^https?://(?:[a-zA-Z0-9$\-_@.&+!*(),]|%[0-9a-fA-F]{2})+`)
)

// ShortCode reports whether s is a non-empty string of lowercase letters,
// digits, hyphens and underscores.
func ShortCode(s string) bool {
	return shortCodeRe.MatchString(s)
}

// LongURL reports whether s starts with an http or https scheme followed by
// at least one permitted URL character or percent-encoded octet.
func LongURL(s string) bool {
	return longURLRe.MatchString(s)
}

// New returns a validator that names fields after their json tags and knows
// the shortcode and longurl tags.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation(TagShortCode, func(fl validator.FieldLevel) bool {
		return ShortCode(fl.Field().String())
	})
	_ = v.RegisterValidation(TagLongURL, func(fl validator.FieldLevel) bool {
		return LongURL(fl.Field().String())
	})

	return v
}
