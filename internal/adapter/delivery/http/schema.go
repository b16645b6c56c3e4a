package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/validate"
)

// Reasons returned as plain-text bodies.
const (
	reasonInvalidRequest = "Invalid request!"
	reasonInvalidURL     = "URL scheme check failed!"
	reasonConflict       = "Short URL not valid or already in use!"
	reasonNoChange       = "LongURL is the same!"
	reasonNotFound       = "Not found!"
	reasonServerError    = "Something went wrong!"
	reasonNotLoggedIn    = "Not logged in!"
	reasonPublicMode     = "Using public mode."
	reasonWrongPassword  = "Wrong password!"
	reasonLoggedIn       = "Correct password!"
	reasonLoggedOut      = "Logged out!"
	reasonNoSession      = "You don't seem to be logged in."
	reasonKeyError       = "Generate Api Key Error!"
	reasonKeyReset       = "API key reset."
)

// addLinkRequest fields are ordered so that the first validation error
// matches the order the registry checks them in.
type addLinkRequest struct {
	LongURL   string `json:"longlink" validate:"required,longurl"`
	ShortCode string `json:"shortlink" validate:"omitempty,shortcode"`
}

type editLinkRequest struct {
	LongURL string `json:"longlink" validate:"required,longurl"`
}

type linkResponse struct {
	ShortCode string `json:"shortlink"`
	LongURL   string `json:"longlink"`
	Hits      int64  `json:"hits"`
}

func toLinkResponses(links []entity.Link) []linkResponse {
	resp := make([]linkResponse, 0, len(links))
	for _, l := range links {
		resp = append(resp, linkResponse{
			ShortCode: l.ShortCode,
			LongURL:   l.LongURL,
			Hits:      l.HitCount,
		})
	}

	return resp
}

// validationErr maps the first failed validation tag to the registry error
// the same input would produce.
func validationErr(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return entity.ErrInvalidRequest
	}

	switch errs[0].Tag() {
	case validate.TagLongURL:
		return entity.ErrInvalidURL
	case validate.TagShortCode:
		return entity.ErrShortCodeConflict
	default:
		return entity.ErrInvalidRequest
	}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, entity.ErrInvalidRequest):
		return reasonInvalidRequest
	case errors.Is(err, entity.ErrInvalidURL):
		return reasonInvalidURL
	case errors.Is(err, entity.ErrShortCodeConflict):
		return reasonConflict
	case errors.Is(err, entity.ErrNoChange):
		return reasonNoChange
	case errors.Is(err, entity.ErrLinkNotFound):
		return reasonNotFound
	default:
		return reasonServerError
	}
}
