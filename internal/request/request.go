// Package request defines the translation request sent to the endpoint and
// the checks it must pass before any network call is made.
package request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/oukeidos/codetr/internal/apperrors"
	"github.com/oukeidos/codetr/internal/models"
)

// Translation is the immutable request payload. The credential travels in the
// body because the endpoint has no other way to learn it.
type Translation struct {
	SourceLanguage string       `json:"sourceLanguage"`
	TargetLanguage string       `json:"targetLanguage"`
	SourceText     string       `json:"sourceText"`
	Model          models.Model `json:"model"`
	Credential     string       `json:"credential"`
}

// String omits the source text and the credential.
func (t Translation) String() string {
	return fmt.Sprintf("%s->%s model=%s chars=%d", t.SourceLanguage, t.TargetLanguage, t.Model, Length(t.SourceText))
}

// Length is the character count limits are measured in.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// MaxLenFor returns the source length ceiling for model.
func MaxLenFor(model models.Model) int {
	info, _ := models.Lookup(model)
	return info.MaxInputChars
}

// Rejection explains why Validate refused a request.
type Rejection struct {
	Reason apperrors.Reason
	// Actual and Limit are only set for ReasonTooLong.
	Actual int
	Limit  int
}

func (r *Rejection) Error() string {
	return r.Message()
}

// Message is the user-visible text for the rejection.
func (r *Rejection) Message() string {
	switch r.Reason {
	case apperrors.ReasonMissingCredential:
		return "Please enter an API key."
	case apperrors.ReasonSameLanguage:
		return "Please select different languages."
	case apperrors.ReasonEmptyInput:
		return "Please enter some code."
	case apperrors.ReasonTooLong:
		return fmt.Sprintf("Please enter code less than %d characters. You are currently at %d characters.", r.Limit, r.Actual)
	default:
		return "Invalid request."
	}
}

// Unwrap exposes the rejection as an app validation error.
func (r *Rejection) Unwrap() error {
	return apperrors.Validation(r.Reason, r.Message())
}

// Validate checks req against maxLen, stopping at the first failed check.
func Validate(req Translation, maxLen int) error {
	if strings.TrimSpace(req.Credential) == "" {
		return &Rejection{Reason: apperrors.ReasonMissingCredential}
	}
	if req.SourceLanguage == req.TargetLanguage {
		return &Rejection{Reason: apperrors.ReasonSameLanguage}
	}
	if req.SourceText == "" {
		return &Rejection{Reason: apperrors.ReasonEmptyInput}
	}
	if n := Length(req.SourceText); n > maxLen {
		return &Rejection{Reason: apperrors.ReasonTooLong, Actual: n, Limit: maxLen}
	}
	return nil
}

// ValidateForModel is Validate with the limit of req.Model.
func ValidateForModel(req Translation) error {
	return Validate(req, MaxLenFor(req.Model))
}
