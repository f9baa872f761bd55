package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

// QuestionParams is the body of a question request. DocumentID scopes
// retrieval to a single uploaded document.
type QuestionParams struct {
	Question   string `json:"question" validate:"required"`
	DocumentID string `json:"documentId" validate:"required"`
}

// TurnParams is the body of a transcript append request.
type TurnParams struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *QuestionParams) Validate() map[string]string {
	errors := validateStruct(params)
	// "required" accepts blank-padded strings, so trim explicitly.
	if strings.TrimSpace(params.Question) == "" {
		if errors == nil {
			errors = make(map[string]string)
		}
		errors["Question"] = "must not be empty or whitespace"
	}
	return errors
}

func (params *TurnParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

// UploadResponse is returned after a successful ingestion.
type UploadResponse struct {
	Summary    string `json:"summary"`
	DocumentID string `json:"documentId"`
	PageCount  int    `json:"pageCount"`
}

// AnswerResponse is returned for every question request, including ones
// that failed internally.
type AnswerResponse struct {
	Answer string `json:"answer"`
}
