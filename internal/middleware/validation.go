package middleware

import (
	"net/mail"
	"unicode/utf8"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
	"github.com/dkl-health/chatbot-backend/internal/model"
)

// ValidateRegistration validates a registration request.
func ValidateRegistration(req *model.RegisterRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperr.Validation("username, email and password are required")
	}
	if len(req.Username) > 64 {
		return apperr.Validation("username exceeds maximum length")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperr.Validation("invalid email address")
	}
	if len(req.Password) < 6 {
		return apperr.Validation("password must be at least 6 characters")
	}
	return nil
}

// ValidateFAQ validates an FAQ create request.
func ValidateFAQ(req *model.CreateFAQRequest) error {
	if req.Question == "" || req.Answer == "" {
		return apperr.Validation("question and answer are required")
	}
	if !utf8.ValidString(req.Question) || !utf8.ValidString(req.Answer) {
		return apperr.Validation("question and answer must be valid UTF-8")
	}
	if req.Language != "" && len(req.Language) != 2 {
		return apperr.Validation("language must be a two-letter code")
	}
	return nil
}

// ValidateService validates a service create request.
func ValidateService(req *model.CreateServiceRequest) error {
	if req.Name == "" {
		return apperr.Validation("name is required")
	}
	if req.Price < 0 {
		return apperr.Validation("price cannot be negative")
	}
	return nil
}
