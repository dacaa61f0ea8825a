package request

import (
	"strings"

	"github.com/frahmantamala/request-management/internal"
)

// CreateRequestDTO is the client payload for filing a request. The
// requestor is never taken from the body; it is stamped from the verified
// token identity.
type CreateRequestDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"type"`
	Urgency     string `json:"urgency"`
	Superior    struct {
		Email string `json:"email"`
	} `json:"superior"`
}

func (dto CreateRequestDTO) Validate() error {
	if strings.TrimSpace(dto.Title) == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if !IsValidCategory(dto.Category) {
		return internal.NewValidationFieldError("type", "type must be one of Leave, Equipment, Overtime", internal.ErrCodeInvalidCategory)
	}
	if strings.TrimSpace(dto.Superior.Email) == "" {
		return internal.NewValidationFieldError("superior.email", "superior email is required", internal.ErrCodeMissingSuperior)
	}
	return nil
}

// DecideRequestDTO carries the superior's verdict.
type DecideRequestDTO struct {
	Status string `json:"status"`
}

func (dto DecideRequestDTO) Validate() error {
	if !IsDecisionStatus(dto.Status) {
		return internal.NewValidationFieldError("status", "status must be either 'approved' or 'rejected'", internal.ErrCodeInvalidStatus)
	}
	return nil
}
