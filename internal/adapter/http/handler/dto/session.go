package dto

import (
	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/pkg/validator"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *SignInRequest) Validate(v *validator.Validator) {
	v.Check(r.Email != "", "email", "must be provided")
	v.Check(r.Password != "", "password", "must be provided")
}

type RiderResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

func RiderToResponse(r models.Rider) RiderResponse {
	return RiderResponse{
		UID:         r.UID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
	}
}
