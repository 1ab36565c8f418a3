package dto

import (
	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
)

// Step payloads map 1:1 onto the wizard's models; field-level validation lives in
// the registration service so the rules stay identical for every caller.

type PersonalInfoRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

func (r *PersonalInfoRequest) ToModel() models.PersonalInfo {
	return models.PersonalInfo{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
	}
}

type VehicleInfoRequest struct {
	Type          string `json:"type"`
	Make          string `json:"make"`
	Model         string `json:"model"`
	Year          int    `json:"year"`
	LicenseNumber string `json:"license_number"`
}

func (r *VehicleInfoRequest) ToModel() models.VehicleInfo {
	return models.VehicleInfo{
		Type:          types.VehicleType(r.Type),
		Make:          r.Make,
		Model:         r.Model,
		Year:          r.Year,
		LicenseNumber: r.LicenseNumber,
	}
}

type StateSelectionRequest struct {
	Primary    string   `json:"primary"`
	Additional []string `json:"additional,omitempty"`
}

func (r *StateSelectionRequest) ToModel() models.StateSelection {
	return models.StateSelection{
		Primary:    r.Primary,
		Additional: r.Additional,
	}
}

type DocumentsRequest struct {
	IDCardURL  string `json:"id_card_url"`
	LicenseURL string `json:"license_url,omitempty"`
	PhotoURL   string `json:"photo_url"`
}

func (r *DocumentsRequest) ToModel() models.Documents {
	return models.Documents{
		IDCardURL:  r.IDCardURL,
		LicenseURL: r.LicenseURL,
		PhotoURL:   r.PhotoURL,
	}
}
