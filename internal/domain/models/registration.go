package models

import (
	"time"

	"github.com/ridermi/rider-agent/internal/domain/types"
)

// RegistrationDraft is the in-progress rider registration wizard state, persisted
// locally per step so a restart resumes where the rider left off.
type RegistrationDraft struct {
	CurrentStep types.RegistrationStep `json:"current_step"`

	Personal  PersonalInfo   `json:"personal"`
	Vehicle   VehicleInfo    `json:"vehicle"`
	States    StateSelection `json:"states"`
	Documents Documents      `json:"documents"`

	UpdatedAt time.Time `json:"updated_at"`
}

type PersonalInfo struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

type VehicleInfo struct {
	Type          types.VehicleType `json:"type"`
	Make          string            `json:"make"`
	Model         string            `json:"model"`
	Year          int               `json:"year"`
	LicenseNumber string            `json:"license_number"`
}

// StateSelection lists the states/regions the rider wants to operate in.
type StateSelection struct {
	Primary    string   `json:"primary"`
	Additional []string `json:"additional,omitempty"`
}

// Documents holds references to uploaded verification documents.
type Documents struct {
	IDCardURL  string `json:"id_card_url"`
	LicenseURL string `json:"license_url"`
	PhotoURL   string `json:"photo_url"`
}

// ProfileUpdate is the updateRiderProfile mutation input built from a completed draft.
type ProfileUpdate struct {
	DisplayName   string   `json:"displayName"`
	PhoneNumber   string   `json:"phoneNumber"`
	VehicleType   string   `json:"vehicleType"`
	VehicleMake   string   `json:"vehicleMake"`
	VehicleModel  string   `json:"vehicleModel"`
	VehicleYear   int      `json:"vehicleYear"`
	LicenseNumber string   `json:"licenseNumber"`
	States        []string `json:"states"`
	DocumentURLs  []string `json:"documentUrls"`
}
