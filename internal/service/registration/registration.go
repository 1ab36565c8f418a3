// Package registration drives the four-step rider onboarding wizard. Each step is
// validated and persisted locally as a draft so a restart resumes on the step the
// rider left; the final submit pushes the assembled profile to the server and
// drops the draft.
package registration

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/validator"
)

var (
	phoneRX   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	licenseRX = regexp.MustCompile(`^[A-Z0-9-]{4,20}$`)
)

// ErrValidation wraps per-field validation messages for one wizard step.
type ErrValidation struct {
	Fields map[string]string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("registration step validation failed: %d field(s)", len(e.Fields))
}

type ProfileGateway interface {
	UpdateRiderProfile(ctx context.Context, input models.ProfileUpdate) error
}

type DraftStore interface {
	Draft(riderUID string) (models.RegistrationDraft, error)
	SaveDraft(riderUID string, d models.RegistrationDraft) error
	ClearDraft(riderUID string) error
}

type Service struct {
	gateway ProfileGateway
	store   DraftStore
	l       logger.Logger
	now     func() time.Time
}

func New(gateway ProfileGateway, store DraftStore, l logger.Logger) *Service {
	return &Service{gateway: gateway, store: store, l: l, now: time.Now}
}

// Draft returns the persisted wizard state, or a fresh draft positioned on step 1.
func (s *Service) Draft(ctx context.Context, riderUID string) models.RegistrationDraft {
	d, err := s.store.Draft(riderUID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			s.l.Warn(ctx, "failed to load registration draft, starting fresh", "err", err.Error())
		}
		return models.RegistrationDraft{CurrentStep: types.StepPersonalInfo}
	}
	// One past the last step is the parked position of a completed wizard.
	if d.CurrentStep < types.StepPersonalInfo || int(d.CurrentStep) > types.RegistrationStepCount+1 {
		d.CurrentStep = types.StepPersonalInfo
	}
	return d
}

// SavePersonal validates and stores step 1, advancing the draft to step 2.
func (s *Service) SavePersonal(ctx context.Context, riderUID string, in models.PersonalInfo) (models.RegistrationDraft, error) {
	v := validator.New()
	v.Check(in.FirstName != "", "first_name", "must be provided")
	v.Check(in.LastName != "", "last_name", "must be provided")
	v.Check(validator.Matches(in.PhoneNumber, phoneRX), "phone_number", "must be a valid phone number")
	if !v.Valid() {
		return models.RegistrationDraft{}, &ErrValidation{Fields: v.Errors}
	}

	d := s.Draft(ctx, riderUID)
	d.Personal = in
	return s.advance(ctx, riderUID, d, types.StepPersonalInfo)
}

// SaveVehicle validates and stores step 2. Bicycle riders have no license to give,
// so the license number is required for motorized vehicles only.
func (s *Service) SaveVehicle(ctx context.Context, riderUID string, in models.VehicleInfo) (models.RegistrationDraft, error) {
	v := validator.New()
	v.Check(validator.PermittedValue(in.Type, types.VehicleBicycle, types.VehicleMotorcycle, types.VehicleCar),
		"type", "must be one of BICYCLE, MOTORCYCLE, CAR")

	if in.Type != types.VehicleBicycle {
		v.Check(in.Make != "", "make", "must be provided")
		v.Check(in.Model != "", "model", "must be provided")
		v.Check(in.Year >= 1980 && in.Year <= s.now().Year()+1, "year", "must be a plausible model year")
		v.Check(validator.Matches(in.LicenseNumber, licenseRX), "license_number", "must be 4-20 uppercase letters, digits or dashes")
	}
	if !v.Valid() {
		return models.RegistrationDraft{}, &ErrValidation{Fields: v.Errors}
	}

	d := s.Draft(ctx, riderUID)
	d.Vehicle = in
	return s.advance(ctx, riderUID, d, types.StepVehicleInfo)
}

// SaveStates validates and stores step 3.
func (s *Service) SaveStates(ctx context.Context, riderUID string, in models.StateSelection) (models.RegistrationDraft, error) {
	v := validator.New()
	v.Check(in.Primary != "", "primary", "must be provided")
	for _, st := range in.Additional {
		v.Check(st != in.Primary, "additional", "must not repeat the primary state")
	}
	if !v.Valid() {
		return models.RegistrationDraft{}, &ErrValidation{Fields: v.Errors}
	}

	d := s.Draft(ctx, riderUID)
	d.States = in
	return s.advance(ctx, riderUID, d, types.StepStateSelection)
}

// SaveDocuments validates and stores step 4, the last one before submit.
func (s *Service) SaveDocuments(ctx context.Context, riderUID string, in models.Documents) (models.RegistrationDraft, error) {
	v := validator.New()
	v.Check(in.IDCardURL != "", "id_card_url", "must be provided")
	v.Check(in.PhotoURL != "", "photo_url", "must be provided")
	if !v.Valid() {
		return models.RegistrationDraft{}, &ErrValidation{Fields: v.Errors}
	}

	d := s.Draft(ctx, riderUID)
	d.Documents = in
	return s.advance(ctx, riderUID, d, types.StepDocuments)
}

// Submit pushes the completed draft to the server and clears it. All four steps
// must have been saved; the draft survives a failed submit for retry.
func (s *Service) Submit(ctx context.Context, riderUID string) error {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: "submit_registration", RiderID: riderUID})

	d := s.Draft(ctx, riderUID)
	if int(d.CurrentStep) <= types.RegistrationStepCount {
		return fmt.Errorf("registration incomplete: on step %d of %d", d.CurrentStep, types.RegistrationStepCount)
	}

	input := models.ProfileUpdate{
		DisplayName:   d.Personal.FirstName + " " + d.Personal.LastName,
		PhoneNumber:   d.Personal.PhoneNumber,
		VehicleType:   string(d.Vehicle.Type),
		VehicleMake:   d.Vehicle.Make,
		VehicleModel:  d.Vehicle.Model,
		VehicleYear:   d.Vehicle.Year,
		LicenseNumber: d.Vehicle.LicenseNumber,
		States:        append([]string{d.States.Primary}, d.States.Additional...),
		DocumentURLs:  documentURLs(d.Documents),
	}

	if err := s.gateway.UpdateRiderProfile(ctx, input); err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to submit registration", err)
		return err
	}

	if err := s.store.ClearDraft(riderUID); err != nil {
		s.l.Warn(ctx, "failed to clear submitted draft", "err", err.Error())
	}
	s.l.Info(ctx, "registration submitted")
	return nil
}

// advance persists the draft with the wizard positioned on the step after the one
// just completed. Completing the last step parks CurrentStep one past the end,
// which is what Submit checks for.
func (s *Service) advance(ctx context.Context, riderUID string, d models.RegistrationDraft, done types.RegistrationStep) (models.RegistrationDraft, error) {
	if next := done + 1; next > d.CurrentStep {
		d.CurrentStep = next
	}
	d.UpdatedAt = s.now()

	if err := s.store.SaveDraft(riderUID, d); err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to persist registration draft", err)
		return models.RegistrationDraft{}, err
	}
	return d, nil
}

func documentURLs(d models.Documents) []string {
	urls := []string{d.IDCardURL, d.PhotoURL}
	if d.LicenseURL != "" {
		urls = append(urls, d.LicenseURL)
	}
	return urls
}
