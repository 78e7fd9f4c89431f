// Package directory is the contract the application uses to reach the donor
// collection: append a donor, read them all, and merge a partial update.
package directory

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"blooddonor/internal/metrics"
	"blooddonor/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	MsgRegisterFailed = "Error registering donor."
	MsgListFailed     = "Failed to fetch donors. Please try again."
	MsgUpdateFailed   = "Error updating profile."
)

type Store interface {
	CreateDonor(ctx context.Context, donor *types.Donor) error
	Donors(ctx context.Context) ([]*types.Donor, error)
	UpdateDonor(ctx context.Context, donorID string, changes types.DonorChanges) error
}

type Service struct {
	store   Store
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

func New(store Store, logger *logrus.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// RegisterDonor validates the form and appends a new donor. Duplicate emails
// are accepted.
func (s *Service) RegisterDonor(ctx context.Context, input types.DonorInput) (string, error) {
	donor, fieldErrs := ValidateInput(input)
	if len(fieldErrs) > 0 {
		return "", &ValidationError{FieldErrors: fieldErrs}
	}

	err := s.store.CreateDonor(ctx, donor)
	if err != nil {
		s.metrics.DirectoryFailure("register")
		return "", unavailable("register donor", err, MsgRegisterFailed)
	}

	s.metrics.DonorRegistered(donor.BloodType)
	s.logger.WithFields(logrus.Fields{
		"donor_id":   donor.ID,
		"blood_type": donor.BloodType,
	}).Info("donor registered")

	return donor.ID, nil
}

// ListDonors reads the whole collection. An empty collection is an empty,
// non-nil slice.
func (s *Service) ListDonors(ctx context.Context) ([]*types.Donor, error) {
	donors, err := s.store.Donors(ctx)
	if err != nil {
		s.metrics.DirectoryFailure("list")
		return nil, unavailable("list donors", err, MsgListFailed)
	}

	if donors == nil {
		donors = make([]*types.Donor, 0)
	}

	return donors, nil
}

// UpdateDonor merges the submitted fields into the donor at donorID.
// An unknown donorID yields types.ErrDonorNotFound.
func (s *Service) UpdateDonor(ctx context.Context, donorID string, patch types.DonorPatch) error {
	if strings.TrimSpace(donorID) == "" {
		return types.ErrDonorNotFound
	}

	changes, fieldErrs := ParsePatch(patch)
	if len(fieldErrs) > 0 {
		return &ValidationError{FieldErrors: fieldErrs}
	}

	err := s.store.UpdateDonor(ctx, donorID, changes)
	if err != nil {
		if errors.Is(err, types.ErrDonorNotFound) {
			return err
		}
		s.metrics.DirectoryFailure("update")
		return unavailable("update donor", err, MsgUpdateFailed)
	}

	s.logger.WithField("donor_id", donorID).Info("donor updated")

	return nil
}

// ValidateInput checks a registration form and converts it to a donor.
func ValidateInput(input types.DonorInput) (*types.Donor, map[string]string) {
	errs := map[string]string{}

	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	address := strings.TrimSpace(input.Address)
	city := strings.TrimSpace(input.City)
	contactNumber := strings.TrimSpace(input.ContactNumber)

	if name == "" {
		errs["name"] = "Full name is required."
	}

	if msg := checkEmail(email); msg != "" {
		errs["email"] = msg
	}

	bloodType, err := types.ParseBloodType(input.BloodType)
	if err != nil {
		errs["bloodType"] = "Select a blood group."
	}

	if address == "" {
		errs["address"] = "Address is required."
	}

	if city == "" {
		errs["city"] = "City is required."
	}

	if contactNumber == "" {
		errs["contactNumber"] = "Contact number is required."
	}

	dob, msg := parseDOB(input.DOB)
	if msg != "" {
		errs["dob"] = msg
	}

	if len(errs) > 0 {
		return nil, errs
	}

	var pincode *string
	if p := strings.TrimSpace(input.Pincode); p != "" {
		pincode = &p
	}

	return &types.Donor{
		Name:          name,
		Email:         email,
		BloodType:     bloodType,
		Address:       address,
		City:          city,
		Pincode:       pincode,
		ContactNumber: contactNumber,
		DOB:           dob,
	}, nil
}

// ParsePatch validates the submitted profile fields. Absent fields stay absent.
func ParsePatch(patch types.DonorPatch) (types.DonorChanges, map[string]string) {
	errs := map[string]string{}
	var changes types.DonorChanges

	required := func(field string, v *string, msg string) *string {
		if v == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			errs[field] = msg
			return nil
		}
		return &trimmed
	}

	changes.Name = required("name", patch.Name, "Full name is required.")
	changes.Address = required("address", patch.Address, "Address is required.")
	changes.City = required("city", patch.City, "City is required.")
	changes.ContactNumber = required("contactNumber", patch.ContactNumber, "Contact number is required.")

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if msg := checkEmail(email); msg != "" {
			errs["email"] = msg
		} else {
			changes.Email = &email
		}
	}

	if patch.BloodType != nil {
		bloodType, err := types.ParseBloodType(*patch.BloodType)
		if err != nil {
			errs["bloodType"] = "Select a blood group."
		} else {
			changes.BloodType = &bloodType
		}
	}

	if patch.Pincode != nil {
		pincode := strings.TrimSpace(*patch.Pincode)
		changes.Pincode = &pincode
	}

	if patch.DOB != nil {
		dob, msg := parseDOB(*patch.DOB)
		if msg != "" {
			errs["dob"] = msg
		} else {
			changes.DOB = &dob
		}
	}

	if patch.HasDonatedRecently != nil {
		donated, err := types.ParseYesNo(*patch.HasDonatedRecently)
		if err != nil {
			errs["hasDonatedRecently"] = "Choose Yes or No."
		} else {
			changes.HasDonatedRecently = &donated
		}
	}

	return changes, errs
}

func checkEmail(email string) string {
	if email == "" {
		return "Email is required."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Enter a valid email address."
	}
	return ""
}

func parseDOB(v string) (time.Time, string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, "Date of birth is required."
	}
	dob, err := time.Parse(types.DateLayout, v)
	if err != nil {
		return time.Time{}, "Enter the date of birth as YYYY-MM-DD."
	}
	return dob, ""
}
