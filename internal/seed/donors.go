package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blooddonor/internal/utils"
	"blooddonor/pkg/types"
)

// Store is the slice of the donor repository seeding needs.
type Store interface {
	Donor(ctx context.Context, donorID string) (*types.Donor, error)
	CreateDonor(ctx context.Context, donor *types.Donor) error
	UpdateDonor(ctx context.Context, donorID string, changes types.DonorChanges) error
}

// SampleDonors is the source of truth for local sample data. IDs are fixed so
// running the seed twice upserts instead of appending.
//
// To generate new IDs: `go run ./cmd/blooddonor nanoid`
func SampleDonors() []types.Donor {
	return []types.Donor{
		{
			ID:            "Xq3vK9pLmT2rWc8nHy5b",
			Name:          "Asha Verma",
			Email:         "asha.verma@example.com",
			BloodType:     types.BloodTypeBPositive,
			Address:       "12 MG Road",
			City:          "Delhi",
			Pincode:       utils.StringPtr("110001"),
			ContactNumber: "9810000001",
			DOB:           time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:                 "Lm8tQw2eRy6uIo0pAs4d",
			Name:               "Ravi Kulkarni",
			Email:              "ravi.kulkarni@example.com",
			BloodType:          types.BloodTypeOPositive,
			Address:            "44 FC Road",
			City:               "Pune",
			Pincode:            utils.StringPtr("411004"),
			ContactNumber:      "9822000002",
			DOB:                time.Date(1985, time.July, 2, 0, 0, 0, 0, time.UTC),
			HasDonatedRecently: true,
		},
		{
			ID:            "Bn5mVc1xZa9sDf3gHj7k",
			Name:          "Meera Iyer",
			Email:         "meera.iyer@example.com",
			BloodType:     types.BloodTypeONegative,
			Address:       "7 Besant Nagar",
			City:          "Chennai",
			ContactNumber: "9840000003",
			DOB:           time.Date(1994, time.November, 21, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "Pk4jHg8fDs2aQw6eRt0y",
			Name:          "Imran Shaikh",
			Email:         "imran.shaikh@example.com",
			BloodType:     types.BloodTypeABPositive,
			Address:       "3 Linking Road",
			City:          "Mumbai",
			Pincode:       utils.StringPtr("400050"),
			ContactNumber: "9820000004",
			DOB:           time.Date(1988, time.January, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:            "Wz6xCv0bNm4qAs8dFg2h",
			Name:          "Priya Nair",
			Email:         "priya.nair@example.com",
			BloodType:     types.BloodTypeAPositive,
			Address:       "21 Indiranagar",
			City:          "Bengaluru",
			ContactNumber: "9880000005",
			DOB:           time.Date(1996, time.May, 9, 0, 0, 0, 0, time.UTC),
		},
	}
}

// SeedDonors inserts each sample donor that is missing and rewrites the ones
// already present.
func SeedDonors(ctx context.Context, repo Store) (int, error) {
	seeded := 0
	for _, sample := range SampleDonors() {
		_, err := repo.Donor(ctx, sample.ID)
		if err != nil {
			if !errors.Is(err, types.ErrDonorNotFound) {
				return seeded, fmt.Errorf("failed to check sample donor %s: %w", sample.ID, err)
			}

			donor := sample
			if err := repo.CreateDonor(ctx, &donor); err != nil {
				return seeded, fmt.Errorf("failed to create sample donor %s: %w", sample.ID, err)
			}
			seeded++
			continue
		}

		if err := repo.UpdateDonor(ctx, sample.ID, changesFrom(sample)); err != nil {
			return seeded, fmt.Errorf("failed to update sample donor %s: %w", sample.ID, err)
		}
		seeded++
	}

	return seeded, nil
}

func changesFrom(d types.Donor) types.DonorChanges {
	bloodType := d.BloodType
	dob := d.DOB
	return types.DonorChanges{
		Name:               utils.StringPtr(d.Name),
		Email:              utils.StringPtr(d.Email),
		BloodType:          &bloodType,
		Address:            utils.StringPtr(d.Address),
		City:               utils.StringPtr(d.City),
		Pincode:            utils.StringPtr(utils.PtrString(d.Pincode)),
		ContactNumber:      utils.StringPtr(d.ContactNumber),
		DOB:                &dob,
		HasDonatedRecently: utils.BoolPtr(d.HasDonatedRecently),
	}
}
