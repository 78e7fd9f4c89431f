package store

import (
	"context"
	"testing"
	"time"

	"blooddonor/internal/utils"
	"blooddonor/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDonorQuery(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	donor := &types.Donor{
		ID:            "donor-1",
		Name:          "Asha",
		Email:         "asha@example.com",
		BloodType:     types.BloodTypeBPositive,
		Address:       "12 MG Road",
		City:          "Delhi",
		ContactNumber: "999",
		DOB:           time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	query, args, err := createDonorQuery(donor, now)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO blooddonor.donors")
	assert.Len(t, args, len(donorColumns))
	assert.Equal(t, now, donor.CreatedAt)
	assert.Equal(t, now, donor.UpdatedAt)
	assert.Contains(t, args, "donor-1")
	assert.Contains(t, args, types.BloodTypeBPositive)
}

func TestUpdateDonorQuery_OnlySetColumns(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	query, args, err := updateDonorQuery("donor-1", types.DonorChanges{
		City: utils.StringPtr("Pune"),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE blooddonor.donors SET city = $1, updated_at = $2 WHERE id = $3", query)
	assert.Equal(t, []any{"Pune", now, "donor-1"}, args)
}

func TestUpdateDonorQuery_ClearsPincode(t *testing.T) {
	now := time.Now()

	query, args, err := updateDonorQuery("donor-1", types.DonorChanges{
		Pincode:            utils.StringPtr(""),
		HasDonatedRecently: utils.BoolPtr(true),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE blooddonor.donors SET has_donated_recently = $1, pincode = $2, updated_at = $3 WHERE id = $4", query)
	require.Len(t, args, 4)
	assert.Equal(t, true, args[0])
	assert.Nil(t, args[1])
}

func TestDonorColumns(t *testing.T) {
	assert.Equal(t, []string{
		"id", "name", "email", "blood_type", "address", "city", "pincode",
		"contact_number", "dob", "has_donated_recently", "created_at", "updated_at",
	}, donorColumns)
}

func TestDonor_MalformedIDSkipsQuery(t *testing.T) {
	// a nil pool would panic if the query ran
	repo := NewDonorRepository(nil)

	for _, id := range []string{"", "missing", "Xq3vK9pLmT2rWc8nHy5-", "' OR 1=1 --"} {
		_, err := repo.Donor(context.Background(), id)
		assert.ErrorIs(t, err, types.ErrDonorNotFound, id)
	}
}
