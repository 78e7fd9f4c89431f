package seed

import (
	"context"
	"errors"
	"testing"

	"blooddonor/internal/utils"
	"blooddonor/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	donors  map[string]types.Donor
	lookErr error
	updated []string
}

func (m *mockStore) Donor(_ context.Context, donorID string) (*types.Donor, error) {
	if m.lookErr != nil {
		return nil, m.lookErr
	}
	d, ok := m.donors[donorID]
	if !ok {
		return nil, types.ErrDonorNotFound
	}
	return &d, nil
}

func (m *mockStore) CreateDonor(_ context.Context, donor *types.Donor) error {
	m.donors[donor.ID] = *donor
	return nil
}

func (m *mockStore) UpdateDonor(_ context.Context, donorID string, changes types.DonorChanges) error {
	m.updated = append(m.updated, donorID)
	m.donors[donorID] = m.donors[donorID].Apply(changes)
	return nil
}

func TestSeedDonors_InsertsThenUpserts(t *testing.T) {
	store := &mockStore{donors: make(map[string]types.Donor)}
	samples := SampleDonors()

	n, err := SeedDonors(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, len(samples), n)
	assert.Len(t, store.donors, len(samples))
	assert.Empty(t, store.updated)

	edited := store.donors[samples[0].ID]
	edited.City = "Elsewhere"
	store.donors[samples[0].ID] = edited

	n, err = SeedDonors(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, len(samples), n)
	assert.Len(t, store.donors, len(samples))
	assert.Len(t, store.updated, len(samples))
	assert.Equal(t, samples[0].City, store.donors[samples[0].ID].City)
}

func TestSeedDonors_LookupFailure(t *testing.T) {
	store := &mockStore{donors: make(map[string]types.Donor), lookErr: errors.New("connection refused")}

	n, err := SeedDonors(context.Background(), store)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.donors)
}

func TestSampleDonors_AreValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range SampleDonors() {
		assert.Len(t, d.ID, utils.NanoidSize)
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		assert.True(t, d.BloodType.Valid(), d.Name)
	}
}
