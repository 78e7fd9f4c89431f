package types

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBloodType(t *testing.T) {
	for _, b := range BloodTypes {
		got, err := ParseBloodType(string(b))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}

	for _, raw := range []string{"", "o+", "A", "AB", "Z+"} {
		_, err := ParseBloodType(raw)
		assert.True(t, errors.Is(err, ErrInvalidBloodType), raw)
	}
}

func TestParseSearchCriteria(t *testing.T) {
	c, err := ParseSearchCriteria("any", "Pune")
	require.NoError(t, err)
	assert.Empty(t, c.BloodType)
	assert.False(t, c.IsEmpty())

	c, err = ParseSearchCriteria("", "  ")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	c, err = ParseSearchCriteria("AB-", "")
	require.NoError(t, err)
	assert.Equal(t, BloodTypeABNegative, c.BloodType)

	_, err = ParseSearchCriteria("XY", "")
	assert.Error(t, err)
}

func TestParseYesNo(t *testing.T) {
	yes, err := ParseYesNo(" Yes ")
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := ParseYesNo("no")
	require.NoError(t, err)
	assert.False(t, no)

	_, err = ParseYesNo("maybe")
	assert.Error(t, err)

	assert.Equal(t, "Yes", FormatYesNo(true))
	assert.Equal(t, "No", FormatYesNo(false))
}

func TestDonorApply_OnlySetFields(t *testing.T) {
	pincode := "110001"
	d := Donor{ID: "d1", Name: "Asha", City: "Delhi", Pincode: &pincode, BloodType: BloodTypeBPositive}

	city := "Pune"
	donated := true
	got := d.Apply(DonorChanges{City: &city, HasDonatedRecently: &donated})

	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, "Pune", got.City)
	assert.Equal(t, BloodTypeBPositive, got.BloodType)
	assert.True(t, got.HasDonatedRecently)
	assert.Equal(t, "Delhi", d.City)
}

func TestDonorChangesColumns(t *testing.T) {
	assert.True(t, DonorChanges{}.IsEmpty())

	empty := ""
	bloodType := BloodTypeOPositive
	cols := DonorChanges{Pincode: &empty, BloodType: &bloodType}.Columns()

	assert.Equal(t, map[string]any{"pincode": nil, "blood_type": "O+"}, cols)
}

func TestProfileForm(t *testing.T) {
	d := &Donor{
		Name:               "Ravi",
		BloodType:          BloodTypeOPositive,
		DOB:                time.Date(1985, time.July, 2, 0, 0, 0, 0, time.UTC),
		HasDonatedRecently: true,
	}

	f := ProfileFormFromDonor(d)
	assert.Equal(t, "1985-07-02", f.DOB)
	assert.Equal(t, "Yes", f.HasDonatedRecently)
	assert.Empty(t, f.Pincode)

	name := "Ravi K"
	f.Merge(DonorPatch{Name: &name})
	assert.Equal(t, "Ravi K", f.Name)
	assert.Equal(t, "O+", f.BloodType)
}

func TestBanner(t *testing.T) {
	assert.False(t, Banner{}.Visible())
	assert.True(t, SuccessBanner("ok").Visible())
	assert.Equal(t, BannerInfo, ParseBannerType("bogus"))
	assert.Equal(t, BannerError, ParseBannerType("error"))
	assert.Equal(t, int64(5000), InfoBanner("x").DismissAfterMS())
}
