package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a donor's date of birth in forms and JSON.
const DateLayout = "2006-01-02"

type BloodType string

const (
	BloodTypeAPositive  BloodType = "A+"
	BloodTypeANegative  BloodType = "A-"
	BloodTypeBPositive  BloodType = "B+"
	BloodTypeBNegative  BloodType = "B-"
	BloodTypeABPositive BloodType = "AB+"
	BloodTypeABNegative BloodType = "AB-"
	BloodTypeOPositive  BloodType = "O+"
	BloodTypeONegative  BloodType = "O-"
)

// BloodTypes lists every accepted value in select-box order.
var BloodTypes = []BloodType{
	BloodTypeAPositive,
	BloodTypeANegative,
	BloodTypeBPositive,
	BloodTypeBNegative,
	BloodTypeABPositive,
	BloodTypeABNegative,
	BloodTypeOPositive,
	BloodTypeONegative,
}

func (b BloodType) Valid() bool {
	for _, v := range BloodTypes {
		if b == v {
			return true
		}
	}
	return false
}

func (b BloodType) String() string {
	return string(b)
}

func ParseBloodType(s string) (BloodType, error) {
	b := BloodType(strings.TrimSpace(s))
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBloodType, s)
	}
	return b, nil
}

type Donor struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	BloodType          BloodType `db:"blood_type" json:"bloodType"`
	Address            string    `db:"address" json:"address"`
	City               string    `db:"city" json:"city"`
	Pincode            *string   `db:"pincode" json:"pincode,omitempty"`
	ContactNumber      string    `db:"contact_number" json:"contactNumber"`
	DOB                time.Time `db:"dob" json:"-"`
	HasDonatedRecently bool      `db:"has_donated_recently" json:"hasDonatedRecently"`
	CreatedAt          time.Time `db:"created_at" json:"-"`
	UpdatedAt          time.Time `db:"updated_at" json:"-"`
}

// Apply merges every field set on c into a copy of d.
func (d Donor) Apply(c DonorChanges) Donor {
	if c.Name != nil {
		d.Name = *c.Name
	}
	if c.Email != nil {
		d.Email = *c.Email
	}
	if c.BloodType != nil {
		d.BloodType = *c.BloodType
	}
	if c.Address != nil {
		d.Address = *c.Address
	}
	if c.City != nil {
		d.City = *c.City
	}
	if c.Pincode != nil {
		pincode := *c.Pincode
		d.Pincode = &pincode
	}
	if c.ContactNumber != nil {
		d.ContactNumber = *c.ContactNumber
	}
	if c.DOB != nil {
		d.DOB = *c.DOB
	}
	if c.HasDonatedRecently != nil {
		d.HasDonatedRecently = *c.HasDonatedRecently
	}
	return d
}

// DonorInput is the self-registration form.
type DonorInput struct {
	Name          string `form:"name"`
	Email         string `form:"email"`
	BloodType     string `form:"bloodType"`
	Address       string `form:"address"`
	City          string `form:"city"`
	Pincode       string `form:"pincode"`
	ContactNumber string `form:"contactNumber"`
	DOB           string `form:"dob"`
}

// DonorPatch is the profile-edit form. A nil field was not submitted.
type DonorPatch struct {
	Name               *string `form:"name"`
	Email              *string `form:"email"`
	BloodType          *string `form:"bloodType"`
	Address            *string `form:"address"`
	City               *string `form:"city"`
	Pincode            *string `form:"pincode"`
	ContactNumber      *string `form:"contactNumber"`
	DOB                *string `form:"dob"`
	HasDonatedRecently *string `form:"hasDonatedRecently"`
}

// DonorChanges is a validated DonorPatch.
type DonorChanges struct {
	Name               *string
	Email              *string
	BloodType          *BloodType
	Address            *string
	City               *string
	Pincode            *string
	ContactNumber      *string
	DOB                *time.Time
	HasDonatedRecently *bool
}

func (c DonorChanges) IsEmpty() bool {
	return len(c.Columns()) == 0
}

// Columns maps the set fields onto their donors table columns.
func (c DonorChanges) Columns() map[string]any {
	out := make(map[string]any)
	if c.Name != nil {
		out["name"] = *c.Name
	}
	if c.Email != nil {
		out["email"] = *c.Email
	}
	if c.BloodType != nil {
		out["blood_type"] = string(*c.BloodType)
	}
	if c.Address != nil {
		out["address"] = *c.Address
	}
	if c.City != nil {
		out["city"] = *c.City
	}
	if c.Pincode != nil {
		if *c.Pincode == "" {
			out["pincode"] = nil
		} else {
			out["pincode"] = *c.Pincode
		}
	}
	if c.ContactNumber != nil {
		out["contact_number"] = *c.ContactNumber
	}
	if c.DOB != nil {
		out["dob"] = *c.DOB
	}
	if c.HasDonatedRecently != nil {
		out["has_donated_recently"] = *c.HasDonatedRecently
	}
	return out
}

// ParseYesNo reads the profile form's "Yes"/"No" select.
func ParseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("expected Yes or No, got %q", s)
}

func FormatYesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// SearchCriteria narrows a donor listing. Zero values impose no constraint.
type SearchCriteria struct {
	BloodType BloodType
	City      string
}

func (c SearchCriteria) IsEmpty() bool {
	return c.BloodType == "" && strings.TrimSpace(c.City) == ""
}

// ParseSearchCriteria accepts "" and "any" as an unset blood type.
func ParseSearchCriteria(bloodType, city string) (SearchCriteria, error) {
	c := SearchCriteria{City: strings.TrimSpace(city)}

	bloodType = strings.TrimSpace(bloodType)
	if bloodType == "" || strings.EqualFold(bloodType, "any") {
		return c, nil
	}

	b, err := ParseBloodType(bloodType)
	if err != nil {
		return SearchCriteria{}, err
	}
	c.BloodType = b

	return c, nil
}
