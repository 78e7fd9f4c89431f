package types

import "time"

type NavbarData struct {
	IsAuthenticated bool
	IsAdmin         bool
	UserEmail       string
	UserName        string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Navbar NavbarData
	Banner Banner
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type HomePageData struct {
	BasePageData
	BloodTypes []BloodType
}

type LoginPageData struct {
	BasePageData
	Email string
}

type RegisterPageData struct {
	BasePageData
	Name        string
	Email       string
	FieldErrors map[string]string
}

type ConfirmRegisterPageData struct {
	BasePageData
	Email string
}

type DonorRegisterPageData struct {
	BasePageData
	Form        DonorInput
	BloodTypes  []BloodType
	FieldErrors map[string]string
}

type FindDonorsPageData struct {
	BasePageData
	BloodType  string
	City       string
	BloodTypes []BloodType
	Donors     []*Donor
	Searched   bool
}

// ProfileForm holds the profile screen's inputs as the user sees them.
type ProfileForm struct {
	Name               string
	Email              string
	BloodType          string
	Address            string
	City               string
	Pincode            string
	ContactNumber      string
	DOB                string
	HasDonatedRecently string
}

func ProfileFormFromDonor(d *Donor) ProfileForm {
	f := ProfileForm{
		Name:               d.Name,
		Email:              d.Email,
		BloodType:          string(d.BloodType),
		Address:            d.Address,
		City:               d.City,
		ContactNumber:      d.ContactNumber,
		HasDonatedRecently: FormatYesNo(d.HasDonatedRecently),
	}
	if d.Pincode != nil {
		f.Pincode = *d.Pincode
	}
	if !d.DOB.IsZero() {
		f.DOB = d.DOB.Format(DateLayout)
	}
	return f
}

// Merge overlays the submitted fields of p onto the form.
func (f *ProfileForm) Merge(p DonorPatch) {
	merge := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	merge(&f.Name, p.Name)
	merge(&f.Email, p.Email)
	merge(&f.BloodType, p.BloodType)
	merge(&f.Address, p.Address)
	merge(&f.City, p.City)
	merge(&f.Pincode, p.Pincode)
	merge(&f.ContactNumber, p.ContactNumber)
	merge(&f.DOB, p.DOB)
	merge(&f.HasDonatedRecently, p.HasDonatedRecently)
}

type ProfilePageData struct {
	BasePageData
	DonorID     string
	HasRecord   bool
	Form        ProfileForm
	BloodTypes  []BloodType
	FieldErrors map[string]string
}

type AdminDonorRow struct {
	ID                 string
	Name               string
	Email              string
	BloodType          BloodType
	City               string
	ContactNumber      string
	HasDonatedRecently string
	RegisteredAt       time.Time
}

type AdminPageData struct {
	BasePageData
	Donors     []AdminDonorRow
	TotalCount int
	ByType     map[BloodType]int
}
