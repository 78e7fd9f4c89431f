package server

import (
	"net/http"

	"blooddonor/internal/directory"
	"blooddonor/pkg/types"
)

func (s *Service) handleAdmin(w http.ResponseWriter, r *http.Request) {
	data := &types.AdminPageData{
		BasePageData: types.BasePageData{Title: "Admin", Banner: bannerFromQuery(r)},
		Donors:       []types.AdminDonorRow{},
		ByType:       map[types.BloodType]int{},
	}

	donors, err := s.directory.ListDonors(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("failed to list donors for admin")
		data.Banner = types.ErrorBanner(directory.Message(err, directory.MsgListFailed))
		s.render(w, r, http.StatusServiceUnavailable, "page.admin", data)
		return
	}

	for _, d := range donors {
		data.Donors = append(data.Donors, types.AdminDonorRow{
			ID:                 d.ID,
			Name:               d.Name,
			Email:              d.Email,
			BloodType:          d.BloodType,
			City:               d.City,
			ContactNumber:      d.ContactNumber,
			HasDonatedRecently: types.FormatYesNo(d.HasDonatedRecently),
			RegisteredAt:       d.CreatedAt,
		})
		data.ByType[d.BloodType]++
	}
	data.TotalCount = len(data.Donors)

	s.render(w, r, http.StatusOK, "page.admin", data)
}
