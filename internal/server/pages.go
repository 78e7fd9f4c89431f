package server

import (
	"net/http"

	"blooddonor/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {
	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "Blood Donor Registry", Banner: bannerFromQuery(r)},
		BloodTypes:   types.BloodTypes,
	}

	s.render(w, r, http.StatusOK, "page.home", data)
}
