package server

import (
	"errors"
	"net/http"
	"strings"

	"blooddonor/internal/directory"
	"blooddonor/internal/matching"
	"blooddonor/internal/session"
	"blooddonor/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	msgProfileLoadFailed = "Failed to load profile."
	msgProfileNoRecord   = "Cannot update profile: Donor ID not found."
	msgProfileUpdated    = "Profile updated successfully!"
)

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ident, _ := session.IdentityFromContext(r.Context())

	data := &types.ProfilePageData{
		BasePageData: types.BasePageData{Title: "Your Profile", Banner: bannerFromQuery(r)},
		BloodTypes:   types.BloodTypes,
	}

	donor, err := s.profileRecord(r, ident)
	if err != nil {
		s.logger.WithError(err).Error("failed to load profile")
		data.Banner = types.ErrorBanner(msgProfileLoadFailed)
		s.render(w, r, http.StatusServiceUnavailable, "page.profile", data)
		return
	}

	if donor == nil {
		data.Form = types.ProfileForm{Name: ident.DisplayName, Email: ident.Email}
		s.render(w, r, http.StatusOK, "page.profile", data)
		return
	}

	data.DonorID = donor.ID
	data.HasRecord = true
	data.Form = types.ProfileFormFromDonor(donor)

	s.render(w, r, http.StatusOK, "page.profile", data)
}

// handlePostProfile re-matches the signed in account to its donor record and
// merges the submitted fields into it.
func (s *Service) handlePostProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, _ := session.IdentityFromContext(ctx)

	err := r.ParseForm()
	if err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var patch types.DonorPatch
	err = decoder.Decode(&patch, r.PostForm)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode form onto donor patch")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	data := &types.ProfilePageData{
		BasePageData: types.BasePageData{Title: "Your Profile"},
		BloodTypes:   types.BloodTypes,
	}

	donor, err := s.profileRecord(r, ident)
	if err != nil {
		s.logger.WithError(err).Error("failed to load profile")
		data.Form.Merge(patch)
		data.Banner = types.ErrorBanner(msgProfileLoadFailed)
		s.render(w, r, http.StatusServiceUnavailable, "page.profile", data)
		return
	}

	if donor == nil {
		data.Form.Merge(patch)
		data.Banner = types.ErrorBanner(msgProfileNoRecord)
		s.render(w, r, http.StatusNotFound, "page.profile", data)
		return
	}

	data.DonorID = donor.ID
	data.HasRecord = true
	data.Form = types.ProfileFormFromDonor(donor)
	data.Form.Merge(patch)

	err = s.directory.UpdateDonor(ctx, donor.ID, patch)
	if err != nil {
		var ve *directory.ValidationError
		switch {
		case errors.As(err, &ve):
			data.FieldErrors = ve.FieldErrors
			data.Banner = types.ErrorBanner(msgFixFields)
			s.render(w, r, http.StatusUnprocessableEntity, "page.profile", data)
		case errors.Is(err, types.ErrDonorNotFound):
			s.logger.WithField("donor_id", donor.ID).Warn("donor vanished before update")
			data.HasRecord = false
			data.Banner = types.ErrorBanner(msgProfileNoRecord)
			s.render(w, r, http.StatusNotFound, "page.profile", data)
		default:
			s.logger.WithError(err).WithField("donor_id", donor.ID).Error("failed to update profile")
			data.Banner = types.ErrorBanner(directory.Message(err, directory.MsgUpdateFailed))
			s.render(w, r, http.StatusServiceUnavailable, "page.profile", data)
		}
		return
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != ident.DisplayName {
		if err := s.sessions.SetDisplayName(w, strings.TrimSpace(*patch.Name)); err != nil {
			s.logger.WithError(err).Warn("failed to refresh display name")
		}
	}

	s.redirectWithBanner(w, r, "/profile", types.SuccessBanner(msgProfileUpdated))
}

// profileRecord finds the donor record of the signed in account. A nil donor
// with a nil error means the account has never registered as a donor.
func (s *Service) profileRecord(r *http.Request, ident *types.AuthenticatedIdentity) (*types.Donor, error) {
	donors, err := s.directory.ListDonors(r.Context())
	if err != nil {
		return nil, err
	}

	donor, ok := matching.MatchDonorByEmail(donors, ident.Email)
	if !ok {
		return nil, nil
	}

	if n := matching.CountByEmail(donors, ident.Email); n > 1 {
		s.logger.WithFields(logrus.Fields{
			"email":    ident.Email,
			"records":  n,
			"donor_id": donor.ID,
		}).Warn("several donor records share this email, using the first")
	}

	return donor, nil
}
