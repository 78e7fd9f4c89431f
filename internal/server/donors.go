package server

import (
	"errors"
	"net/http"
	"strings"

	"blooddonor/internal/directory"
	"blooddonor/internal/session"
	"blooddonor/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	msgDonorRegistered = "Donor registered successfully!"
	msgNoDonorsFound   = "No donors found for the selected criteria."
	msgDonorsFetched   = "Donors fetched successfully!"
	msgInvalidCriteria = "Select a valid blood group."
)

func (s *Service) handleGetDonorRegister(w http.ResponseWriter, r *http.Request) {
	data := &types.DonorRegisterPageData{
		BasePageData: types.BasePageData{Title: "Become a Donor", Banner: bannerFromQuery(r)},
		BloodTypes:   types.BloodTypes,
	}

	if ident, ok := session.IdentityFromContext(r.Context()); ok {
		data.Form.Name = ident.DisplayName
		data.Form.Email = ident.Email
	}

	s.render(w, r, http.StatusOK, "page.donors.register", data)
}

func (s *Service) handlePostDonorRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := r.ParseForm()
	if err != nil {
		s.logger.WithError(err).Error("failed to parse form")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var input types.DonorInput
	err = decoder.Decode(&input, r.PostForm)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode form onto donor input")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	data := &types.DonorRegisterPageData{
		BasePageData: types.BasePageData{Title: "Become a Donor"},
		Form:         input,
		BloodTypes:   types.BloodTypes,
	}

	donorID, err := s.directory.RegisterDonor(ctx, input)
	if err != nil {
		var ve *directory.ValidationError
		if errors.As(err, &ve) {
			data.FieldErrors = ve.FieldErrors
			data.Banner = types.ErrorBanner(msgFixFields)
			s.render(w, r, http.StatusUnprocessableEntity, "page.donors.register", data)
			return
		}

		s.logger.WithError(err).Error("failed to register donor")
		data.Banner = types.ErrorBanner(directory.Message(err, directory.MsgRegisterFailed))
		s.render(w, r, http.StatusServiceUnavailable, "page.donors.register", data)
		return
	}

	s.logger.WithField("donor_id", donorID).Debug("registration form accepted")

	s.redirectWithBanner(w, r, "/donors/register", types.SuccessBanner(msgDonorRegistered))
}

// handleFindDonors renders the search page. Without any query parameters
// no search has been run yet and no results are shown.
func (s *Service) handleFindDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	data := &types.FindDonorsPageData{
		BasePageData: types.BasePageData{Title: "Find Donors"},
		BloodType:    normalizeBloodTypeParam(q.Get("bloodType")),
		City:         strings.TrimSpace(q.Get("city")),
		BloodTypes:   types.BloodTypes,
		Donors:       []*types.Donor{},
	}

	// the page's async searches share this scope
	scope := s.sessions.EnsureID(w, r)

	if !q.Has("bloodType") && !q.Has("city") {
		s.render(w, r, http.StatusOK, "page.donors", data)
		return
	}

	criteria, err := types.ParseSearchCriteria(data.BloodType, data.City)
	if err != nil {
		data.Banner = types.ErrorBanner(msgInvalidCriteria)
		s.render(w, r, http.StatusBadRequest, "page.donors", data)
		return
	}

	data.Searched = true

	result, err := s.finder.Search(r.Context(), scope, criteria)
	if err != nil {
		s.logger.WithError(err).Error("failed to search donors")
		data.Banner = types.ErrorBanner(directory.Message(err, directory.MsgListFailed))
		s.render(w, r, http.StatusServiceUnavailable, "page.donors", data)
		return
	}

	data.Donors = result.Donors
	data.Banner = searchBanner(result.Donors)

	s.render(w, r, http.StatusOK, "page.donors", data)
}

type donorResult struct {
	Name               string          `json:"name"`
	BloodType          types.BloodType `json:"bloodType"`
	City               string          `json:"city"`
	ContactNumber      string          `json:"contactNumber"`
	HasDonatedRecently string          `json:"hasDonatedRecently"`
}

type searchResponse struct {
	Seq         uint64        `json:"seq"`
	Stale       bool          `json:"stale"`
	Donors      []donorResult `json:"donors"`
	Message     string        `json:"message,omitempty"`
	MessageType string        `json:"messageType,omitempty"`
}

// handleSearchDonors is the asynchronous search used by the find page. Each
// response carries the sequence number it was issued under; a response that
// was overtaken by a newer search in the same session is answered with 409
// and no donors.
func (s *Service) handleSearchDonors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria, err := types.ParseSearchCriteria(normalizeBloodTypeParam(q.Get("bloodType")), q.Get("city"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, searchResponse{
			Donors:      []donorResult{},
			Message:     msgInvalidCriteria,
			MessageType: string(types.BannerError),
		})
		return
	}

	scope := s.sessions.EnsureID(w, r)

	result, err := s.finder.Search(r.Context(), scope, criteria)
	if err != nil {
		s.logger.WithError(err).Error("failed to search donors")
		s.writeJSON(w, http.StatusServiceUnavailable, searchResponse{
			Seq:         result.Seq,
			Donors:      []donorResult{},
			Message:     directory.Message(err, directory.MsgListFailed),
			MessageType: string(types.BannerError),
		})
		return
	}

	if result.Stale {
		s.logger.WithFields(logrus.Fields{
			"scope": scope,
			"seq":   result.Seq,
		}).Debug("discarding stale search")
		s.writeJSON(w, http.StatusConflict, searchResponse{
			Seq:    result.Seq,
			Stale:  true,
			Donors: []donorResult{},
		})
		return
	}

	banner := searchBanner(result.Donors)
	resp := searchResponse{
		Seq:         result.Seq,
		Donors:      make([]donorResult, 0, len(result.Donors)),
		Message:     banner.Text,
		MessageType: string(banner.Type),
	}
	for _, d := range result.Donors {
		resp.Donors = append(resp.Donors, donorResult{
			Name:               d.Name,
			BloodType:          d.BloodType,
			City:               d.City,
			ContactNumber:      d.ContactNumber,
			HasDonatedRecently: types.FormatYesNo(d.HasDonatedRecently),
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func searchBanner(donors []*types.Donor) types.Banner {
	if len(donors) == 0 {
		return types.InfoBanner(msgNoDonorsFound)
	}
	return types.SuccessBanner(msgDonorsFetched)
}

// normalizeBloodTypeParam restores a "+" that arrived unescaped in a query
// string and was decoded as a space ("O " for "O+").
func normalizeBloodTypeParam(v string) string {
	if strings.HasSuffix(v, " ") && strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, " ") + "+"
	}
	return strings.TrimSpace(v)
}
