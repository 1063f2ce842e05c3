package handler

import (
	"net/http"

	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/service"
)

type VenueHandler struct {
	venues *service.VenueService
}

func NewVenueHandler(venues *service.VenueService) *VenueHandler {
	return &VenueHandler{venues: venues}
}

type createVenueRequest struct {
	Name         string  `json:"name"`
	State        string  `json:"state"`
	Municipality string  `json:"municipality"`
	Address      *string `json:"address"`
	ContactName  *string `json:"contact_name"`
	ContactPhone *string `json:"contact_phone"`
	ContactEmail *string `json:"contact_email"`
	Capacity     int     `json:"capacity"`
}

type updateVenueRequest struct {
	Name         *string `json:"name"`
	State        *string `json:"state"`
	Municipality *string `json:"municipality"`
	Address      *string `json:"address"`
	ContactName  *string `json:"contact_name"`
	ContactPhone *string `json:"contact_phone"`
	ContactEmail *string `json:"contact_email"`
	Capacity     *int    `json:"capacity"`
	Active       *bool   `json:"active"`
}

func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVenueRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	venue, err := h.venues.Create(r.Context(), service.VenueInput(req))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, venue)
}

func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive, err := queryBool(r, "include_inactive")
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	venues, err := h.venues.List(r.Context(), includeInactive != nil && *includeInactive)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, venues)
}

func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req updateVenueRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	venue, err := h.venues.Update(r.Context(), id, service.VenuePatch(req))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, venue)
}

// Delete deactivates the venue; the row is kept for history.
func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	if err := h.venues.Delete(r.Context(), id); err != nil {
		httputil.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
