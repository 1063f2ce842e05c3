package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/service"
)

type RegistrationHandler struct {
	registrations *service.RegistrationService
}

func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

type createRegistrationRequest struct {
	FullName     string     `json:"full_name"`
	StageName    string     `json:"stage_name"`
	Phone        string     `json:"phone"`
	Email        *string    `json:"email"`
	Category     string     `json:"category"`
	Municipality string     `json:"municipality"`
	VenueID      *uuid.UUID `json:"venue_id"`
	Observations *string    `json:"observations"`
}

type updateRegistrationRequest struct {
	FullName     *string    `json:"full_name"`
	StageName    *string    `json:"stage_name"`
	Phone        *string    `json:"phone"`
	Email        *string    `json:"email"`
	Category     *string    `json:"category"`
	Municipality *string    `json:"municipality"`
	VenueID      *uuid.UUID `json:"venue_id"`
	Observations *string    `json:"observations"`
}

type setStatusRequest struct {
	Status       contest.RegistrationStatus `json:"status"`
	Observations *string                    `json:"observations"`
}

// Create serves both the public form and the admin panel. The audit actor comes from the request context.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRegistrationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	registration, err := h.registrations.Create(r.Context(), service.CreateRegistrationInput{
		FullName:     req.FullName,
		StageName:    req.StageName,
		Phone:        req.Phone,
		Email:        req.Email,
		Category:     req.Category,
		Municipality: req.Municipality,
		VenueID:      req.VenueID,
		Observations: req.Observations,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, registration)
}

func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	registration, err := h.registrations.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, registration)
}

func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := registrationFilter(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	page, err := h.registrations.List(r.Context(), filter)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, page)
}

func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req updateRegistrationRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	registration, err := h.registrations.UpdateFields(r.Context(), id, service.RegistrationPatch{
		FullName:     req.FullName,
		StageName:    req.StageName,
		Phone:        req.Phone,
		Email:        req.Email,
		Category:     req.Category,
		Municipality: req.Municipality,
		VenueID:      req.VenueID,
		Observations: req.Observations,
	})
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, registration)
}

func (h *RegistrationHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	var req setStatusRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}

	registration, err := h.registrations.SetStatus(r.Context(), id, req.Status, req.Observations)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, registration)
}

func registrationFilter(r *http.Request) (contest.RegistrationFilter, error) {
	var f contest.RegistrationFilter
	fe := contest.FieldErrors{}
	q := r.URL.Query()

	skip, err := queryInt(r, "skip")
	if err != nil {
		fe.Add("skip", "skip must be an integer")
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		fe.Add("limit", "limit must be an integer")
	}
	venueID, err := queryUUID(r, "venue_id")
	if err != nil {
		fe.Add("venue_id", "venue_id must be a UUID")
	}
	if err := fe.Err(); err != nil {
		return f, err
	}

	f.Skip = skip
	f.Limit = limit
	f.VenueID = venueID
	f.Search = strings.TrimSpace(q.Get("search"))
	if s := q.Get("status"); s != "" {
		status := contest.RegistrationStatus(s)
		f.Status = &status
	}
	if c := q.Get("category"); c != "" {
		category := contest.Category(c)
		f.Category = &category
	}
	return f, nil
}
